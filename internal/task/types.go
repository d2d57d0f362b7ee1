package task

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Priority bounds.
const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = MinPriority
)

// DateLayout is the layout of due dates.
const DateLayout = "2006-01-02"

// Sentinel errors returned by the store.
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidPriority = fmt.Errorf("priority must be between %d and %d", MinPriority, MaxPriority)
	ErrInvalidDueDate  = errors.New("due date must be YYYY-MM-DD")
	ErrNotFound        = errors.New("task not found")
	ErrIndexOutOfRange = errors.New("task index out of range")
	ErrAmbiguousRef    = errors.New("task reference is ambiguous")
)

// Task is one to-do item.
type Task struct {
	ID        string  `json:"id" yaml:"id"`
	Title     string  `json:"title" yaml:"title"`
	Completed bool    `json:"completed" yaml:"completed"`
	CreatedAt string  `json:"created_at" yaml:"created_at"`
	DueDate   *string `json:"due_date" yaml:"due_date"`
	Priority  int     `json:"priority" yaml:"priority"`
	Category  *string `json:"category" yaml:"category"`
}

// Due returns the due date as a string, or "" if none is set.
func (t Task) Due() string {
	if t.DueDate == nil {
		return ""
	}
	return *t.DueDate
}

// Label returns the category, or "" if none is set.
func (t Task) Label() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// ShortID returns the first eight characters of the id.
func (t Task) ShortID() string {
	if len(t.ID) > 8 {
		return t.ID[:8]
	}
	return t.ID
}

// clone returns a deep copy so callers never share pointers with the store.
func (t Task) clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Category != nil {
		cat := *t.Category
		c.Category = &cat
	}
	return c
}

// NewTask holds the caller-supplied fields of a task being added.
// A zero Priority selects the store's default.
type NewTask struct {
	Title    string
	Priority int
	DueDate  string
	Category string
}

// Patch is a partial update. Nil fields are left unchanged. Pointing
// DueDate or Category at an empty string clears the field.
type Patch struct {
	Title    *string
	Priority *int
	DueDate  *string
	Category *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Priority == nil && p.DueDate == nil && p.Category == nil
}

// PatchFromFields builds a Patch from field names to raw values. Recognized
// names are title, priority, category and due_date; anything else is
// ignored. A priority that is not an integer is an error.
func PatchFromFields(fields map[string]string) (Patch, error) {
	var p Patch
	for key, value := range fields {
		v := value
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			p.Title = &v
		case "priority":
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return Patch{}, &ValidationError{Field: "priority", Err: ErrInvalidPriority}
			}
			p.Priority = &n
		case "category":
			p.Category = &v
		case "due_date", "due":
			p.DueDate = &v
		}
	}
	return p, nil
}

// apply returns a copy of t with the patch applied and normalised.
func (p Patch) apply(t Task) Task {
	out := t.clone()
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.DueDate != nil {
		out.DueDate = optional(*p.DueDate)
	}
	if p.Category != nil {
		out.Category = optional(*p.Category)
	}
	return out
}

// ValidationError reports which field of a task is invalid.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the task invariants.
func Validate(t Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	if err := CheckPriority(t.Priority); err != nil {
		return err
	}
	if t.DueDate != nil {
		if _, err := time.Parse(DateLayout, *t.DueDate); err != nil {
			return &ValidationError{Field: "due_date", Err: fmt.Errorf("%w, got %q", ErrInvalidDueDate, *t.DueDate)}
		}
	}
	return nil
}

// CheckPriority reports whether p is an acceptable explicit priority.
func CheckPriority(p int) error {
	if p < MinPriority || p > MaxPriority {
		return &ValidationError{Field: "priority", Err: fmt.Errorf("%w, got %d", ErrInvalidPriority, p)}
	}
	return nil
}

// IsValidation reports whether err is a task validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Filter selects a subset of tasks by completion.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter parses a filter name. The empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active", "todo", "open":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("invalid filter %q, must be one of: all, active, completed", s)
	}
}

// Match reports whether the task passes the filter.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Next cycles all -> active -> completed -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll, "":
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

func (f Filter) String() string {
	if f == "" {
		return string(FilterAll)
	}
	return string(f)
}
