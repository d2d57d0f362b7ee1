package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Store is an ordered, file-backed list of tasks. Order is insertion order.
//
// A Store is not safe for concurrent use and assumes no other process writes
// its file.
type Store struct {
	path            string
	tasks           []Task
	defaultPriority int
	now             func() time.Time
	newID           func() string
	logger          *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultPriority sets the priority given to tasks added without one.
// Values outside the valid range are ignored.
func WithDefaultPriority(p int) Option {
	return func(s *Store) {
		if p >= MinPriority && p <= MaxPriority {
			s.defaultPriority = p
		}
	}
}

// WithLogger sets the logger used for load recovery and mutation events.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the task id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Open creates the data file and its directory if needed, then loads it.
// A missing or malformed file yields an empty store, not an error; a
// malformed file is first copied to path + ".bak".
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("data file path is empty")
	}

	s := &Store{
		path:            path,
		defaultPriority: DefaultPriority,
		now:             time.Now,
		newID:           uuid.NewString,
		logger:          log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	s.load()
	return s, nil
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// DefaultPriority returns the priority given to tasks added without one.
func (s *Store) DefaultPriority() int {
	return s.defaultPriority
}

func (s *Store) ensureFile() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat data file: %w", err)
	}

	s.logger.Debug("creating data file", "path", s.path)
	if err := writeFileAtomic(s.path, []byte("[]\n")); err != nil {
		return fmt.Errorf("create data file: %w", err)
	}
	return nil
}

// load replaces the in-memory list with the file contents, falling back to
// an empty list on any read or parse failure.
func (s *Store) load() {
	s.tasks = []Task{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("data file missing, starting empty", "path", s.path)
		} else {
			s.logger.Warn("cannot read data file, starting empty", "path", s.path, "err", err)
		}
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return
	}

	tasks, err := s.decode(data)
	if err != nil {
		s.logger.Warn("malformed data file, starting empty", "path", s.path, "err", err)
		s.backup(data)
		return
	}
	s.tasks = tasks
	s.logger.Debug("loaded tasks", "path", s.path, "count", len(tasks))
}

func (s *Store) decode(data []byte) ([]Task, error) {
	if result := ValidateDocument(data); !result.Valid {
		return nil, result.Err()
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}

	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" || seen[t.ID] {
			t.ID = s.newID()
		}
		seen[t.ID] = true
		t.Title = strings.TrimSpace(t.Title)
		// The schema rejects an explicit 0, so 0 here means the field was absent.
		if t.Priority == 0 {
			t.Priority = s.defaultPriority
		}
		if t.CreatedAt == "" {
			t.CreatedAt = s.now().Format(time.RFC3339)
		}
		// The schema's \S only excludes ASCII whitespace titles.
		if err := Validate(*t); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

func (s *Store) backup(data []byte) {
	path := s.path + ".bak"
	if err := os.WriteFile(path, data, 0644); err != nil {
		s.logger.Error("cannot back up malformed data file", "path", path, "err", err)
		return
	}
	s.logger.Warn("malformed data file backed up", "path", path)
}

// List returns a copy of the tasks passing the filter, in insertion order.
func (s *Store) List(filter Filter) []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.Match(t) {
			out = append(out, t.clone())
		}
	}
	return out
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.tasks[i].clone(), nil
}

// Resolve finds a task by full id or by a unique id prefix.
func (s *Store) Resolve(ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Task{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if i := s.IndexOf(ref); i >= 0 {
		return s.tasks[i].clone(), nil
	}

	match := -1
	for i, t := range s.tasks {
		if !strings.HasPrefix(t.ID, ref) {
			continue
		}
		if match >= 0 {
			return Task{}, fmt.Errorf("%w: %s", ErrAmbiguousRef, ref)
		}
		match = i
	}
	if match < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return s.tasks[match].clone(), nil
}

// IndexOf returns the position of the task in the unfiltered list, or -1.
func (s *Store) IndexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends a new, incomplete task and persists the store.
func (s *Store) Add(nt NewTask) (Task, error) {
	priority := nt.Priority
	if priority == 0 {
		priority = s.defaultPriority
	}

	t := Task{
		ID:        s.newID(),
		Title:     strings.TrimSpace(nt.Title),
		CreatedAt: s.now().Format(time.RFC3339),
		DueDate:   optional(nt.DueDate),
		Priority:  priority,
		Category:  optional(nt.Category),
	}
	if err := Validate(t); err != nil {
		return Task{}, err
	}

	next := append(s.snapshot(), t)
	if err := s.commit(next); err != nil {
		return Task{}, err
	}
	s.logger.Debug("task added", "id", t.ID, "title", t.Title)
	return t.clone(), nil
}

// Delete removes the task with the given id and persists the store.
func (s *Store) Delete(id string) error {
	i := s.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.DeleteAt(i)
}

// DeleteAt removes the task at position i of the unfiltered list.
func (s *Store) DeleteAt(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}

	removed := s.tasks[i]
	next := make([]Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	if err := s.commit(next); err != nil {
		return err
	}
	s.logger.Debug("task deleted", "id", removed.ID)
	return nil
}

// Toggle flips the completed flag of the task with the given id.
func (s *Store) Toggle(id string) (Task, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.ToggleAt(i)
}

// ToggleAt flips the completed flag of the task at position i.
func (s *Store) ToggleAt(i int) (Task, error) {
	if err := s.checkIndex(i); err != nil {
		return Task{}, err
	}

	next := s.snapshot()
	next[i] = next[i].clone()
	next[i].Completed = !next[i].Completed
	if err := s.commit(next); err != nil {
		return Task{}, err
	}
	s.logger.Debug("task toggled", "id", next[i].ID, "completed", next[i].Completed)
	return next[i].clone(), nil
}

// Update applies a partial update to the task with the given id.
func (s *Store) Update(id string, p Patch) (Task, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.UpdateAt(i, p)
}

// UpdateAt applies a partial update to the task at position i. An invalid
// result leaves the task unchanged.
func (s *Store) UpdateAt(i int, p Patch) (Task, error) {
	if err := s.checkIndex(i); err != nil {
		return Task{}, err
	}

	updated := p.apply(s.tasks[i])
	if err := Validate(updated); err != nil {
		return Task{}, err
	}

	next := s.snapshot()
	next[i] = updated
	if err := s.commit(next); err != nil {
		return Task{}, err
	}
	s.logger.Debug("task updated", "id", updated.ID)
	return updated.clone(), nil
}

func (s *Store) checkIndex(i int) error {
	if i < 0 || i >= len(s.tasks) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(s.tasks))
	}
	return nil
}

func (s *Store) snapshot() []Task {
	next := make([]Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	return next
}

// commit persists next and only then makes it the current list, so a failed
// write leaves memory matching the file.
func (s *Store) commit(next []Task) error {
	if err := save(s.path, next); err != nil {
		s.logger.Error("saving tasks failed", "path", s.path, "err", err)
		return err
	}
	s.tasks = next
	return nil
}

// save writes tasks to path with 2-space indentation and a trailing newline.
func save(path string, tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
