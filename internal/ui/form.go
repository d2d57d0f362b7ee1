package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasklist/internal/task"
)

const (
	fieldTitle = iota
	fieldPriority
	fieldCategory
	fieldDue
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Task Title",
	"Priority (1-5, left/right to adjust)",
	"Category",
	"Due Date (YYYY-MM-DD)",
}

// taskForm is the add/edit dialog.
type taskForm struct {
	heading string
	editID  string // empty when adding
	values  [fieldCount]string
	focus   int
}

func newAddForm(defaultPriority int) *taskForm {
	f := &taskForm{heading: "Add New Task"}
	f.values[fieldPriority] = strconv.Itoa(defaultPriority)
	return f
}

func newEditForm(t task.Task) *taskForm {
	f := &taskForm{heading: "Edit Task", editID: t.ID}
	f.values[fieldTitle] = t.Title
	f.values[fieldPriority] = strconv.Itoa(t.Priority)
	f.values[fieldCategory] = t.Label()
	f.values[fieldDue] = t.Due()
	return f
}

// formAction is what a key press asks the model to do with the form.
type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

func (f *taskForm) handleKey(msg tea.KeyMsg) formAction {
	switch msg.String() {
	case "esc":
		return formCancel
	case "enter":
		return formSubmit
	case "tab", "down":
		f.focus = (f.focus + 1) % fieldCount
		return formNone
	case "shift+tab", "up":
		f.focus = (f.focus + fieldCount - 1) % fieldCount
		return formNone
	case "backspace":
		v := []rune(f.values[f.focus])
		if len(v) > 0 {
			f.values[f.focus] = string(v[:len(v)-1])
		}
		return formNone
	case "ctrl+u":
		f.values[f.focus] = ""
		return formNone
	case "left", "right":
		if f.focus == fieldPriority {
			f.stepPriority(msg.String() == "right")
		}
		return formNone
	}

	switch msg.Type {
	case tea.KeyRunes:
		f.values[f.focus] += string(msg.Runes)
	case tea.KeySpace:
		f.values[f.focus] += " "
	}
	return formNone
}

func (f *taskForm) stepPriority(up bool) {
	p, err := strconv.Atoi(strings.TrimSpace(f.values[fieldPriority]))
	if err != nil {
		p = task.DefaultPriority
	} else if up && p < task.MaxPriority {
		p++
	} else if !up && p > task.MinPriority {
		p--
	}
	f.values[fieldPriority] = strconv.Itoa(p)
}

func (f *taskForm) priority() (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(f.values[fieldPriority]))
	if err != nil {
		return 0, &task.ValidationError{Field: "priority", Err: task.ErrInvalidPriority}
	}
	// NewTask treats 0 as "use the default", so range-check here.
	if err := task.CheckPriority(p); err != nil {
		return 0, err
	}
	return p, nil
}

func (f *taskForm) newTask() (task.NewTask, error) {
	p, err := f.priority()
	if err != nil {
		return task.NewTask{}, err
	}
	return task.NewTask{
		Title:    f.values[fieldTitle],
		Priority: p,
		Category: f.values[fieldCategory],
		DueDate:  f.values[fieldDue],
	}, nil
}

func (f *taskForm) patch() (task.Patch, error) {
	p, err := f.priority()
	if err != nil {
		return task.Patch{}, err
	}
	title := f.values[fieldTitle]
	category := f.values[fieldCategory]
	due := f.values[fieldDue]
	return task.Patch{Title: &title, Priority: &p, Category: &category, DueDate: &due}, nil
}
