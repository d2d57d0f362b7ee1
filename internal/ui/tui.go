// Package ui provides the interactive terminal front end.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/nibzard/tasklist/internal/logging"
	"github.com/nibzard/tasklist/internal/task"
)

// TaskStore is the part of the task store the UI uses.
type TaskStore interface {
	List(filter task.Filter) []task.Task
	Add(nt task.NewTask) (task.Task, error)
	Update(id string, p task.Patch) (task.Task, error)
	Toggle(id string) (task.Task, error)
	Delete(id string) error
	Path() string
	DefaultPriority() int
}

// Option configures the TUI.
type Option func(*Model)

// WithLogger sets the logger for store failures.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithFilter sets the initial filter.
func WithFilter(f task.Filter) Option {
	return func(m *Model) {
		m.filter = f
	}
}

// Run starts the TUI on the terminal until the user quits.
func Run(ctx context.Context, store TaskStore, opts ...Option) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(New(store, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
	modeHelp
)

// Model is the bubbletea model of the task list.
type Model struct {
	store  TaskStore
	logger *log.Logger

	filter   task.Filter
	tasks    []task.Task // current filtered view
	cursor   int
	selected string // id under the cursor

	mode    mode
	form    *taskForm
	pending string // id awaiting delete confirmation

	// errMsg blocks all input until acknowledged.
	errMsg string
	status string
	width  int
}

// New creates a model over store showing all tasks.
func New(store TaskStore, opts ...Option) *Model {
	m := &Model{
		store:  store,
		logger: logging.Discard(),
		filter: task.FilterAll,
		width:  100,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.errMsg != "" {
			m.errMsg = ""
			return m, nil
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeHelp:
			m.mode = modeList
			return m, nil
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "home", "g":
		m.moveCursor(-len(m.tasks))
	case "end", "G":
		m.moveCursor(len(m.tasks))
	case "0":
		m.setFilter(task.FilterAll)
	case "1":
		m.setFilter(task.FilterActive)
	case "2":
		m.setFilter(task.FilterCompleted)
	case "tab":
		m.setFilter(m.filter.Next())
	case "r", "f5":
		m.refresh()
	case "x", " ", "space", "enter":
		m.toggleSelected()
	case "a", "n":
		m.form = newAddForm(m.store.DefaultPriority())
		m.mode = modeForm
	case "e":
		if t, ok := m.current(); ok {
			m.form = newEditForm(t)
			m.mode = modeForm
		}
	case "d", "delete":
		if t, ok := m.current(); ok {
			m.pending = t.ID
			m.mode = modeConfirmDelete
		}
	case "?", "h":
		m.mode = modeHelp
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.form.handleKey(msg) {
	case formCancel:
		m.form = nil
		m.mode = modeList
	case formSubmit:
		m.submitForm()
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.store.Delete(m.pending); err != nil {
			m.fail("delete task", err)
		} else {
			m.status = "Task deleted"
		}
		m.pending = ""
		m.mode = modeList
		m.refresh()
	case "n", "N", "esc", "q":
		m.pending = ""
		m.mode = modeList
	}
	return m, nil
}

func (m *Model) submitForm() {
	f := m.form
	var (
		saved task.Task
		err   error
	)
	if f.editID == "" {
		var nt task.NewTask
		if nt, err = f.newTask(); err == nil {
			saved, err = m.store.Add(nt)
		}
	} else {
		var p task.Patch
		if p, err = f.patch(); err == nil {
			saved, err = m.store.Update(f.editID, p)
		}
	}
	if err != nil {
		// Stay on the form so the user can correct the input.
		m.fail("save task", err)
		if !task.IsValidation(err) {
			m.form = nil
			m.mode = modeList
			m.refresh()
		}
		return
	}

	if f.editID == "" {
		m.status = "Task added"
	} else {
		m.status = "Task updated"
	}
	m.form = nil
	m.mode = modeList
	m.selected = saved.ID
	m.refresh()
}

func (m *Model) toggleSelected() {
	t, ok := m.current()
	if !ok {
		return
	}
	updated, err := m.store.Toggle(t.ID)
	if err != nil {
		m.fail("toggle task", err)
	} else if updated.Completed {
		m.status = "Marked complete"
	} else {
		m.status = "Marked incomplete"
	}
	m.refresh()
}

func (m *Model) fail(op string, err error) {
	if task.IsValidation(err) {
		m.logger.Debug(op+" rejected", "err", err)
	} else {
		m.logger.Error(op+" failed", "err", err)
	}
	m.errMsg = err.Error()
}

func (m *Model) setFilter(f task.Filter) {
	m.filter = f
	m.refresh()
}

// refresh reloads the filtered view and keeps the cursor on the selected
// task when it is still visible.
func (m *Model) refresh() {
	m.tasks = m.store.List(m.filter)
	if m.selected != "" {
		for i, t := range m.tasks {
			if t.ID == m.selected {
				m.cursor = i
				return
			}
		}
	}
	m.clampCursor()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if len(m.tasks) == 0 {
		m.selected = ""
		return
	}
	m.selected = m.tasks[m.cursor].ID
}

func (m *Model) current() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
