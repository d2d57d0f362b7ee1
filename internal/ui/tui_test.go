package ui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasklist/internal/task"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(key(k))
	}
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func newTestStore(t *testing.T, titles ...string) *task.Store {
	t.Helper()
	s, err := task.Open(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for _, title := range titles {
		if _, err := s.Add(task.NewTask{Title: title}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	return s
}

func TestViewListsTasks(t *testing.T) {
	s := newTestStore(t, "Buy milk", "Walk dog")
	m := New(s)

	view := m.View()
	for _, want := range []string{"To-Do List", "Task", "Priority", "Buy milk", "Walk dog", "★"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestEmptyView(t *testing.T) {
	m := New(newTestStore(t))
	if !strings.Contains(m.View(), "No tasks yet") {
		t.Errorf("empty view:\n%s", m.View())
	}
}

func TestToggleAndFilter(t *testing.T) {
	s := newTestStore(t, "A", "B", "C")
	m := New(s)

	press(m, "down", "x")
	if got := s.List(task.FilterCompleted); len(got) != 1 || got[0].Title != "B" {
		t.Fatalf("completed after toggle: %+v", got)
	}

	press(m, "2")
	if len(m.tasks) != 1 || m.tasks[0].Title != "B" {
		t.Fatalf("completed view: %+v", m.tasks)
	}
	press(m, "1")
	if len(m.tasks) != 2 {
		t.Fatalf("active view: got %d tasks", len(m.tasks))
	}

	// Toggling in a filtered view targets the task under the cursor, not the
	// task at the same position of the full list.
	press(m, "down", "x")
	if got := s.List(task.FilterCompleted); len(got) != 2 || got[1].Title != "C" {
		t.Fatalf("completed after filtered toggle: %+v", got)
	}

	press(m, "tab")
	if m.filter != task.FilterCompleted {
		t.Errorf("tab should cycle active -> completed, got %s", m.filter)
	}
	press(m, "0")
	if len(m.tasks) != 3 {
		t.Errorf("all view: got %d tasks", len(m.tasks))
	}
}

func TestCursorFollowsSelection(t *testing.T) {
	s := newTestStore(t, "A", "B", "C")
	m := New(s)

	press(m, "down", "down")
	if _, err := s.Toggle(m.tasks[0].ID); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	press(m, "1")
	current, ok := m.current()
	if !ok || current.Title != "C" {
		t.Errorf("cursor should stay on C, got %+v", current)
	}
}

func TestCursorBounds(t *testing.T) {
	m := New(newTestStore(t, "A", "B"))
	press(m, "up", "up")
	if m.cursor != 0 {
		t.Errorf("cursor: got %d, want 0", m.cursor)
	}
	press(m, "down", "down", "down")
	if m.cursor != 1 {
		t.Errorf("cursor: got %d, want 1", m.cursor)
	}
}

func TestAddTask(t *testing.T) {
	s := newTestStore(t)
	m := New(s)

	press(m, "a")
	if m.mode != modeForm || m.form == nil {
		t.Fatal("a should open the form")
	}
	typeText(m, "Buy milk")
	press(m, "tab", "right", "right", "tab")
	typeText(m, "home")
	press(m, "tab")
	typeText(m, "2024-06-01")
	press(m, "enter")

	if m.mode != modeList {
		t.Fatalf("form should close after submit, mode=%v err=%q", m.mode, m.errMsg)
	}
	all := s.List(task.FilterAll)
	if len(all) != 1 {
		t.Fatalf("tasks: got %d, want 1", len(all))
	}
	got := all[0]
	if got.Title != "Buy milk" || got.Priority != 3 || got.Label() != "home" || got.Due() != "2024-06-01" {
		t.Errorf("added task: %+v", got)
	}
	if m.status != "Task added" {
		t.Errorf("status: %q", m.status)
	}
}

func TestAddValidationBlocksAndRetries(t *testing.T) {
	s := newTestStore(t)
	m := New(s)

	press(m, "a")
	typeText(m, "   ")
	press(m, "enter")

	if m.errMsg == "" || !strings.Contains(m.View(), "title cannot be empty") {
		t.Fatalf("expected blocking error, view:\n%s", m.View())
	}
	if s.Len() != 0 {
		t.Fatal("invalid task was added")
	}

	// Any key acknowledges the error and returns to the form.
	press(m, "z")
	if m.errMsg != "" || m.mode != modeForm {
		t.Fatalf("after ack: errMsg=%q mode=%v", m.errMsg, m.mode)
	}
	press(m, "ctrl+u")
	typeText(m, "Real title")
	press(m, "enter")
	if s.Len() != 1 {
		t.Fatalf("retry should add the task")
	}
}

func TestAddBadDueDate(t *testing.T) {
	s := newTestStore(t)
	m := New(s)
	press(m, "a")
	typeText(m, "x")
	press(m, "tab", "tab", "tab")
	typeText(m, "tomorrow")
	press(m, "enter")
	if !strings.Contains(m.errMsg, "due date") {
		t.Errorf("errMsg: %q", m.errMsg)
	}
	if s.Len() != 0 {
		t.Error("task with bad due date was added")
	}
}

func TestAddRejectsZeroPriority(t *testing.T) {
	s := newTestStore(t)
	m := New(s)
	press(m, "a")
	typeText(m, "x")
	press(m, "tab", "backspace")
	typeText(m, "0")
	press(m, "enter")
	if !strings.Contains(m.errMsg, "priority") {
		t.Errorf("errMsg: %q", m.errMsg)
	}
	if s.Len() != 0 {
		t.Error("task with priority 0 was added")
	}

	press(m, "z", "ctrl+u")
	typeText(m, "2")
	press(m, "enter")
	if all := s.List(task.FilterAll); len(all) != 1 || all[0].Priority != 2 {
		t.Errorf("after fixing priority: %+v", all)
	}
}

func TestEditTask(t *testing.T) {
	s := newTestStore(t, "draft")
	m := New(s)

	press(m, "e")
	if m.form == nil || m.form.values[fieldTitle] != "draft" {
		t.Fatalf("edit form not prefilled: %+v", m.form)
	}
	press(m, "backspace", "backspace", "backspace", "backspace", "backspace")
	typeText(m, "final")
	press(m, "tab", "left")
	press(m, "enter")

	got := s.List(task.FilterAll)[0]
	if got.Title != "final" || got.Priority != 1 {
		t.Errorf("edited task: %+v", got)
	}
	if m.status != "Task updated" {
		t.Errorf("status: %q", m.status)
	}
}

func TestFormCancel(t *testing.T) {
	s := newTestStore(t)
	m := New(s)
	press(m, "a")
	typeText(m, "never")
	press(m, "esc")
	if m.mode != modeList || s.Len() != 0 {
		t.Errorf("cancel: mode=%v len=%d", m.mode, s.Len())
	}
}

func TestDeleteConfirmation(t *testing.T) {
	s := newTestStore(t, "A", "B")
	m := New(s)

	press(m, "d")
	if m.mode != modeConfirmDelete || !strings.Contains(m.View(), "Are you sure") {
		t.Fatalf("delete should ask for confirmation:\n%s", m.View())
	}
	press(m, "n")
	if s.Len() != 2 {
		t.Fatal("declined delete removed a task")
	}

	press(m, "down", "d", "y")
	all := s.List(task.FilterAll)
	if len(all) != 1 || all[0].Title != "A" {
		t.Errorf("after delete: %+v", all)
	}
	if m.cursor != 0 {
		t.Errorf("cursor after deleting last row: got %d, want 0", m.cursor)
	}
}

func TestActionsOnEmptyList(t *testing.T) {
	m := New(newTestStore(t))
	press(m, "x", "e", "d")
	if m.mode != modeList || m.errMsg != "" {
		t.Errorf("actions on empty list should be no-ops: mode=%v err=%q", m.mode, m.errMsg)
	}
}

func TestHelpAndQuit(t *testing.T) {
	m := New(newTestStore(t))
	press(m, "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help view:\n%s", m.View())
	}
	press(m, "j")
	if m.mode != modeList {
		t.Fatal("any key should close help")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestWindowSize(t *testing.T) {
	m := New(newTestStore(t, strings.Repeat("long title ", 20)))
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if m.width != 60 {
		t.Errorf("width: got %d", m.width)
	}
	if !strings.Contains(m.View(), "…") {
		t.Error("long titles should be truncated")
	}
}

func TestCell(t *testing.T) {
	if got := cell("ab", 5); got != "ab   " {
		t.Errorf("cell pad: %q", got)
	}
	if got := cell("abcdef", 5); got != "abc… " {
		t.Errorf("cell truncate: %q", got)
	}
	if got := stars(3); got != "★★★" {
		t.Errorf("stars: %q", got)
	}
}

func TestIsTTY(t *testing.T) {
	var b strings.Builder
	if IsTTY(&b) {
		t.Error("strings.Builder is not a TTY")
	}
}

func TestInitialFilterOption(t *testing.T) {
	s := newTestStore(t, "A")
	m := New(s, WithFilter(task.FilterCompleted))
	if len(m.tasks) != 0 || !strings.Contains(m.View(), "No completed tasks") {
		t.Errorf("completed filter should hide active task:\n%s", m.View())
	}
}
