package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasklist/internal/task"
)

// Palette.
var (
	colorAccent   = lipgloss.Color("#4a90e2")
	colorText     = lipgloss.Color("#333333")
	colorHeading  = lipgloss.Color("#e0e0e0")
	colorDisabled = lipgloss.Color("#888888")
	colorWhite    = lipgloss.Color("#ffffff")
	colorError    = lipgloss.Color("#d0021b")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle   = lipgloss.NewStyle().Bold(true).Background(colorHeading).Foreground(colorText)
	rowStyle      = lipgloss.NewStyle()
	doneRowStyle  = lipgloss.NewStyle().Foreground(colorDisabled)
	selectedStyle = lipgloss.NewStyle().Background(colorAccent).Foreground(colorWhite)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorDisabled)
	labelStyle    = lipgloss.NewStyle().Foreground(colorText)
	focusStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)
	errorBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorError).Padding(0, 1)
)

// Fixed column widths; the title column takes what is left.
const (
	colStatus   = 8
	colPriority = 10
	colCategory = 14
	colDue      = 12
	minTitle    = 16
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("To-Do List"))
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(errorBoxStyle.Render("Error\n\n" + m.errMsg + "\n\n" + mutedStyle.Render("Press any key to continue")))
		b.WriteString("\n")
		return b.String()
	}

	switch m.mode {
	case modeHelp:
		writeHelp(&b)
	case modeForm:
		m.writeForm(&b)
	default:
		m.writeTable(&b)
		if m.mode == modeConfirmDelete {
			b.WriteString("\n")
			b.WriteString(boxStyle.Render("Are you sure you want to delete this task? (y/n)"))
			b.WriteString("\n")
		}
		m.writeFilterBar(&b)
	}
	return b.String()
}

func (m *Model) titleWidth() int {
	w := m.width - colStatus - colPriority - colCategory - colDue
	if w < minTitle {
		return minTitle
	}
	return w
}

func (m *Model) writeTable(b *strings.Builder) {
	tw := m.titleWidth()
	header := cell("Task", tw) + cell("Status", colStatus) + cell("Priority", colPriority) +
		cell("Category", colCategory) + cell("Due Date", colDue)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if len(m.tasks) == 0 {
		b.WriteString(mutedStyle.Render(emptyMessage(m.filter)))
		b.WriteString("\n")
		return
	}

	for i, t := range m.tasks {
		line := cell(t.Title, tw) + cell(statusMark(t), colStatus) + cell(stars(t.Priority), colPriority) +
			cell(t.Label(), colCategory) + cell(t.Due(), colDue)
		style := rowStyle
		if t.Completed {
			style = doneRowStyle
		}
		if i == m.cursor {
			style = selectedStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
}

func (m *Model) writeFilterBar(b *strings.Builder) {
	b.WriteString("\nFilter: ")
	for i, f := range []task.Filter{task.FilterAll, task.FilterActive, task.FilterCompleted} {
		label := fmt.Sprintf("(%d) %s", i, filterLabel(f))
		if f == m.filter {
			label = focusStyle.Render("[" + label + "]")
		} else {
			label = mutedStyle.Render(" " + label + " ")
		}
		b.WriteString(label + " ")
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d shown | a add | e edit | x toggle | d delete | ? help | q quit", len(m.tasks))))
	b.WriteString("\n")
}

func (m *Model) writeForm(b *strings.Builder) {
	f := m.form
	var inner strings.Builder
	inner.WriteString(focusStyle.Render(f.heading))
	inner.WriteString("\n\n")
	for i := 0; i < fieldCount; i++ {
		label := labelStyle.Render(fieldLabels[i] + ":")
		value := f.values[i]
		if i == f.focus {
			label = focusStyle.Render("> " + fieldLabels[i] + ":")
			value += "_"
		}
		inner.WriteString(label + "\n  " + value + "\n")
	}
	inner.WriteString("\n")
	inner.WriteString(mutedStyle.Render("tab next field | enter submit | esc cancel"))
	b.WriteString(boxStyle.Render(inner.String()))
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j   Move selection\n")
	b.WriteString("  x, space, enter Toggle complete\n")
	b.WriteString("  a              Add task\n")
	b.WriteString("  e              Edit task\n")
	b.WriteString("  d              Delete task\n")
	b.WriteString("  0 / 1 / 2      Show all / active / completed\n")
	b.WriteString("  tab            Cycle filter\n")
	b.WriteString("  r              Refresh\n")
	b.WriteString("  ?, h           Toggle this help screen\n")
	b.WriteString("  q, ctrl+c      Quit\n\n")
	b.WriteString(mutedStyle.Render("Press any key to return"))
	b.WriteString("\n")
}

func filterLabel(f task.Filter) string {
	switch f {
	case task.FilterActive:
		return "Active"
	case task.FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

func emptyMessage(f task.Filter) string {
	switch f {
	case task.FilterActive:
		return "  No active tasks."
	case task.FilterCompleted:
		return "  No completed tasks yet."
	default:
		return "  No tasks yet. Press a to add one."
	}
}

func statusMark(t task.Task) string {
	if t.Completed {
		return "✓"
	}
	return " "
}

func stars(priority int) string {
	if priority <= 0 {
		return ""
	}
	return strings.Repeat("★", priority)
}

// cell pads or truncates s to exactly width columns.
func cell(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-2]) + "… "
	}
	return s + strings.Repeat(" ", width-len(r))
}
