// Package export renders task lists in formats meant for other tools and
// for printing.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasklist/internal/task"
)

// Format is an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatYAML, FormatMarkdown, FormatPDF}
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// Options controls rendering.
type Options struct {
	// Title heads the markdown and PDF documents.
	Title string
	// Now stamps the generated documents.
	Now func() time.Time
}

func (o Options) title() string {
	if o.Title == "" {
		return "To-Do List"
	}
	return o.Title
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Write renders tasks to w in the given format.
func Write(w io.Writer, tasks []task.Task, format Format, opts Options) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, tasks)
	case FormatCSV:
		return writeCSV(w, tasks)
	case FormatYAML:
		return writeYAML(w, tasks)
	case FormatMarkdown:
		return writeMarkdown(w, tasks, opts)
	case FormatPDF:
		return writePDF(w, tasks, opts)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func writeJSON(w io.Writer, tasks []task.Task) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

var csvHeader = []string{"id", "title", "completed", "created_at", "due_date", "priority", "category"}

func writeCSV(w io.Writer, tasks []task.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		record := []string{
			t.ID,
			t.Title,
			strconv.FormatBool(t.Completed),
			t.CreatedAt,
			t.Due(),
			strconv.Itoa(t.Priority),
			t.Label(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeYAML(w io.Writer, tasks []task.Task) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func writeMarkdown(w io.Writer, tasks []task.Task, opts Options) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opts.title())
	fmt.Fprintf(&b, "Generated on: %s\n\n", opts.now().Format("2006-01-02 15:04"))

	if len(tasks) == 0 {
		b.WriteString("_No tasks._\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("| Done | Task | Priority | Category | Due |\n")
	b.WriteString("|------|------|----------|----------|-----|\n")
	for _, t := range tasks {
		done := "[ ]"
		if t.Completed {
			done = "[x]"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
			done, escapeCell(t.Title), t.Priority, escapeCell(t.Label()), t.Due())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// PDF column widths in mm; the title column takes the rest of A4 portrait.
const (
	pdfDoneWidth     = 12
	pdfPriorityWidth = 18
	pdfCategoryWidth = 35
	pdfDueWidth      = 25
	pdfRowHeight     = 7
)

func writePDF(w io.Writer, tasks []task.Task, opts Options) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(opts.title(), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(opts.title()))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0x88, 0x88, 0x88)
	pdf.Cell(0, 6, "Generated on "+opts.now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	left, _, right, _ := pdf.GetMargins()
	pageWidth, _ := pdf.GetPageSize()
	titleWidth := pageWidth - left - right - pdfDoneWidth - pdfPriorityWidth - pdfCategoryWidth - pdfDueWidth

	// Header row in the list accent colour.
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(0x4a, 0x90, 0xe2)
	pdf.SetTextColor(0xff, 0xff, 0xff)
	pdf.CellFormat(pdfDoneWidth, pdfRowHeight, "Done", "1", 0, "C", true, 0, "")
	pdf.CellFormat(titleWidth, pdfRowHeight, "Task", "1", 0, "L", true, 0, "")
	pdf.CellFormat(pdfPriorityWidth, pdfRowHeight, "Priority", "1", 0, "C", true, 0, "")
	pdf.CellFormat(pdfCategoryWidth, pdfRowHeight, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(pdfDueWidth, pdfRowHeight, "Due", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0x33, 0x33, 0x33)
	if len(tasks) == 0 {
		pdf.CellFormat(0, pdfRowHeight, "No tasks.", "1", 1, "C", false, 0, "")
	}
	for _, t := range tasks {
		done := ""
		if t.Completed {
			done = "x"
		}
		pdf.CellFormat(pdfDoneWidth, pdfRowHeight, done, "1", 0, "C", false, 0, "")
		pdf.CellFormat(titleWidth, pdfRowHeight, tr(fitText(pdf, t.Title, titleWidth)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfPriorityWidth, pdfRowHeight, strconv.Itoa(t.Priority), "1", 0, "C", false, 0, "")
		pdf.CellFormat(pdfCategoryWidth, pdfRowHeight, tr(fitText(pdf, t.Label(), pdfCategoryWidth)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfDueWidth, pdfRowHeight, t.Due(), "1", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// fitText shortens s with "..." until it fits a cell of the given width.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	const padding = 2
	if pdf.GetStringWidth(s) <= width-padding {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if pdf.GetStringWidth(candidate) <= width-padding {
			return candidate
		}
	}
	return ""
}
