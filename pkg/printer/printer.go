// Package printer renders CLI output as aligned tables or JSON.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const columnGap = "  "

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TablePrinter writes rows as left-aligned columns.
type TablePrinter struct {
	out     io.Writer
	headers []string
	rows    [][]string
}

func NewTablePrinter(out io.Writer) *TablePrinter {
	return &TablePrinter{out: out}
}

func (t *TablePrinter) SetHeaders(headers ...string) {
	t.headers = headers
}

func (t *TablePrinter) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the header and every row. Widths are measured without ANSI
// sequences so styled cells stay aligned.
func (t *TablePrinter) Render() error {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	if len(t.headers) > 0 {
		if err := t.writeLine(t.headers, widths, headerStyle); err != nil {
			return err
		}
	}
	for _, row := range t.rows {
		if err := t.writeLine(row, widths, lipgloss.NewStyle()); err != nil {
			return err
		}
	}
	return nil
}

func (t *TablePrinter) writeLine(cells []string, widths []int, style lipgloss.Style) error {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(columnGap)
		}
		b.WriteString(style.Render(cell))
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
	}
	_, err := fmt.Fprintln(t.out, b.String())
	return err
}

// TruncateString shortens s to at most width cells, ending with "...".
func TruncateString(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "...")
}

// PrintJSON writes v as indented JSON to out.
func PrintJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintError writes msg to stderr in the error style.
func PrintError(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+msg))
}

// Muted renders secondary text such as paging hints.
func Muted(s string) string {
	return mutedStyle.Render(s)
}
