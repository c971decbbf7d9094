package output

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"go.trai.ch/qcache/internal/ui/style"
)

// Table is a rectangular result: a header row and data rows of equal width.
type Table struct {
	Headers []string
	Rows    [][]string
}

// WriteTable renders t as a bordered table with the brand colours.
func WriteTable(w io.Writer, t Table) error {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(ColorProfile()))

	header := r.NewStyle().Bold(true).Foreground(style.Iris).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	first := cell.Foreground(style.Slate)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Foreground(style.Slate)).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0:
				return first
			default:
				return cell
			}
		})

	_, err := io.WriteString(w, tbl.String()+"\n")
	return err
}

// WritePlain renders t as tab-separated lines, header first.
func WritePlain(w io.Writer, t Table) error {
	var b strings.Builder
	if len(t.Headers) > 0 {
		b.WriteString(strings.Join(t.Headers, "\t"))
		b.WriteByte('\n')
	}
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON renders v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
