// Package ui formats command output. On a terminal it draws styled tables
// with lipgloss; otherwise it writes plain tab separated lines that are easy
// to pipe into other tools.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Printer writes command output to one stream.
type Printer struct {
	w      io.Writer
	styled bool
}

// New returns a Printer for w. Output is styled only when w is a terminal
// and NO_COLOR is unset.
func New(w io.Writer) *Printer {
	return &Printer{w: w, styled: isTerminal(w) && os.Getenv("NO_COLOR") == ""}
}

// Plain returns a Printer that never styles its output.
func Plain(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Styled reports whether the printer draws styled output.
func (p *Printer) Styled() bool { return p.styled }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width, or 0 when unknown.
func (p *Printer) Width() int {
	f, ok := p.w.(*os.File)
	if !ok || !p.styled {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// Title writes a section heading.
func (p *Printer) Title(s string) {
	if p.styled {
		fmt.Fprintln(p.w, titleStyle.Render(s))
		return
	}
	fmt.Fprintf(p.w, "# %s\n", s)
}

// Table writes rows under headers.
func (p *Printer) Table(headers []string, rows [][]string) {
	if !p.styled {
		fmt.Fprintln(p.w, strings.Join(headers, "\t"))
		for _, r := range rows {
			fmt.Fprintln(p.w, strings.Join(r, "\t"))
		}
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	if w := p.Width(); w > 0 {
		t = t.Width(w)
	}
	fmt.Fprintln(p.w, t.String())
}

// Fields writes key and value pairs, one per line.
func (p *Printer) Fields(pairs [][2]string) {
	width := 0
	for _, kv := range pairs {
		width = max(width, len(kv[0]))
	}
	for _, kv := range pairs {
		if p.styled {
			fmt.Fprintf(p.w, "%s  %s\n", keyStyle.Render(fmt.Sprintf("%-*s", width, kv[0])), kv[1])
			continue
		}
		fmt.Fprintf(p.w, "%s\t%s\n", kv[0], kv[1])
	}
}

// Warn writes a non-fatal problem.
func (p *Printer) Warn(kind, msg string) {
	if p.styled {
		fmt.Fprintf(p.w, "%s %s\n", warnStyle.Render("warning ["+kind+"]"), msg)
		return
	}
	fmt.Fprintf(p.w, "warning [%s] %s\n", kind, msg)
}

// Line writes raw output.
func (p *Printer) Line(s string) {
	fmt.Fprintln(p.w, s)
}
