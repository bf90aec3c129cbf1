package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Printer writes markdown to a terminal rendered, or verbatim otherwise.
type Printer struct {
	Out    io.Writer
	render func(string) (string, error)
}

// NewPrinter renders only when out is a terminal.
func NewPrinter(out *os.File) *Printer {
	p := &Printer{Out: out}
	if IsTerminal(out) {
		p.render = NewRenderer()
	}
	return p
}

// Markdown prints md.
func (p *Printer) Markdown(md string) error {
	if p.render != nil {
		if out, err := p.render(md); err == nil {
			md = out
		}
	}
	_, err := fmt.Fprintln(p.Out, md)
	return err
}

// Speaker prints a colored "name:" prefix.
func (p *Printer) Speaker(name, color string) {
	if p.render == nil {
		fmt.Fprint(p.Out, name+": ")
		return
	}
	prefix := termenv.String(name + ":").Bold().Foreground(termenv.ColorProfile().Color(color))
	fmt.Fprint(p.Out, prefix, " ")
}
