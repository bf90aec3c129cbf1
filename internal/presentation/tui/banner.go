package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the AgriMind banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Greens into wheat
	lines := []struct{ text, color string }{
		{"     _              _ __  __ _           _ ", "#4ade80"},
		{"    / \\   __ _ _ __(_)  \\/  (_)_ __   __| |", "#84cc16"},
		{"   / _ \\ / _` | '__| | |\\/| | | '_ \\ / _` |", "#a3e635"},
		{"  / ___ \\ (_| | |  | | |  | | | | | | (_| |", "#facc15"},
		{" /_/   \\_\\__, |_|  |_|_|  |_|_|_| |_|\\__,_|", "#eab308"},
		{"         |___/                            ", "#ca8a04"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
