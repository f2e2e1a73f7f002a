package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the nest banner to w, colored when w is a color terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _ __   ___  ___| |_ ", "#818cf8"},
		{" | '_ \\ / _ \\/ __| __|", "#a78bfa"},
		{" | | | |  __/\\__ \\ |_ ", "#c084fc"},
		{" |_| |_|\\___||___/\\__|", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// TraceStyle colors tracer lines for out: entered states in green, exited
// states faint.
func TraceStyle(out *termenv.Output) func(line string, enter bool) string {
	p := out.ColorProfile()
	return func(line string, enter bool) string {
		if enter {
			return out.String(line).Foreground(p.Color("#4ade80")).String()
		}
		return out.String(line).Faint().String()
	}
}
