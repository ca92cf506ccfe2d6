package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text, color string
}{
	{`  ____  _     _                           _ `, "#38bdf8"},
	{` / ___|| |__ (_)_ __  _   _  __ _ _ __ __| |`, "#22d3ee"},
	{` \___ \| '_ \| | '_ \| | | |/ _' | '__/ _' |`, "#2dd4bf"},
	{`  ___) | | | | | |_) | |_| | (_| | | | (_| |`, "#34d399"},
	{` |____/|_| |_|_| .__/ \__, |\__,_|_|  \__,_|`, "#4ade80"},
	{`               |_|    |___/                 `, "#a3e635"},
}

// PrintBanner writes the Shipyard banner, colored when w's terminal supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
