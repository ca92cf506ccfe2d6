package tui

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/generator"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
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

// Render formats markdown for f: styled on a terminal, raw otherwise.
func Render(f *os.File, markdown string) string {
	if !IsTerminal(f) {
		return markdown
	}
	out, err := NewRenderer()(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// CatalogMarkdown describes every generator and its fields.
func CatalogMarkdown(defs []generator.Definition) string {
	var sb strings.Builder
	sb.WriteString("# Generators\n\n")
	for _, def := range defs {
		fmt.Fprintf(&sb, "## %s\n\n", def.Kind)
		if def.Description != "" {
			fmt.Fprintf(&sb, "%s\n\n", def.Description)
		}
		fmt.Fprintf(&sb, "Output: `%s`\n\n", def.Filename)

		fields := def.Fields()
		if len(fields) == 0 {
			sb.WriteString("_No configuration._\n\n")
			continue
		}
		sb.WriteString("| Field | Type | Default |\n|---|---|---|\n")
		for _, name := range fields {
			dflt := "-"
			if v, ok := def.Defaults[name]; ok {
				dflt = fmt.Sprintf("`%v`", v)
			}
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", name, def.Schema[name].Name(), dflt)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ArtifactMarkdown summarizes a finished generation.
func ArtifactMarkdown(kind domain.GeneratorKind, artifact domain.GeneratedArtifact, sources domain.SourceCollection, dest string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", kind)
	fmt.Fprintf(&sb, "- **Archive:** `%s` (%d bytes)\n", artifact.Filename, artifact.Size())
	fmt.Fprintf(&sb, "- **Sources:** %d documents\n", sources.Len())
	if dest != "" {
		fmt.Fprintf(&sb, "- **Written to:** `%s`\n", dest)
	}
	return sb.String()
}

// FieldErrorsMarkdown lists validation failures by field.
func FieldErrorsMarkdown(reasons map[string]string) string {
	names := make([]string, 0, len(reasons))
	for name := range reasons {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("# Invalid configuration\n\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "- `%s`: %s\n", name, reasons[name])
	}
	return sb.String()
}
