package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/generator"
	"github.com/aretw0/shipyard/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestCatalogMarkdown(t *testing.T) {
	defs := []generator.Definition{
		{Kind: domain.KindTemplate, Filename: "plugin_template.zip", Description: "Empty plugin"},
		{
			Kind:     domain.KindChaos,
			Filename: "chaos.zip",
			Schema:   schema.Schema{"seed": schema.Seed(), "level": schema.Percent()},
			Defaults: map[string]any{"level": 50},
		},
	}

	md := CatalogMarkdown(defs)

	assert.Contains(t, md, "## template")
	assert.Contains(t, md, "Empty plugin")
	assert.Contains(t, md, "_No configuration._")
	assert.Contains(t, md, "| `level` | percent | `50` |")
	assert.Contains(t, md, "| `seed` | seed | - |")
	assert.Less(t, bytes.Index([]byte(md), []byte("`level`")), bytes.Index([]byte(md), []byte("`seed`")))
}

func TestArtifactMarkdown(t *testing.T) {
	md := ArtifactMarkdown(domain.KindFullMap,
		domain.GeneratedArtifact{Filename: "full_map.zip", Bytes: []byte("abc")},
		domain.NewSourceCollection(domain.SourceEntry{Path: "a", Content: "b"}),
		"out/full_map.zip",
	)
	assert.Contains(t, md, "`full_map.zip` (3 bytes)")
	assert.Contains(t, md, "1 documents")
	assert.Contains(t, md, "out/full_map.zip")
}

func TestFieldErrorsMarkdown_Sorted(t *testing.T) {
	md := FieldErrorsMarkdown(map[string]string{"seed": "required", "days": "too big"})
	assert.Less(t, bytes.Index([]byte(md), []byte("days")), bytes.Index([]byte(md), []byte("seed")))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.Contains(t, buf.String(), "|____/")
}
