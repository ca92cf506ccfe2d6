package esdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# comment line
system Sol
	pos -100 25.5
	object Earth
		sprite planet/earth
	object
		object "Luna Base"

outfit "Hyperdrive" # trailing comment
	thumbnail outfit/hyperdrive
	description ` + "`A \"fast\" drive`" + `
`

func TestParse_Structure(t *testing.T) {
	roots := Parse(sample)
	require.Len(t, roots, 2)

	sol := roots[0]
	assert.Equal(t, []string{"system", "Sol"}, sol.Tokens)
	require.Len(t, sol.Children, 3)
	assert.Equal(t, []string{"pos", "-100", "25.5"}, sol.Children[0].Tokens)
	assert.Equal(t, "Earth", sol.Children[1].Value(1))
	assert.Equal(t, "planet/earth", sol.Children[1].Child("sprite").Value(1))
	assert.Equal(t, "Luna Base", sol.Children[2].Children[0].Value(1))

	outfit := roots[1]
	assert.Equal(t, []string{"outfit", "Hyperdrive"}, outfit.Tokens)
	assert.Equal(t, `A "fast" drive`, outfit.Child("description").Value(1))
}

func TestWrite_RoundTrip(t *testing.T) {
	roots := Parse(sample)
	again := Parse(String(roots))
	assert.Equal(t, roots, again)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "Sol", Quote("Sol"))
	assert.Equal(t, `"Luna Base"`, Quote("Luna Base"))
	assert.Equal(t, `""`, Quote(""))
	assert.Equal(t, "`say \"hi\"`", Quote(`say "hi"`))
	assert.Equal(t, `"#1"`, Quote("#1"))
}

func TestNode_BuildAndClone(t *testing.T) {
	root := NewNode("mission", "Full Map")
	root.Add("job")
	on := root.Add("on", "complete")
	on.Add("event", "Full Map: reveal")

	clone := root.Clone()
	clone.Children[0].Tokens[0] = "landing"

	assert.Equal(t, "job", root.Children[0].Key())
	assert.Equal(t, "mission \"Full Map\"\n\tjob\n\ton complete\n\t\tevent \"Full Map: reveal\"", String([]*Node{root}))
	assert.Nil(t, root.Child("missing"))
	assert.Equal(t, "", NewNode().Key())
}
