package builtin

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/shipyard/internal/esdata"
	"github.com/aretw0/shipyard/internal/shuffle"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/generator"
	"github.com/aretw0/shipyard/pkg/schema"
)

// Chaos describes the chaos generator: every outfit and ship takes the name
// and images of another one, picked by a seeded shuffle.
func Chaos() generator.Definition {
	return generator.Definition{
		Kind:        domain.KindChaos,
		Filename:    "chaos.zip",
		Description: "Shuffles every outfit and ship name and image.",
		Schema:      schema.Schema{"seed": schema.Seed()},
		Decode:      generator.DecodeInto[domain.ChaosConfig](),
		Routine:     chaos,
	}
}

type outfitLook struct {
	name      string
	thumbnail *esdata.Node
	series    *esdata.Node
	index     *esdata.Node
}

type shipLook struct {
	name      string
	noun      *esdata.Node
	plural    *esdata.Node
	sprite    *esdata.Node
	thumbnail *esdata.Node
}

func chaos(ctx context.Context, _, sources []string, cfg domain.GeneratorConfig) ([]byte, error) {
	settings, ok := cfg.(domain.ChaosConfig)
	if !ok {
		return nil, fmt.Errorf("chaos: unexpected config %T", cfg)
	}

	roots := parseSources(sources)
	outfits := collectOutfits(roots)
	ships := collectShips(roots)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := newArchive()
	about := []string{"Shuffles every outfit name and image.", "Shuffles every ship name and image."}
	if err := a.WriteNodes("plugin.txt", pluginDescription("Chaos", about, "0.1.0")); err != nil {
		return nil, err
	}
	if err := a.WriteDir("data/"); err != nil {
		return nil, err
	}

	outfitNames := sortedKeys(outfits)
	var outfitNodes []*esdata.Node
	for i, j := range shuffle.Indices(len(outfitNames), settings.Seed) {
		look := outfits[outfitNames[j]]
		n := esdata.NewNode("outfit", outfitNames[i])
		n.Add("display name", look.name)
		n.Children = append(n.Children, look.thumbnail.Clone())
		appendClone(n, look.series, look.index)
		outfitNodes = append(outfitNodes, n)
	}
	if err := a.WriteNodes("data/outfits.txt", outfitNodes); err != nil {
		return nil, err
	}

	shipNames := sortedKeys(ships)
	var shipNodes []*esdata.Node
	for i, j := range shuffle.Indices(len(shipNames), settings.Seed) {
		look := ships[shipNames[j]]
		n := esdata.NewNode("ship", shipNames[i])
		n.Add("display name", look.name)
		appendClone(n, look.noun, look.plural, look.sprite, look.thumbnail)
		shipNodes = append(shipNodes, n)
	}
	if err := a.WriteNodes("data/ships.txt", shipNodes); err != nil {
		return nil, err
	}

	return a.Bytes()
}

// collectOutfits indexes named outfits that define anything besides a weapon block.
func collectOutfits(roots []*esdata.Node) map[string]outfitLook {
	out := make(map[string]outfitLook)
	for _, root := range roots {
		if root.Key() != "outfit" || len(root.Tokens) != 2 || !hasNonWeaponChild(root) {
			continue
		}
		name := root.Value(1)
		look := outfitLook{
			name:      name,
			thumbnail: lastChild(root, "thumbnail", 2),
			series:    lastChild(root, "series", 2),
			index:     lastChild(root, "index", 2),
		}
		if dn := lastChild(root, "display name", 2); dn != nil {
			look.name = dn.Value(1)
		}
		if look.thumbnail == nil {
			look.thumbnail = esdata.NewNode("thumbnail", "outfit/unknown")
		}
		out[name] = look
	}
	return out
}

func collectShips(roots []*esdata.Node) map[string]shipLook {
	out := make(map[string]shipLook)
	for _, root := range roots {
		if root.Key() != "ship" || len(root.Tokens) != 2 {
			continue
		}
		name := root.Value(1)
		look := shipLook{
			name:      name,
			noun:      lastChild(root, "noun", 2),
			plural:    lastChild(root, "plural", 2),
			sprite:    lastChild(root, "sprite", 2),
			thumbnail: lastChild(root, "thumbnail", 2),
		}
		if dn := lastChild(root, "display name", 2); dn != nil {
			look.name = dn.Value(1)
		}
		out[name] = look
	}
	return out
}

func hasNonWeaponChild(n *esdata.Node) bool {
	for _, c := range n.Children {
		if c.Key() != "weapon" {
			return true
		}
	}
	return false
}

func appendClone(parent *esdata.Node, nodes ...*esdata.Node) {
	for _, n := range nodes {
		if n != nil {
			parent.Children = append(parent.Children, n.Clone())
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
