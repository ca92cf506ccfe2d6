package builtin

import (
	"context"
	"errors"
	"sort"

	"github.com/aretw0/shipyard/internal/esdata"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/generator"
)

const fullMapEvent = "Full Map: I know where everything is now"

// ErrNoSystems is returned by the full map generator when the sources define
// no star system.
var ErrNoSystems = errors.New("no systems found in sources")

// FullMap describes the full map generator: a repeatable job that reveals
// every system and planet found in the sources.
func FullMap() generator.Definition {
	return generator.Definition{
		Kind:        domain.KindFullMap,
		Filename:    "full_map.zip",
		Description: "Reveal the entire map via any job board.",
		Decode:      generator.DecodeInto[domain.FullMapConfig](),
		Routine:     fullMap,
	}
}

func fullMap(ctx context.Context, _, sources []string, _ domain.GeneratorConfig) ([]byte, error) {
	var systems, planets []string
	for _, root := range parseSources(sources) {
		if root.Key() != "system" || len(root.Tokens) < 2 {
			continue
		}
		systems = append(systems, root.Value(1))
		planets = appendNamedObjects(planets, root)
	}
	if len(systems) == 0 {
		return nil, ErrNoSystems
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(systems)
	sort.Strings(planets)

	a := newArchive()
	if err := a.WriteNodes("plugin.txt", pluginDescription("Full Map", []string{"Reveal the entire map via any job board"}, "0.1.0")); err != nil {
		return nil, err
	}
	if err := a.WriteDir("data/"); err != nil {
		return nil, err
	}

	mission := esdata.NewNode("mission", fullMapEvent)
	mission.Add("name", "Map Reveal")
	mission.Add("description", "You can now see every system and planet on the map. Shrouded and hidden systems may disappear again")
	mission.Add("job")
	mission.Add("repeat")
	accept := mission.Add("on", "accept")
	accept.Add("event", fullMapEvent, "0")
	accept.Add("fail")
	if err := a.WriteNodes("data/full_map_mission.txt", []*esdata.Node{mission}); err != nil {
		return nil, err
	}

	event := esdata.NewNode("event", fullMapEvent)
	for _, name := range systems {
		event.Add("visit", name)
	}
	for _, name := range planets {
		event.Add("visit planet", name)
	}
	if err := a.WriteNodes("data/full_map_event.txt", []*esdata.Node{event}); err != nil {
		return nil, err
	}

	return a.Bytes()
}

// appendNamedObjects collects the names of objects nested at any depth under n.
func appendNamedObjects(names []string, n *esdata.Node) []string {
	for _, c := range n.Children {
		if c.Key() != "object" {
			continue
		}
		if len(c.Tokens) >= 2 {
			names = append(names, c.Value(1))
		}
		names = appendNamedObjects(names, c)
	}
	return names
}
