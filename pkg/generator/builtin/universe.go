package builtin

import (
	"sort"

	"github.com/aretw0/shipyard/internal/esdata"
)

// nodeAction records how a data node changes the universe it belongs to.
type nodeAction int

const (
	actionRemove nodeAction = iota
	actionClearRemove
	actionAdd
	actionClearAdd
)

// Attributes of a system that travel with it when systems trade places.
var (
	systemAttributes   = []string{"pos", "link", "jump range", "inaccessible", "hidden", "shrouded"}
	wormholeAttributes = []string{"link"}
)

// owner names the root a recorded attribute belongs to: a system or
// wormhole by name, or a bare event-level "link"/"unlink" with no name.
type owner struct {
	kind, name string
}

type recorded struct {
	action nodeAction
	node   *esdata.Node
}

// attributes keeps recorded nodes per attribute in first-seen order.
type attributes struct {
	order []string
	nodes map[string][]recorded
}

// universe is every attribute that must move when systems are swapped.
type universe map[owner]*attributes

func (u universe) persist(o owner, attr string, r recorded) {
	a, ok := u[o]
	if !ok {
		a = &attributes{nodes: map[string][]recorded{}}
		u[o] = a
	}
	list, seen := a.nodes[attr]
	if !seen {
		a.order = append(a.order, attr)
	}
	for _, existing := range list {
		if existing.action == r.action && existing.node == r.node {
			return
		}
	}
	a.nodes[attr] = append(list, r)
}

// owners returns the keys ordered by kind, then name.
func (u universe) owners() []owner {
	out := make([]owner, 0, len(u))
	for o := range u {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].kind != out[j].kind {
			return out[i].kind < out[j].kind
		}
		return out[i].name < out[j].name
	})
	return out
}

// survey tracks names seen while scanning data files.
type survey struct {
	systems   map[string]bool
	planets   map[string]string
	wormholes map[string]bool
}

func newSurvey() *survey {
	return &survey{
		systems:   map[string]bool{},
		planets:   map[string]string{},
		wormholes: map[string]bool{},
	}
}

// sortedSystems returns every system name seen, sorted.
func (s *survey) sortedSystems() []string {
	return sortedKeys(s.systems)
}

// attributeKey returns the key of a node, skipping a leading add or remove.
func attributeKey(n *esdata.Node) string {
	switch n.Key() {
	case "add", "remove":
		return n.Value(1)
	}
	return n.Key()
}

func actionOf(n *esdata.Node) nodeAction {
	switch n.Key() {
	case "remove":
		if len(n.Tokens) >= 2 || len(n.Children) > 0 {
			return actionRemove
		}
		return actionClearRemove
	case "add":
		return actionAdd
	default:
		return actionClearAdd
	}
}

// markPlanetWormholes records planets that declare a wormhole.
func (s *survey) markPlanetWormholes(roots []*esdata.Node) {
	for _, root := range roots {
		if root.Key() != "planet" || len(root.Tokens) < 2 {
			continue
		}
		for _, c := range root.Children {
			if c.Key() == "wormhole" && len(c.Tokens) >= 2 {
				s.wormholes[root.Value(1)] = true
				break
			}
		}
	}
}

// collect records the movable attributes of system, wormhole, link and unlink
// nodes into u.
func (s *survey) collect(nodes []*esdata.Node, u universe) {
	for _, n := range nodes {
		if len(n.Tokens) < 2 {
			continue
		}
		kind, name := n.Key(), n.Value(1)

		var attrs []string
		switch kind {
		case "system":
			s.systems[name] = true
			s.wormholeObjects(name, n, 0, u)
			attrs = systemAttributes
		case "wormhole":
			attrs = wormholeAttributes
		case "link":
			u.persist(owner{kind: kind}, kind, recorded{action: actionAdd, node: n})
		case "unlink":
			u.persist(owner{kind: kind}, kind, recorded{action: actionRemove, node: n})
		}

		for _, attr := range attrs {
			for _, c := range n.Children {
				if len(c.Tokens) > 0 && attributeKey(c) == attr {
					u.persist(owner{kind, name}, attr, recorded{action: actionOf(c), node: c})
				}
			}
		}
	}
}

// wormholeObjects walks the objects of a system and records the top-level
// ones that lead to a wormhole planet. A planet found in two systems is a
// wormhole.
func (s *survey) wormholeObjects(system string, n *esdata.Node, depth int, u universe) bool {
	found := false
	for _, c := range n.Children {
		if len(c.Tokens) == 0 || attributeKey(c) != "object" {
			continue
		}
		isWormhole := false
		name := c.Value(1)
		if c.Key() != "object" {
			name = c.Value(2)
		}
		if name != "" {
			if prev, ok := s.planets[name]; ok && prev != system {
				s.wormholes[name] = true
			}
			s.planets[name] = system
			isWormhole = s.wormholes[name]
		}
		if s.wormholeObjects(system, c, depth+1, u) {
			isWormhole = true
		}
		if depth == 0 && isWormhole {
			u.persist(owner{"system", system}, "object", recorded{action: actionOf(c), node: c})
		}
		found = found || isWormhole
	}
	return found
}

// eventUniverses collects, per event name, the attributes an event changes.
func (s *survey) eventUniverses(roots []*esdata.Node) map[string]universe {
	out := map[string]universe{}
	for _, root := range roots {
		if root.Key() != "event" || len(root.Tokens) < 2 {
			continue
		}
		var changes []*esdata.Node
		for _, c := range root.Children {
			switch c.Key() {
			case "system", "wormhole", "link", "unlink":
				changes = append(changes, c)
			}
		}
		if len(changes) == 0 {
			continue
		}
		u := universe{}
		s.collect(changes, u)
		if len(u) > 0 {
			out[root.Value(1)] = u
		}
	}
	return out
}

// changes returns the nodes that undo (removals) and apply (additions) the
// attributes of o once systems are renamed through swaps.
func (u universe) changes(o owner, swaps map[string]string) (removals, additions []*esdata.Node) {
	attrs := u[o]
	for _, activate := range []bool{false, true} {
		var out []*esdata.Node
		for _, attr := range attrs.order {
			removedAll := false
		values:
			for _, r := range attrs.nodes[attr] {
				adding := activate && (r.action == actionAdd || r.action == actionClearAdd) ||
					!activate && (r.action == actionRemove || r.action == actionClearRemove)

				switch attr {
				case "pos":
					out = append(out, r.node.Clone())
				case "jump range":
					if adding {
						out = append(out, r.node.Clone())
					} else {
						out = append(out, esdata.NewNode("jump range", "0"))
					}
				case "link", "unlink":
					if o.kind == "wormhole" && !adding {
						// A single bare "remove link" clears every wormhole link.
						if removedAll {
							break values
						}
						removedAll = true
					}
					out = append(out, linkChange(attr, o.kind, r.node, adding, swaps))
				case "object":
					out = append(out, objectChange(r.node, adding))
				default:
					out = append(out, attributeChange(attr, r.node, adding))
				}
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			return appliesFirst(out[i]) && !appliesFirst(out[j])
		})
		if activate {
			additions = out
		} else {
			removals = out
		}
	}
	return removals, additions
}

func appliesFirst(n *esdata.Node) bool {
	return n.Key() == "pos" || n.Key() == "remove"
}

// isEventLink reports whether n is an event-level link change rather than a
// change nested under a system or wormhole.
func isEventLink(n *esdata.Node) bool {
	return n.Key() == "link" || n.Key() == "unlink"
}

func linkChange(attr, ownerKind string, src *esdata.Node, adding bool, swaps map[string]string) *esdata.Node {
	bare := ownerKind == "link" || ownerKind == "unlink"
	var out *esdata.Node
	switch {
	case adding && bare:
		out = esdata.NewNode("link")
	case adding:
		out = esdata.NewNode("add", "link")
	case bare:
		out = esdata.NewNode("unlink")
	default:
		out = esdata.NewNode("remove", "link")
	}
	if ownerKind == "wormhole" && !adding {
		return out
	}

	after := false
	for _, tok := range src.Tokens {
		if !after {
			after = tok == attr
			continue
		}
		if swapped, ok := swaps[tok]; ok {
			tok = swapped
		}
		out.Tokens = append(out.Tokens, tok)
	}
	return out
}

func objectChange(src *esdata.Node, adding bool) *esdata.Node {
	out := cloneWithout(src, !adding)
	modifier := "remove"
	if adding {
		modifier = "add"
	}
	switch out.Key() {
	case "add", "remove":
		out.Tokens[0] = modifier
	default:
		out.Tokens = append([]string{modifier}, out.Tokens...)
	}
	return out
}

func attributeChange(attr string, src *esdata.Node, adding bool) *esdata.Node {
	if !adding {
		return esdata.NewNode("remove", attr)
	}
	out := src.Clone()
	switch out.Key() {
	case "add", "remove":
		out.Tokens = out.Tokens[1:]
	}
	return out
}

// cloneWithout deep-copies n, dropping nested objects when dropObjects is set.
func cloneWithout(n *esdata.Node, dropObjects bool) *esdata.Node {
	out := esdata.NewNode(append([]string(nil), n.Tokens...)...)
	for _, c := range n.Children {
		if dropObjects && c.Key() == "object" {
			continue
		}
		out.Children = append(out.Children, cloneWithout(c, dropObjects))
	}
	return out
}

// swapEvents builds the restore and activate events that move every
// attribute of u onto the systems named by swaps.
func (u universe) swapEvents(swaps map[string]string, restoreName, activateName string) []*esdata.Node {
	restore := esdata.NewNode("event", restoreName)
	activate := esdata.NewNode("event", activateName)

	for _, o := range u.owners() {
		target := o.name
		if swapped, ok := swaps[o.name]; ok {
			target = swapped
		}
		removals, additions := u.changes(o, swaps)

		var nestedRemovals, nestedAdditions, linkRemovals, linkAdditions []*esdata.Node
		for _, n := range removals {
			if isEventLink(n) {
				linkRemovals = append(linkRemovals, n)
			} else {
				nestedRemovals = append(nestedRemovals, n)
			}
		}
		for _, n := range additions {
			if isEventLink(n) {
				linkAdditions = append(linkAdditions, n)
			} else {
				nestedAdditions = append(nestedAdditions, n)
			}
		}

		if len(nestedRemovals)+len(nestedAdditions) > 0 {
			restore.Add(o.kind, target).Children = nestedRemovals
			activate.Add(o.kind, target).Children = nestedAdditions
		}
		restore.Children = append(restore.Children, linkRemovals...)
		activate.Children = append(activate.Children, linkAdditions...)
	}
	return []*esdata.Node{restore, activate}
}
