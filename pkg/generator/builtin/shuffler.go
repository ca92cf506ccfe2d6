package builtin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/shipyard/internal/esdata"
	"github.com/aretw0/shipyard/internal/shuffle"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/generator"
	"github.com/aretw0/shipyard/pkg/schema"
)

const (
	shufflerName    = "System Shuffler"
	shufflerVersion = "0.4.0"

	condInstalled     = "System Shuffler: Installed"
	condCurrentPreset = "System Shuffler: Current Preset"
	condLastShuffle   = "System Shuffler: Last Shuffle Day"

	restorePrefix  = "System Shuffler: Restore Preset"
	activatePrefix = "System Shuffler: Activate Preset"
)

// SystemShuffler describes the system shuffler generator: a location
// randomizer that moves every star system to the position of another one,
// switching between seeded presets while the player lands.
func SystemShuffler() generator.Definition {
	return generator.Definition{
		Kind:        domain.KindSystemShuffler,
		Filename:    "system_shuffler.zip",
		Description: "A \"no logic\" location randomizer with seeded universe presets.",
		Schema: schema.Schema{
			"seed":                    schema.Seed(),
			"max_presets":             schema.IntRange(1, 255),
			"shuffle_chance":          schema.Percent(),
			"fixed_shuffle_days":      schema.IntRange(0, 255),
			"shuffle_once_on_install": schema.Flag(),
		},
		Defaults: map[string]any{
			"shuffle_chance":          0,
			"fixed_shuffle_days":      0,
			"shuffle_once_on_install": false,
		},
		Decode:  generator.DecodeInto[domain.SystemShufflerConfig](),
		Routine: systemShuffler,
	}
}

func systemShuffler(ctx context.Context, _, sources []string, cfg domain.GeneratorConfig) ([]byte, error) {
	settings, ok := cfg.(domain.SystemShufflerConfig)
	if !ok {
		return nil, fmt.Errorf("system-shuffler: unexpected config %T", cfg)
	}
	if settings.MaxPresets == 0 {
		return nil, fmt.Errorf("system-shuffler: max_presets must be at least 1")
	}

	roots := parseSources(sources)
	sv := newSurvey()
	sv.markPlanetWormholes(roots)

	var places []*esdata.Node
	for _, root := range roots {
		switch root.Key() {
		case "system", "wormhole":
			places = append(places, root)
		}
	}
	base := universe{}
	sv.collect(places, base)
	events := sv.eventUniverses(roots)
	eventNames := sortedKeys(events)
	systems := sv.sortedSystems()

	a := newArchive()
	if err := a.WriteNodes("plugin.txt", pluginDescription(shufflerName, shufflerAbout(settings), shufflerVersion)); err != nil {
		return nil, err
	}
	if err := a.WriteDir("data/"); err != nil {
		return nil, err
	}
	missions := []*esdata.Node{
		shufflerMainMission(settings, eventNames),
		shufflerRestoreJob(settings, eventNames),
		shufflerManualJob(settings, eventNames),
	}
	if err := a.WriteNodes("data/main.txt", missions); err != nil {
		return nil, err
	}
	if err := a.WriteDir("data/presets/"); err != nil {
		return nil, err
	}

	for preset := 0; preset <= int(settings.MaxPresets); preset++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writePreset(a, preset, systemSwaps(systems, preset, settings.Seed), base, events, eventNames); err != nil {
			return nil, err
		}
	}

	return a.Bytes()
}

// writePreset adds the main.txt, events.txt and missions.txt of one preset.
func writePreset(a *archive, preset int, swaps map[string]string, base universe, events map[string]universe, eventNames []string) error {
	dir := fmt.Sprintf("data/presets/universe_preset_%d/", preset)
	if err := a.WriteDir(dir); err != nil {
		return err
	}
	restoreName, activateName := presetEventNames(preset)

	if err := a.WriteNodes(dir+"main.txt", base.swapEvents(swaps, restoreName, activateName)); err != nil {
		return err
	}

	var eventNodes, backpatches []*esdata.Node
	for _, name := range eventNames {
		eventNodes = append(eventNodes, events[name].swapEvents(swaps,
			restoreName+": "+name, activateName+": "+name)...)
		backpatches = append(backpatches, backpatchMissions(preset, name, restoreName, activateName)...)
	}
	if err := a.WriteNodes(dir+"events.txt", eventNodes); err != nil {
		return err
	}
	return a.WriteNodes(dir+"missions.txt", backpatches)
}

// systemSwaps maps every system to the one that takes its place in a
// preset. Preset 0 keeps every system in place.
func systemSwaps(systems []string, preset int, seed uint64) map[string]string {
	swaps := make(map[string]string, len(systems))
	if preset == 0 {
		for _, name := range systems {
			swaps[name] = name
		}
		return swaps
	}
	for k, i := range shuffle.Indices(len(systems), seed+uint64(preset)) {
		swaps[systems[k]] = systems[i]
	}
	return swaps
}

func presetEventNames(preset int) (restore, activate string) {
	return fmt.Sprintf("%s %d", restorePrefix, preset), fmt.Sprintf("%s %d", activatePrefix, preset)
}

func shufflerAbout(s domain.SystemShufflerConfig) []string {
	about := []string{`An Endless Sky "no logic" location randomizer.`}
	if s.ShuffleOnceOnInstall {
		about = append(about, "In addition to shuffling once immediately upon installation, this plugin was generated with the following settings:")
	} else {
		about = append(about, "This plugin was generated with the following settings:")
	}
	about = append(about,
		fmt.Sprintf("- PRNG seed: %d", s.Seed),
		fmt.Sprintf("- %d possible universe presets", s.MaxPresets),
	)
	if s.ShuffleChance > 0 {
		about = append(about, fmt.Sprintf("- A %d%% chance to shuffle to a different preset every time you land", s.ShuffleChance))
	}
	if s.FixedShuffleDays > 0 {
		about = append(about, fmt.Sprintf("- A guaranteed shuffle roughly once every %d days", s.FixedShuffleDays))
	}
	return about
}

func shufflerMainMission(s domain.SystemShufflerConfig, events []string) *esdata.Node {
	m := esdata.NewNode("mission", "zzzzz System Shuffler: Select Preset")
	m.Add("invisible")
	m.Add("repeat")
	m.Add("non-blocking")
	m.Add("landing")
	m.Add("offer precedence", "-1000000")

	toOffer := m.Add("to", "offer")
	if s.ShuffleChance == 0 && s.FixedShuffleDays == 0 && !s.ShuffleOnceOnInstall {
		toOffer.Add("never")
	} else {
		or := toOffer.Add("or")
		if s.ShuffleChance > 0 {
			or.Add("random", "<", strconv.Itoa(int(s.ShuffleChance)))
		}
		if s.FixedShuffleDays > 0 {
			or.Add("days since epoch", ">=", "(", condLastShuffle, "+", strconv.Itoa(int(s.FixedShuffleDays)), ")")
		}
		if s.ShuffleOnceOnInstall {
			or.Add("not", condInstalled)
		}
	}

	onOffer := m.Add("on", "offer")
	conversation := onOffer.Add("conversation")
	conversation.Add("The universe has shuffled. Good luck.")
	presetSwitch(conversation, s.MaxPresets, events, false)
	onOffer.Add("fail")
	return m
}

func shufflerRestoreJob(s domain.SystemShufflerConfig, events []string) *esdata.Node {
	m := esdata.NewNode("mission", "zzzzz System Shuffler: Restore Universe")
	m.Add("name", "Unshuffle the universe")
	m.Add("description", "Restore all systems in the universe to how they should be, free of charge.")
	m.Add("repeat")
	m.Add("job")
	m.Add("to", "offer").Add(condCurrentPreset, "!=", "0")

	onAccept := m.Add("on", "accept")
	conversation := onAccept.Add("conversation")
	conversation.Add("As per your request, the universe has been restored.")
	presetSwitch(conversation, s.MaxPresets, events, true)
	onAccept.Add("fail")
	return m
}

func shufflerManualJob(s domain.SystemShufflerConfig, events []string) *esdata.Node {
	m := esdata.NewNode("mission", "zzzzz System Shuffler: Manual Shuffle")
	m.Add("name", "Shuffle the universe")
	m.Add("description", fmt.Sprintf("Shuffle all systems in the universe to one of %d presets.", s.MaxPresets))
	m.Add("repeat")
	m.Add("job")

	onAccept := m.Add("on", "accept")
	conversation := onAccept.Add("conversation")
	conversation.Add("As per your request, the universe has shuffled. Good luck.")
	presetSwitch(conversation, s.MaxPresets, events, false)
	onAccept.Add("fail")
	return m
}

// presetSwitch appends to a conversation the steps that restore the current
// preset, pick the next one (preset 0 when reset) and activate it.
func presetSwitch(conversation *esdata.Node, maxPresets uint8, events []string, reset bool) {
	presetEventBranches(conversation, maxPresets, events, false)

	action := conversation.Add("action")
	action.Add(condInstalled, "=", "1")
	if reset {
		action.Add(condCurrentPreset, "=", "0")
	} else {
		action.Add(condCurrentPreset, "=", "(", fmt.Sprintf("roll: %d", maxPresets), "+", "1", ")")
	}
	action.Add(condLastShuffle, "=", "days since epoch")

	presetEventBranches(conversation, maxPresets, events, true)
}

// presetEventBranches fires the restore (or activate) event of the current
// preset only, along with the per-event variants of every event that has
// already happened.
func presetEventBranches(conversation *esdata.Node, maxPresets uint8, events []string, activate bool) {
	prefix, label := restorePrefix, "restore"
	if activate {
		prefix, label = activatePrefix, "activate"
	}
	for preset := 0; preset <= int(maxPresets); preset++ {
		skip := fmt.Sprintf("not %d %s", preset, label)
		conversation.Add("branch", skip).Add(condCurrentPreset, "!=", strconv.Itoa(preset))

		fire := esdata.NewNode("action")
		fire.Add("event", fmt.Sprintf("%s %d", prefix, preset), "0")
		if activate {
			conversation.Children = append(conversation.Children, fire)
		}

		restoreName, activateName := presetEventNames(preset)
		for _, event := range events {
			eventSkip := skip + " " + event
			conds, actions := eventSync(event, restoreName, activateName, activate, true)
			conversation.Add("branch", eventSkip).Children = conds
			conversation.Add("action").Children = actions
			conversation.Add("label", eventSkip)
		}

		if !activate {
			conversation.Children = append(conversation.Children, fire)
		}
		conversation.Add("label", skip)
	}
	conversation.Add("action").Add(condCurrentPreset, "=", condCurrentPreset)
}

// eventSync returns the conditions and actions that keep the shuffled copy of
// a game event in step with the event itself. With invert the conditions
// select the case where nothing needs doing, for use as a branch.
func eventSync(event, restoreName, activateName string, activate, invert bool) (conds, actions []*esdata.Node) {
	has := "has"
	if invert {
		has = "not"
	}
	happened := "event: " + event
	applied := "event: " + activateName + ": " + event

	conds = append(conds, esdata.NewNode(has, happened))
	if activate {
		op := "!="
		if invert {
			op = "=="
		}
		conds = append(conds, esdata.NewNode(applied, op, happened))
		actions = append(actions,
			esdata.NewNode("event", activateName+": "+event, "0"),
			esdata.NewNode(applied, "=", happened),
		)
		return conds, actions
	}
	conds = append(conds, esdata.NewNode(has, applied))
	actions = append(actions,
		esdata.NewNode("event", restoreName+": "+event, "0"),
		esdata.NewNode(applied, "=", "0"),
	)
	return conds, actions
}

// backpatchMissions catch up the shuffled copy of a game event that happened
// while a preset was already active, or undo it once the preset is left.
func backpatchMissions(preset int, event, restoreName, activateName string) []*esdata.Node {
	var out []*esdata.Node
	for _, activate := range []bool{false, true} {
		name, op := restoreName, "!="
		if activate {
			name, op = activateName, "=="
		}
		m := esdata.NewNode("mission", fmt.Sprintf("zzzzz %s: %s", name, event))
		m.Add("invisible")
		m.Add("repeat")
		m.Add("non-blocking")
		m.Add("landing")
		m.Add("offer precedence", "-1000000")

		conds, actions := eventSync(event, restoreName, activateName, activate, false)
		toOffer := m.Add("to", "offer")
		toOffer.Add("has", condInstalled)
		toOffer.Add(condCurrentPreset, op, strconv.Itoa(preset))
		toOffer.Children = append(toOffer.Children, conds...)

		onOffer := m.Add("on", "offer")
		onOffer.Children = append(onOffer.Children, actions...)
		onOffer.Add("fail")
		out = append(out, m)
	}
	return out
}
