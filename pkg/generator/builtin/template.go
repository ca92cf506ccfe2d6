package builtin

import (
	"context"

	"github.com/aretw0/shipyard/internal/esdata"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/generator"
)

const templateName = "Plugin Template"

// Template describes the template generator: an empty plugin skeleton that
// ignores its sources.
func Template() generator.Definition {
	return generator.Definition{
		Kind:        domain.KindTemplate,
		Filename:    "plugin_template.zip",
		Description: "Empty plugin skeleton with a reminder mission to replace.",
		Decode:      generator.DecodeInto[domain.TemplateConfig](),
		Routine:     template,
	}
}

func template(_ context.Context, _, _ []string, _ domain.GeneratorConfig) ([]byte, error) {
	a := newArchive()

	if err := a.WriteNodes("plugin.txt", pluginDescription(templateName, []string{"Template plugin"}, "0.1.0")); err != nil {
		return nil, err
	}
	if err := a.WriteDir("data/"); err != nil {
		return nil, err
	}

	mission := esdata.NewNode("mission", templateName+": forgot to remove example file")
	mission.Add("name", "YOU FORGOT SOMETHING")
	mission.Add("description", "The example file was never removed from your template plugin. Go back and remove it.")
	mission.Add("non-blocking")
	mission.Add("landing")
	mission.Add("repeat")
	mission.Add("offer precedence", "1000000000")
	conversation := mission.Add("on", "offer").Add("conversation")
	conversation.Add("As soon as you land, you realize something is wrong.")
	conversation.Add("	You forgot to remove the example file from your template plugin!")
	conversation.Add("	Everything goes dark, and you die.").Add("die")

	if err := a.WriteNodes("data/replace_with_plugin_data.txt", []*esdata.Node{mission}); err != nil {
		return nil, err
	}
	return a.Bytes()
}
