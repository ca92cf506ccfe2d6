package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/shipyard/pkg/schema"
	"gopkg.in/yaml.v3"
)

// GeneratorConfig declares an out-of-process generator.
type GeneratorConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Filename    string            `yaml:"filename" json:"filename"`
	Description string            `yaml:"description" json:"description"`
	// Fields maps config field names to type names ("seed", "int[1,10]").
	Fields   schema.Schema  `yaml:"fields" json:"fields"`
	Defaults map[string]any `yaml:"defaults" json:"defaults"`
}

// ConfigFile represents the structure of generators.yaml.
type ConfigFile struct {
	Generators []GeneratorConfig `yaml:"generators" json:"generators"`
}

// LoadGenerators reads a configuration file (YAML or JSON) and returns the
// declared generators in file order. A missing file declares none.
func LoadGenerators(path string) ([]GeneratorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read generators config: %w", err)
	}
	return ParseGenerators(data, strings.ToLower(filepath.Ext(path)) == ".json")
}

// ParseGenerators decodes a generators document. Entries without a name are
// skipped; a duplicated name is an error.
func ParseGenerators(data []byte, isJSON bool) ([]GeneratorConfig, error) {
	var cfg ConfigFile
	if isJSON {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse generators.json: %w", err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse generators.yaml: %w", err)
		}
	}

	seen := make(map[string]bool)
	out := make([]GeneratorConfig, 0, len(cfg.Generators))
	for _, g := range cfg.Generators {
		if g.Name == "" {
			continue
		}
		if seen[g.Name] {
			return nil, fmt.Errorf("duplicate generator: %s", g.Name)
		}
		if g.Command == "" {
			return nil, fmt.Errorf("generator %s: command is required", g.Name)
		}
		if g.Filename == "" {
			g.Filename = g.Name + ".zip"
		}
		seen[g.Name] = true
		out = append(out, g)
	}
	return out, nil
}
