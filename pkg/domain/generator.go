package domain

// GeneratorKind identifies a generator routine.
type GeneratorKind string

const (
	KindTemplate       GeneratorKind = "template"
	KindFullMap        GeneratorKind = "full-map"
	KindChaos          GeneratorKind = "chaos"
	KindSystemShuffler GeneratorKind = "system-shuffler"
)

// GeneratorConfig is the typed configuration handed to a generator.
// The set of variants is closed: only types in this package implement it.
type GeneratorConfig interface {
	generatorConfig()
}

// TemplateConfig configures the template generator. It has no fields.
type TemplateConfig struct{}

// FullMapConfig configures the full map generator. It has no fields.
type FullMapConfig struct{}

// ChaosConfig configures the chaos generator.
type ChaosConfig struct {
	Seed uint64 `mapstructure:"seed" json:"seed"`
}

// SystemShufflerConfig configures the system shuffler generator.
type SystemShufflerConfig struct {
	Seed                 uint64 `mapstructure:"seed" json:"seed"`
	MaxPresets           uint8  `mapstructure:"max_presets" json:"max_presets"`
	ShuffleChance        uint8  `mapstructure:"shuffle_chance" json:"shuffle_chance"`
	FixedShuffleDays     uint8  `mapstructure:"fixed_shuffle_days" json:"fixed_shuffle_days"`
	ShuffleOnceOnInstall bool   `mapstructure:"shuffle_once_on_install" json:"shuffle_once_on_install"`
}

// ExternalConfig carries the validated fields of an out-of-process generator.
type ExternalConfig struct {
	Values map[string]any `json:"values"`
}

func (TemplateConfig) generatorConfig()       {}
func (FullMapConfig) generatorConfig()        {}
func (ChaosConfig) generatorConfig()          {}
func (SystemShufflerConfig) generatorConfig() {}
func (ExternalConfig) generatorConfig()       {}
