package generator

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/registry"
	"github.com/aretw0/shipyard/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// Routine builds an archive from parallel path/content sequences and a typed config.
type Routine func(ctx context.Context, paths, sources []string, cfg domain.GeneratorConfig) ([]byte, error)

// Decoder converts validated, normalized fields into a typed config.
type Decoder func(values map[string]any) (domain.GeneratorConfig, error)

// Definition describes a generator.
type Definition struct {
	Kind        domain.GeneratorKind
	Filename    string
	Description string
	Schema      schema.Schema
	Defaults    map[string]any
	Decode      Decoder
	Routine     Routine
}

// Fields returns the configuration field names of the definition, sorted.
func (d Definition) Fields() []string {
	return d.Schema.Fields()
}

func (d Definition) decode(values map[string]any) (domain.GeneratorConfig, error) {
	if d.Decode == nil {
		return domain.ExternalConfig{Values: values}, nil
	}
	return d.Decode(values)
}

// DecodeInto returns a Decoder that fills a T through mapstructure.
func DecodeInto[T domain.GeneratorConfig]() Decoder {
	return func(values map[string]any) (domain.GeneratorConfig, error) {
		var cfg T
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "mapstructure",
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(values); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
		return cfg, nil
	}
}

// Catalog holds the generator definitions available to a process.
type Catalog struct {
	reg *registry.Registry[Definition]
}

// NewCatalog creates a catalog holding defs.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{reg: registry.NewRegistry[Definition]()}
	for _, def := range defs {
		if err := c.Register(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds def to the catalog, replacing any definition of the same kind.
func (c *Catalog) Register(def Definition) error {
	if def.Kind == "" {
		return fmt.Errorf("generator definition without kind")
	}
	if def.Routine == nil {
		return fmt.Errorf("generator %s: missing routine", def.Kind)
	}
	if def.Filename == "" {
		return fmt.Errorf("generator %s: missing filename", def.Kind)
	}
	c.reg.Register(string(def.Kind), def)
	return nil
}

// Lookup returns the definition for kind, or an error wrapping
// domain.ErrUnknownGenerator.
func (c *Catalog) Lookup(kind domain.GeneratorKind) (Definition, error) {
	def, ok := c.reg.Lookup(string(kind))
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", domain.ErrUnknownGenerator, kind)
	}
	return def, nil
}

// Definitions returns every definition ordered by kind.
func (c *Catalog) Definitions() []Definition {
	names := c.reg.Names()
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		if def, ok := c.reg.Lookup(name); ok {
			defs = append(defs, def)
		}
	}
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].Kind < defs[j].Kind })
	return defs
}
