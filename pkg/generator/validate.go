package generator

import (
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/schema"
)

// Validate checks raw fields against the definition's schema and decodes them
// into the kind's typed config. Defaults fill in missing fields first. On
// failure the error is a *schema.AggregateError holding one
// *schema.ValidationError per invalid field; fields never short-circuit.
func Validate(def Definition, fields map[string]any) (domain.GeneratorConfig, error) {
	merged := schema.WithDefaults(fields, def.Defaults)
	if err := schema.Validate(def.Schema, merged); err != nil {
		return nil, err
	}

	normalized, err := schema.Normalize(def.Schema, merged)
	if err != nil {
		return nil, &schema.AggregateError{Errors: []error{err}}
	}

	// Only declared fields reach the routine.
	values := make(map[string]any, len(def.Schema))
	for _, name := range def.Schema.Fields() {
		values[name] = normalized[name]
	}
	return def.decode(values)
}
