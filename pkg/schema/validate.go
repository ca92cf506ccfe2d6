package schema

import "sort"

// Schema is a map of field names to their expected types.
// Example: {"api_key": String(), "retries": Int(), "tags": Slice(String())}
type Schema map[string]Type

// Fields returns the field names of the schema in sorted order.
func (s Schema) Fields() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks if data conforms to the schema.
// Every field is checked; the returned error holds one entry per failing
// field, ordered by field name.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error

	for _, fieldName := range schema.Fields() {
		fieldType := schema[fieldName]
		value, exists := data[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		// Validate the value against the type
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	// If there are errors, aggregate them
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

// WithDefaults returns a copy of data where every missing key present in
// defaults is filled in. The input map is not modified.
func WithDefaults(data, defaults map[string]any) map[string]any {
	merged := make(map[string]any, len(data)+len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	return merged
}

// Normalize returns a copy of data where every schema field whose type
// implements Normalizer is replaced by its canonical value. Call it only on
// data that passed Validate.
func Normalize(schema Schema, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, name := range schema.Fields() {
		n, ok := schema[name].(Normalizer)
		if !ok {
			continue
		}
		value, exists := out[name]
		if !exists {
			continue
		}
		canonical, err := n.Normalize(value)
		if err != nil {
			return nil, &ValidationError{Key: name, Reason: err.Error(), Value: value}
		}
		out[name] = canonical
	}
	return out, nil
}
