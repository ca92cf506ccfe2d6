package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func shufflerSchema() Schema {
	return Schema{
		"seed":                    Seed(),
		"max_presets":             IntRange(1, 255),
		"shuffle_chance":          Percent(),
		"fixed_shuffle_days":      IntRange(0, 255),
		"shuffle_once_on_install": Flag(),
	}
}

func TestValidate_Success(t *testing.T) {
	err := Validate(shufflerSchema(), map[string]any{
		"seed":                    "42",
		"max_presets":             "5",
		"shuffle_chance":          10,
		"fixed_shuffle_days":      float64(0),
		"shuffle_once_on_install": "on",
	})
	assert.NoError(t, err)
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	err := Validate(shufflerSchema(), map[string]any{
		"seed":                    "",
		"max_presets":             "0",
		"shuffle_chance":          "101",
		"fixed_shuffle_days":      "3",
		"shuffle_once_on_install": "sometimes",
	})
	require.Error(t, err)

	fields := FieldErrors(err)
	require.Len(t, fields, 4)

	keys := make([]string, len(fields))
	for i, fe := range fields {
		keys[i] = fe.Key
	}
	assert.Equal(t, []string{"max_presets", "seed", "shuffle_chance", "shuffle_once_on_install"}, keys)
}

func TestValidate_MissingField(t *testing.T) {
	err := Validate(Schema{"seed": Seed(), "name": NonEmpty()}, map[string]any{"seed": 1})
	require.Error(t, err)

	var aggr *AggregateError
	require.True(t, errors.As(err, &aggr))
	require.Len(t, aggr.Errors, 1)

	fe := FieldErrors(err)[0]
	assert.Equal(t, "name", fe.Key)
	assert.Equal(t, "required", fe.Reason)
}

func TestValidate_NErrorsForNInvalidFields(t *testing.T) {
	for n := 1; n <= 5; n++ {
		s := Schema{}
		data := map[string]any{}
		for i := 0; i < 5; i++ {
			key := fmt.Sprintf("f%d", i)
			s[key] = Percent()
			if i < n {
				data[key] = 500
			} else {
				data[key] = 5
			}
		}
		assert.Len(t, FieldErrors(Validate(s, data)), n, "n=%d", n)
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	assert.NoError(t, Validate(Schema{}, map[string]any{"seed": "x"}))

	var nilSchema Schema
	assert.NoError(t, Validate(nilSchema, nil))
}

func TestWithDefaults(t *testing.T) {
	data := map[string]any{"seed": "1"}
	merged := WithDefaults(data, map[string]any{"seed": "0", "shuffle_chance": 0})

	assert.Equal(t, "1", merged["seed"])
	assert.Equal(t, 0, merged["shuffle_chance"])
	assert.NotContains(t, data, "shuffle_chance")
}

func TestAggregateError_String(t *testing.T) {
	single := &AggregateError{Errors: []error{&ValidationError{Key: "seed", Reason: "required"}}}
	assert.Equal(t, `field "seed": required`, single.Error())

	multi := &AggregateError{Errors: []error{
		&ValidationError{Key: "seed", Reason: "required"},
		&ValidationError{Key: "max_presets", Reason: "must be between 1 and 255, got 0", Value: "0"},
	}}
	assert.Contains(t, multi.Error(), "2 validation errors")
	assert.Contains(t, multi.Error(), `field "max_presets"`)
}

func TestSchema_JSONRoundTrip(t *testing.T) {
	raw, err := shufflerSchema().MarshalJSON()
	require.NoError(t, err)

	var decoded Schema
	require.NoError(t, decoded.UnmarshalJSON(raw))
	assert.Equal(t, shufflerSchema().Fields(), decoded.Fields())
	assert.Equal(t, "int[1,255]", decoded["max_presets"].Name())
}

func TestSchema_YAML(t *testing.T) {
	var doc struct {
		Fields Schema `yaml:"fields"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("fields:\n  seed: seed\n  radius: int[1,10]\n"), &doc))
	assert.Equal(t, []string{"radius", "seed"}, doc.Fields.Fields())
	assert.Equal(t, "int[1,10]", doc.Fields["radius"].Name())

	err := yaml.Unmarshal([]byte("fields:\n  x: complex\n"), &doc)
	assert.ErrorContains(t, err, "unsupported type")

	out, err := yaml.Marshal(Schema{"seed": Seed()})
	require.NoError(t, err)
	assert.Equal(t, "seed: seed\n", string(out))
}

func TestNormalize(t *testing.T) {
	out, err := Normalize(shufflerSchema(), map[string]any{
		"seed":                    "42",
		"max_presets":             "5",
		"shuffle_chance":          float64(10),
		"fixed_shuffle_days":      0,
		"shuffle_once_on_install": "on",
		"extra":                   "kept",
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(42), out["seed"])
	assert.Equal(t, int64(5), out["max_presets"])
	assert.Equal(t, int64(10), out["shuffle_chance"])
	assert.Equal(t, int64(0), out["fixed_shuffle_days"])
	assert.Equal(t, true, out["shuffle_once_on_install"])
	assert.Equal(t, "kept", out["extra"])
}
