package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int[0,100]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// Normalizer is implemented by types that convert accepted raw values into a
// canonical Go value (int64, uint64, bool) after validation.
type Normalizer interface {
	Normalize(value any) (any, error)
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// NonEmptyType validates strings that contain at least one non-space character.
type NonEmptyType struct{}

func (t *NonEmptyType) Name() string { return "nonempty" }

func (t *NonEmptyType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return fmt.Errorf("expected int, got %q", v.String())
		}
		return nil
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// RangeType validates integers within [Min, Max].
// Unlike IntType it also accepts numeric strings, the shape form fields arrive in.
type RangeType struct {
	Min, Max int64
	name     string
}

func (t *RangeType) Name() string {
	if t.name != "" {
		return t.name
	}
	return fmt.Sprintf("int[%d,%d]", t.Min, t.Max)
}

func (t *RangeType) Validate(value any) error {
	n, err := toInt64(value)
	if err != nil {
		return err
	}
	if n < t.Min || n > t.Max {
		return fmt.Errorf("must be between %d and %d, got %d", t.Min, t.Max, n)
	}
	return nil
}

func (t *RangeType) Normalize(value any) (any, error) { return toInt64(value) }

// SeedType validates a non-empty, non-negative integer seed that fits in 64 bits.
type SeedType struct{}

func (t *SeedType) Name() string { return "seed" }

func (t *SeedType) Validate(value any) error {
	_, err := ParseSeed(value)
	return err
}

func (t *SeedType) Normalize(value any) (any, error) { return ParseSeed(value) }

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64, json.Number:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// FlagType validates booleans, including the string forms HTML checkboxes submit.
type FlagType struct{}

func (t *FlagType) Name() string { return "flag" }

func (t *FlagType) Validate(value any) error {
	_, err := ParseFlag(value)
	return err
}

func (t *FlagType) Normalize(value any) (any, error) { return ParseFlag(value) }

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	// Validate each element
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// NonEmpty creates a validator for strings that are not blank.
func NonEmpty() Type { return &NonEmptyType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// IntRange creates a validator for integers in [min, max].
func IntRange(min, max int64) Type { return &RangeType{Min: min, Max: max} }

// Percent creates a validator for whole percentages in [0, 100].
func Percent() Type { return &RangeType{Min: 0, Max: 100, name: "percent"} }

// Seed creates a validator for PRNG seeds.
func Seed() Type { return &SeedType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Flag creates a lenient boolean validator.
func Flag() Type { return &FlagType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// ParseType converts a string type name to a Type.
// Supports "string", "nonempty", "int", "int[min,max]", "percent", "seed",
// "float", "bool", "flag", any name given to RegisterType and slices of
// those such as "[string]".
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)

	// Handle slice types: [string], [int], etc.
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemTypeStr := typeStr[1 : len(typeStr)-1]
		elemType, err := ParseType(elemTypeStr)
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	if strings.HasPrefix(typeStr, "int[") && strings.HasSuffix(typeStr, "]") {
		bounds := strings.Split(typeStr[len("int["):len(typeStr)-1], ",")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid range type: %s", typeStr)
		}
		min, err := strconv.ParseInt(strings.TrimSpace(bounds[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range minimum in %s: %w", typeStr, err)
		}
		max, err := strconv.ParseInt(strings.TrimSpace(bounds[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range maximum in %s: %w", typeStr, err)
		}
		if min > max {
			return nil, fmt.Errorf("invalid range %s: minimum exceeds maximum", typeStr)
		}
		return IntRange(min, max), nil
	}

	// Handle built-in types
	switch typeStr {
	case "string":
		return String(), nil
	case "nonempty":
		return NonEmpty(), nil
	case "int":
		return Int(), nil
	case "percent":
		return Percent(), nil
	case "seed":
		return Seed(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "flag":
		return Flag(), nil
	default:
		if t, ok := lookupNamed(typeStr); ok {
			return t, nil
		}
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
// Example: {"seed": "seed", "max_presets": "int[1,255]"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

// Exact float64 bounds of the uint64 and int64 ranges.
var (
	twoTo64 = math.Ldexp(1, 64)
	twoTo63 = math.Ldexp(1, 63)
)

// ParseSeed converts a raw seed value to an unsigned 64-bit integer.
func ParseSeed(value any) (uint64, error) {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, fmt.Errorf("seed must not be empty")
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("seed must be a non-negative integer, got %q", v)
		}
		return n, nil
	case json.Number:
		return ParseSeed(v.String())
	case float64:
		// float64(math.MaxUint64) rounds up to 2^64, which does not fit.
		if v < 0 || v != math.Trunc(v) || v >= twoTo64 {
			return 0, fmt.Errorf("seed must be a non-negative integer, got %v", v)
		}
		return uint64(v), nil
	case uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(v).Uint(), nil
	case int, int8, int16, int32, int64:
		n := reflect.ValueOf(v).Int()
		if n < 0 {
			return 0, fmt.Errorf("seed must be a non-negative integer, got %d", n)
		}
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("expected seed, got %T", value)
	}
}

// ParseFlag converts a raw boolean or checkbox value to a bool.
func ParseFlag(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "yes", "1":
			return true, nil
		case "false", "off", "no", "0", "":
			return false, nil
		}
		return false, fmt.Errorf("expected boolean, got %q", v)
	default:
		return false, fmt.Errorf("expected bool, got %T", value)
	}
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return reflect.ValueOf(v).Int(), nil
	case uint, uint8, uint16, uint32, uint64:
		u := reflect.ValueOf(v).Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of range", u)
		}
		return int64(u), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected int, got float (not a whole number)")
		}
		if v < -twoTo63 || v >= twoTo63 {
			return 0, fmt.Errorf("value %v out of range", v)
		}
		return int64(v), nil
	case json.Number:
		return toInt64(v.String())
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("expected int, got %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected int, got %T", value)
	}
}
