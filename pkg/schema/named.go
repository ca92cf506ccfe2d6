package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

var builtinTypeNames = map[string]bool{
	"string": true, "nonempty": true, "int": true, "percent": true,
	"seed": true, "float": true, "bool": true, "flag": true,
}

var (
	namedMu sync.RWMutex
	named   = map[string]Type{}
)

func init() {
	for _, t := range []Type{
		Custom("glob", validateGlob),
		Custom("duration", validateDuration),
		Custom("token", validateToken),
	} {
		if err := RegisterType(t); err != nil {
			panic(err)
		}
	}
}

// RegisterType makes t available to ParseType, and so to generator files,
// under t.Name(). Built-in names and names already registered are refused.
func RegisterType(t Type) error {
	name := t.Name()
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "[], ") {
		return fmt.Errorf("invalid type name %q", name)
	}
	if builtinTypeNames[name] {
		return fmt.Errorf("type %s is built in", name)
	}

	namedMu.Lock()
	defer namedMu.Unlock()
	if _, ok := named[name]; ok {
		return fmt.Errorf("type %s already registered", name)
	}
	named[name] = t
	return nil
}

func lookupNamed(name string) (Type, bool) {
	namedMu.RLock()
	defer namedMu.RUnlock()
	t, ok := named[name]
	return t, ok
}

// validateGlob accepts a doublestar pattern such as "data/**/*.txt".
func validateGlob(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected glob pattern, got %T", value)
	}
	if strings.TrimSpace(s) == "" || !doublestar.ValidatePattern(s) {
		return fmt.Errorf("invalid glob pattern %q", s)
	}
	return nil
}

// validateDuration accepts a non-negative Go duration such as "90s".
func validateDuration(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected duration, got %T", value)
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 {
		return errors.New("duration must not be negative")
	}
	return nil
}

// validateToken accepts a value that can be written as one token of a game
// data file: not blank, on one line, and not needing both quote styles.
func validateToken(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected token, got %T", value)
	}
	switch {
	case strings.TrimSpace(s) == "":
		return errors.New("token must not be blank")
	case strings.ContainsAny(s, "\r\n"):
		return errors.New("token must fit on one line")
	case strings.Contains(s, `"`) && strings.Contains(s, "`"):
		return errors.New("token cannot contain both \" and `")
	}
	return nil
}
