package builtin

import "github.com/aretw0/shipyard/pkg/generator"

// Definitions returns the built-in generator definitions.
func Definitions() []generator.Definition {
	return []generator.Definition{
		Template(),
		FullMap(),
		Chaos(),
		SystemShuffler(),
	}
}

// Register adds every built-in generator to c.
func Register(c *generator.Catalog) error {
	for _, def := range Definitions() {
		if err := c.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// NewCatalog returns a catalog holding only the built-in generators.
func NewCatalog() *generator.Catalog {
	c, err := generator.NewCatalog(Definitions()...)
	if err != nil {
		// Built-in definitions are complete.
		panic(err)
	}
	return c
}
