// Package schema validates loosely typed field maps, such as generator
// parameters submitted from a form or a JSON body.
//
// A Schema maps field names to Types. Validate checks every field and
// reports every violation at once in an AggregateError, so a user can fix all
// of their input in a single pass:
//
//	s := schema.Schema{
//	    "seed":           schema.Seed(),
//	    "max_presets":    schema.IntRange(1, 255),
//	    "shuffle_chance": schema.Percent(),
//	}
//
//	if err := schema.Validate(s, fields); err != nil {
//	    for _, fe := range schema.FieldErrors(err) {
//	        fmt.Println(fe.Key, fe.Reason)
//	    }
//	}
//
// Range, percent, seed and flag types accept the string forms HTML forms
// submit as well as JSON numbers and booleans. Schemas can also be parsed
// from type strings such as "int[0,10]" or "[string]".
package schema
