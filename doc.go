// Package skema validates runtime values against immutable, composable schemas.
//
// - Schemas are built from constructors (String, Number, Object, Array, Union,
//   DiscriminatedUnion, ...) and narrowed with constraints and refinements.
//   Every call returns a new *Schema; nothing is mutated.
// - Compile turns a schema into a *Validator once. Validators are closures
//   specialised at compile time and are cached per schema pointer.
// - Schema.Check walks the tree directly. Compiled and walked results are
//   identical, including error codes, paths and messages.
// - A validation reports the first failure only, as an *Issue with a code, a
//   path of field names and indexes, and a message.
//
// Typical usage:
//
//	user := skema.Object(
//		skema.Field("name", skema.String().MinLength(1)),
//		skema.Field("age", skema.Optional(skema.Number().Int().Min(0))),
//	)
//	v := skema.MustCompile(user)
//	if r := v.Validate(input); !r.OK() {
//		fmt.Println(r.Issue) // name: String must be at least 1 characters long
//	}
//
// Construction mistakes (duplicate fields, constraints on the wrong kind,
// duplicate discriminator literals) are reported when the schema is built, as
// *ConstructionError, never at validation time.
package skema
