package symbol

var scalars = map[string]bool{
	"string":       true,
	"int":          true,
	"integer":      true,
	"float":        true,
	"bool":         true,
	"boolean":      true,
	"void":         true,
	"mixed":        true,
	"object":       true,
	"callable":     true,
	"iterable":     true,
	"class-string": true,
	"array":        true,
	"array-key":    true,
	"static":       true,
	"self":         true,
	"null":         true,
	"true":         true,
	"false":        true,
	"list":         true,
}

// IsScalar reports whether name is a built-in primitive or pseudo-type.
// Scalars are never alias-resolved and never linked.
func IsScalar(name string) bool {
	return scalars[name]
}
