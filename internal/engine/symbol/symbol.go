package symbol

import (
	"strings"
)

// Separator is the namespace separator used in fully qualified names.
const Separator = "\\"

type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindTrait
	KindFunction
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Symbol is a documented unit discovered by a source provider.
// It is immutable once created.
type Symbol struct {
	name      string
	kind      Kind
	namespace string
	abstract  bool
	file      string
	line      int
}

type Option func(*Symbol)

func WithAbstract(abstract bool) Option {
	return func(s *Symbol) { s.abstract = abstract }
}

func WithLocation(file string, line int) Option {
	return func(s *Symbol) {
		s.file = file
		s.line = line
	}
}

func New(name string, kind Kind, opts ...Option) *Symbol {
	fqn := Normalize(name)
	s := &Symbol{
		name:      fqn,
		kind:      kind,
		namespace: Namespace(fqn),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the fully qualified name with a leading separator.
func (s *Symbol) Name() string      { return s.name }
func (s *Symbol) Kind() Kind        { return s.kind }
func (s *Symbol) Namespace() string { return s.namespace }
func (s *Symbol) Abstract() bool    { return s.abstract }
func (s *Symbol) File() string      { return s.file }
func (s *Symbol) Line() int         { return s.line }

func (s *Symbol) Basename() string {
	return Basename(s.name)
}

// Normalize trims whitespace and guarantees a single leading separator.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimLeft(name, Separator)
	if name == "" {
		return ""
	}
	return Separator + name
}

// Segments splits a fully qualified name into its namespace segments and basename.
// The leading separator is ignored.
func Segments(name string) []string {
	trimmed := strings.Trim(strings.TrimSpace(name), Separator)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, Separator)
}

// Namespace returns every segment but the last, with a leading separator.
// Names in the global namespace return "".
func Namespace(name string) string {
	segments := Segments(name)
	if len(segments) < 2 {
		return ""
	}
	return Separator + strings.Join(segments[:len(segments)-1], Separator)
}

func Basename(name string) string {
	segments := Segments(name)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}
