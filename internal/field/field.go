// internal/field/field.go
//
// Immutable configuration field descriptors.
//
// Context
// -------
// Application code declares every configuration entry as a Field built
// once at wiring time and treated as an immutable singleton thereafter.
// The descriptor carries the key (possibly a format template such as
// "tenant.%s.limit"), declared Type, default strategy, allowed-value
// set, and attached validators.  The resolution facade in
// internal/config reads values through these descriptors; nothing else
// in the system interprets them.
//
// Construction is validated up front: an Object field without a target
// shape, or an allowed value that does not coerce to the declared type,
// fails New with ErrMalformed instead of surfacing at first read.
//
// Notes
// -----
//   - When both a static default and a generator are supplied the
//     generator wins; it is evaluated on every miss and never memoized,
//     so time-varying generators are expected, not a bug.
//   - Oxford commas, two spaces after periods.
package field

import (
	"fmt"
	"reflect"
)

// ErrMalformed marks a descriptor built with an internally inconsistent
// definition.  Fatal to that descriptor; nothing caches a failed build.
var ErrMalformed = fmt.Errorf("malformed field")

// Field describes one configuration entry.  All exported state is
// reachable through accessors only; the struct is immutable after New.
type Field struct {
	name        string
	displayName string
	description string
	typ         Type
	required    bool
	importance  Importance
	def         any
	defGen      func() any
	allowed     []any // coerced to typ at build time
	validators  []Validator
	className   string
}

// Option mutates a Field under construction.
type Option func(*Field)

func DisplayName(n string) Option      { return func(f *Field) { f.displayName = n } }
func Description(d string) Option      { return func(f *Field) { f.description = d } }
func Required() Option                 { return func(f *Field) { f.required = true } }
func WithImportance(i Importance) Option { return func(f *Field) { f.importance = i } }
func Default(v any) Option             { return func(f *Field) { f.def = v } }
func ClassName(c string) Option        { return func(f *Field) { f.className = c } }

// DefaultGenerator installs a lazy default producer.  It is evaluated
// on every miss, never cached, and takes precedence over Default.
func DefaultGenerator(g func() any) Option {
	return func(f *Field) { f.defGen = g }
}

// Allowed restricts resolved values to the given set, compared by value
// equality after coercion.  An empty set means unrestricted.
func Allowed(vals ...any) Option {
	return func(f *Field) { f.allowed = vals }
}

// Validate attaches one or more validators; they run in order with AND
// semantics on every typed read.
func Validate(vs ...Validator) Option {
	return func(f *Field) { f.validators = append(f.validators, vs...) }
}

// New builds an immutable Field.  It fails with ErrMalformed when the
// definition is inconsistent: Object without a ClassName, or allowed
// values that do not coerce to the declared type.
func New(name string, typ Type, opts ...Option) (*Field, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrMalformed)
	}
	f := &Field{name: name, typ: typ}
	for _, o := range opts {
		o(f)
	}
	if typ == TypeObject && f.className == "" {
		return nil, fmt.Errorf("%w: %s is an object field without a class name", ErrMalformed, name)
	}
	for i, av := range f.allowed {
		cv, err := Coerce(av, typ)
		if err != nil {
			return nil, fmt.Errorf("%w: %s allowed value %v is not a %s", ErrMalformed, name, av, typ)
		}
		f.allowed[i] = cv
	}
	return f, nil
}

// MustNew is New for wiring-time singletons; it panics on a malformed
// definition so a bad descriptor can never reach steady state.
func MustNew(name string, typ Type, opts ...Option) *Field {
	f, err := New(name, typ, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Field) Name() string           { return f.name }
func (f *Field) DisplayName() string    { return f.displayName }
func (f *Field) Description() string    { return f.description }
func (f *Field) Type() Type             { return f.typ }
func (f *Field) Required() bool         { return f.required }
func (f *Field) Importance() Importance { return f.importance }
func (f *Field) ClassName() string      { return f.className }
func (f *Field) Sensitive() bool        { return f.typ.Sensitive() }

// Key expands the field name template with positional arguments, so a
// field named "tenant.%s.limit" resolved with "acme" reads the backing
// key "tenant.acme.limit".  Without arguments the name is the key.
func (f *Field) Key(args ...any) string {
	if len(args) == 0 {
		return f.name
	}
	return fmt.Sprintf(f.name, args...)
}

// DefaultValue resolves the default strategy: the generator wins when
// both are set, the static default otherwise.  ok is false when the
// field declares no default at all.
func (f *Field) DefaultValue() (v any, ok bool) {
	if f.defGen != nil {
		return f.defGen(), true
	}
	if f.def != nil {
		return f.def, true
	}
	return nil, false
}

// HasDefault reports whether either default strategy is declared,
// without evaluating a generator.
func (f *Field) HasDefault() bool { return f.defGen != nil || f.def != nil }

// RuntimeValid applies every attached runtime validator in order,
// short-circuiting on the first failure.
func (f *Field) RuntimeValid(value any) bool {
	for _, v := range f.validators {
		if v.runtime != nil && !v.runtime(value) {
			return false
		}
	}
	return true
}

// StartupViolations runs every attached startup unit against the full
// snapshot.  Unlike runtime validation this is exhaustive: later units
// run even after an earlier failure, so the returned count reflects
// every violation found.
func (f *Field) StartupViolations(snapshot map[string]any, sink func(msg string)) int {
	total := 0
	for _, v := range f.validators {
		if v.startup != nil {
			total += v.startup(snapshot, f, sink)
		}
	}
	return total
}

// IsAllowed reports membership in the allowed-value set after coercing
// the candidate to the field's type.  Vacuously true when the set is
// empty.
func (f *Field) IsAllowed(value any) bool {
	if len(f.allowed) == 0 {
		return true
	}
	cv, err := Coerce(value, f.typ)
	if err != nil {
		return false
	}
	for _, av := range f.allowed {
		if reflect.DeepEqual(av, cv) {
			return true
		}
	}
	return false
}

// AllowedValues returns the coerced allowed set for diagnostics.  The
// caller must not mutate the returned slice.
func (f *Field) AllowedValues() []any { return f.allowed }

// Set is a named collection of descriptors validated together at
// startup.  Keys are the raw (unexpanded) field names.
type Set map[string]*Field

// NewSet folds fields into a Set, rejecting duplicate names.
func NewSet(fields ...*Field) (Set, error) {
	s := make(Set, len(fields))
	for _, f := range fields {
		if _, dup := s[f.name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %s", ErrMalformed, f.name)
		}
		s[f.name] = f
	}
	return s, nil
}
