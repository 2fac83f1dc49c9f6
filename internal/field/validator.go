// internal/field/validator.go
//
// Validator units and composition.
//
// Context
// -------
// A Validator pairs two independent checks.  The startup unit sees the
// whole configuration snapshot and reports a violation count through a
// sink; the facade runs it once per field during ValidateAndRecord.
// The runtime unit sees one already-coerced value and returns a bool;
// the interception layer runs it on every typed read.
//
// Compose folds many validators into one.  Startup units stay
// exhaustive (every unit runs so the violation count is accurate)
// while the composed runtime unit short-circuits on the first failure.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package field

import (
	"fmt"
	"strings"
)

// StartupFunc inspects the full snapshot for one field and reports each
// violation through sink, returning the number found.
type StartupFunc func(snapshot map[string]any, f *Field, sink func(msg string)) int

// RuntimeFunc checks a single already-coerced value.
type RuntimeFunc func(value any) bool

// Validator is one startup/runtime pair.  Either half may be nil.
type Validator struct {
	startup StartupFunc
	runtime RuntimeFunc
}

// NewValidator builds a validator from its two halves.
func NewValidator(startup StartupFunc, runtime RuntimeFunc) Validator {
	return Validator{startup: startup, runtime: runtime}
}

// Runtime builds a runtime-only validator.
func Runtime(fn RuntimeFunc) Validator { return Validator{runtime: fn} }

// Compose folds validators into a single unit preserving order.  The
// composed startup half sums every unit's count; the composed runtime
// half fails fast.
func Compose(vs ...Validator) Validator {
	return Validator{
		startup: func(snapshot map[string]any, f *Field, sink func(string)) int {
			total := 0
			for _, v := range vs {
				if v.startup != nil {
					total += v.startup(snapshot, f, sink)
				}
			}
			return total
		},
		runtime: func(value any) bool {
			for _, v := range vs {
				if v.runtime != nil && !v.runtime(value) {
					return false
				}
			}
			return true
		},
	}
}

//
// Stock validators
//

// NonEmptyString fails on empty or all-whitespace text.
func NonEmptyString() Validator {
	return Runtime(func(value any) bool {
		s, err := Coerce(value, TypeString)
		if err != nil {
			return false
		}
		return strings.TrimSpace(s.(string)) != ""
	})
}

// PositiveLong accepts long values strictly greater than zero.
func PositiveLong() Validator {
	return Runtime(func(value any) bool {
		n, err := Coerce(value, TypeLong)
		if err != nil {
			return false
		}
		return n.(int64) > 0
	})
}

// LongRange accepts long values in [min, max] inclusive.
func LongRange(min, max int64) Validator {
	return Runtime(func(value any) bool {
		n, err := Coerce(value, TypeLong)
		if err != nil {
			return false
		}
		v := n.(int64)
		return v >= min && v <= max
	})
}

// PresentInSnapshot is a startup unit asserting the field's key resolves
// in the snapshot or through a declared default.  Meant for fields not
// marked required whose absence should still surface at startup; on a
// required field it would double-report with the facade's built-in
// presence check.
func PresentInSnapshot() Validator {
	return Validator{
		startup: func(snapshot map[string]any, f *Field, sink func(string)) int {
			if _, ok := snapshot[f.Name()]; ok {
				return 0
			}
			if f.HasDefault() {
				return 0
			}
			sink(fmt.Sprintf("field %s: no value in any source and no default declared", f.Name()))
			return 1
		},
	}
}
