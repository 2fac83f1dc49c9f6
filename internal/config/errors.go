// internal/config/errors.go
//
// Error taxonomy for the resolution facade.
//
// Context
// -------
// Per-value failures (coercion, single-field validation) surface
// synchronously to the caller of that accessor.  Aggregate startup
// failures are raised once after the whole field set is evaluated, so
// one invocation reports every violation, not just the first.  Poll
// failures never reach this package; the composite store contains them.
//
// Notes
// -----
//   - ValidationError masks the offending value and the allowed set
//     whenever the field is sensitivity-flagged.
//   - Oxford commas, two spaces after periods.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yanizio/dynconf/internal/field"
)

// ErrNotFound is returned when a key resolves in no source and the
// field (if any) declares no default.
var ErrNotFound = errors.New("config: key not found")

// ErrValidation tags every single-value validation failure; match it
// with errors.Is.
var ErrValidation = errors.New("config: validation failed")

// ValidationError reports one resolved value that failed its validator
// or fell outside its allowed set.  The message carries the fully
// substituted key and a remediation hint; the raw value appears only
// when the field is not sensitive.
type ValidationError struct {
	Key       string
	Hint      string
	Value     any
	Allowed   []any
	Sensitive bool
}

func (e *ValidationError) Error() string {
	val := fmt.Sprintf("%v", e.Value)
	if e.Sensitive {
		val = field.Mask
	}
	msg := fmt.Sprintf("config: %s: value %s rejected: %s", e.Key, val, e.Hint)
	if len(e.Allowed) > 0 {
		if e.Sensitive {
			msg += " (allowed set withheld: sensitive field)"
		} else {
			parts := make([]string, len(e.Allowed))
			for i, a := range e.Allowed {
				parts[i] = fmt.Sprintf("%v", a)
			}
			msg += " (allowed: " + strings.Join(parts, ", ") + ")"
		}
	}
	return msg
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StartupError aggregates every violation found while validating a
// field set.  Raised once, after the full set is evaluated.
type StartupError struct {
	Violations []string
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("config: startup validation failed with %d violation(s): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}
