// internal/config/startup.go
//
// Whole-snapshot startup validation.
//
// Context
// -------
// ValidateAndRecord runs once during component initialization, before
// any request traffic.  It is intentionally synchronous and exhaustive:
// every field in the set is checked against the current effective
// snapshot, the sink fires once per violation, and the aggregate result
// is raised only after the full set is evaluated.  A misconfigured
// required field therefore fails fast at wiring time instead of
// silently at first use.
package config

import (
	"fmt"
	"strings"

	"github.com/yanizio/dynconf/internal/field"
)

// ValidateAndRecord evaluates every field's startup validators plus the
// built-in required-presence check against the current snapshot,
// invoking sink once per violation.  Returns true only when zero
// violations occurred across the whole set.
//
// Fields with template names (containing a format verb) skip the
// presence check; their concrete keys exist only at access time.
func (c *Config) ValidateAndRecord(set field.Set, sink func(msg string)) bool {
	snapshot := c.Snapshot()
	violations := 0
	record := func(msg string) {
		violations++
		sink(msg)
	}

	for _, f := range set {
		if f.Required() && !f.HasDefault() && !strings.Contains(f.Name(), "%") {
			if _, ok := snapshot[f.Name()]; !ok {
				record(fmt.Sprintf("field %s is required but has no value in any source and no default", f.Name()))
			}
		}
		violations += f.StartupViolations(snapshot, sink)
	}
	return violations == 0
}

// Validate is ValidateAndRecord folded into an aggregate error for
// wiring-time fail-fast: nil when clean, otherwise a StartupError
// carrying every violation message.
func (c *Config) Validate(set field.Set) error {
	var msgs []string
	if c.ValidateAndRecord(set, func(m string) { msgs = append(msgs, m) }) {
		return nil
	}
	return &StartupError{Violations: msgs}
}
