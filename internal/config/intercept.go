// internal/config/intercept.go
//
// Interception layer: cross-cutting enforcement on descriptor reads.
//
// Context
// -------
// Every typed accessor that accepts a Field descriptor funnels through
// intercepted.  After the underlying resolution completes it runs the
// field's composed runtime validators, then the allowed-value check, in
// that order, failing fast at the first violated check.  Accessors
// never duplicate this policy; they only differ in how they resolve and
// coerce the raw value.
//
// A nil descriptor passes the result through unchanged, which keeps the
// wrapper composable for internal callers that resolve bare keys.
package config

import (
	"go.uber.org/zap"

	"github.com/yanizio/dynconf/internal/field"
	"github.com/yanizio/dynconf/internal/metrics"
)

// resolver produces the resolved, coerced value for the substituted key.
type resolver func(key string) (any, error)

// intercepted applies template substitution, resolution, and the
// enforcement checks for one descriptor read.
func (c *Config) intercepted(f *field.Field, args []any, resolve resolver) (any, error) {
	if f == nil {
		return resolve("")
	}

	key := f.Key(args...)
	metrics.FieldReadTotal.Inc()

	v, err := resolve(key)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			metrics.ValidationFailuresTotal.Inc()
			zap.S().Errorw("config read rejected", "key", key, "err", err.Error())
		}
		return nil, err
	}

	if err := enforce(f, key, v); err != nil {
		metrics.ValidationFailuresTotal.Inc()
		zap.S().Errorw("config read rejected", "key", key, "err", err.Error())
		return nil, err
	}

	zap.S().Debugw("config read", "key", key, "value", display(f, v))
	return v, nil
}

// enforce runs validate, then isAllowed.  First violation wins.
func enforce(f *field.Field, key string, v any) error {
	if !f.RuntimeValid(v) {
		return &ValidationError{
			Key:       key,
			Hint:      "value failed the field's validator; check the declared constraints",
			Value:     v,
			Sensitive: f.Sensitive(),
		}
	}
	if !f.IsAllowed(v) {
		return &ValidationError{
			Key:       key,
			Hint:      "value is outside the field's allowed set",
			Value:     v,
			Allowed:   f.AllowedValues(),
			Sensitive: f.Sensitive(),
		}
	}
	return nil
}

// display renders a value for logs, masking sensitive fields.
func display(f *field.Field, v any) any {
	if f.Sensitive() {
		return field.Mask
	}
	return v
}
