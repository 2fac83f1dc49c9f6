// internal/config/config.go
//
// Resolution/validation facade: the single typed access point.
//
// Context
// -------
// Application code reads configuration through this facade only.  Key
// lookups resolve against the composite store first, then the
// process-local defaults registered with WithDefault, then, for field
// reads, the descriptor's own default strategy (generator wins over a
// static default, evaluated on every miss, never memoized).
//
// Every accessor that takes a Field descriptor routes through exactly
// one interception wrapper (intercepted, below): resolve, coerce, then
// validate, then allowed-value check, failing fast at the first
// violated check.  The validation policy lives in that wrapper alone;
// no accessor re-implements it.
//
// Side effects: each field read emits a debug line with the substituted
// key; the value is replaced by the mask token whenever the field's
// type is sensitivity-flagged.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package config

import (
	"fmt"
	"sync"

	"github.com/yanizio/dynconf/internal/field"
	"github.com/yanizio/dynconf/internal/source"
)

// Config is the facade over one composite store.  Safe for concurrent
// use; reads are lock-free against the store's published view.
type Config struct {
	store *source.Store

	mu       sync.RWMutex
	defaults map[string]any
}

// New wraps store.  The store's lifecycle stays with the caller; Close
// it when the process shuts down.
func New(store *source.Store) *Config {
	return &Config{store: store, defaults: make(map[string]any)}
}

// WithDefault registers a process-local default for key without
// requiring a full field descriptor.  It applies on lookup miss, before
// any descriptor default.
func (c *Config) WithDefault(key string, value any) {
	c.mu.Lock()
	c.defaults[key] = value
	c.mu.Unlock()
}

// lookup resolves key from the store, then the local defaults.
func (c *Config) lookup(key string) (any, bool) {
	if v, ok := c.store.Get(key); ok {
		return v, true
	}
	c.mu.RLock()
	v, ok := c.defaults[key]
	c.mu.RUnlock()
	return v, ok
}

// Snapshot returns the effective key space: the merged store view over
// the process-local defaults.  Used by startup validation and the admin
// surface.
func (c *Config) Snapshot() map[string]any {
	out := make(map[string]any)
	c.mu.RLock()
	for k, v := range c.defaults {
		out[k] = v
	}
	c.mu.RUnlock()
	for k, v := range c.store.GetAll() {
		out[k] = v
	}
	return out
}

//
// Key-based accessors (no descriptor, no validation)
//

// Get resolves key and coerces the raw value to t.  Misses fail with
// ErrNotFound; unconvertible representations fail with
// field.ErrCoercion.
func (c *Config) Get(key string, t field.Type) (any, error) {
	raw, ok := c.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return field.Coerce(raw, t)
}

// GetDefault is Get with a caller-supplied fallback returned on miss.
func (c *Config) GetDefault(key string, def any, t field.Type) (any, error) {
	raw, ok := c.lookup(key)
	if !ok {
		raw = def
	}
	return field.Coerce(raw, t)
}

// String, Bool, Int64, and Float64 are convenience wrappers for code
// that has no descriptor at hand.
func (c *Config) String(key string) (string, error) {
	v, err := c.Get(key, field.TypeString)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Config) Bool(key string) (bool, error) {
	v, err := c.Get(key, field.TypeBoolean)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c *Config) Int64(key string) (int64, error) {
	v, err := c.Get(key, field.TypeLong)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (c *Config) Float64(key string) (float64, error) {
	v, err := c.Get(key, field.TypeDouble)
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

//
// Field-based accessors (descriptor-driven, intercepted)
//

// GetField resolves a descriptor read: template-key substitution,
// lookup, default strategy, coercion to the field's type, then the
// interception checks.
func (c *Config) GetField(f *field.Field, args ...any) (any, error) {
	return c.intercepted(f, args, func(key string) (any, error) {
		return c.resolveField(f, key)
	})
}

// GetMap layers MAP coercion atop the same validation pipeline.
func (c *Config) GetMap(f *field.Field, args ...any) (map[string]any, error) {
	v, err := c.intercepted(f, args, func(key string) (any, error) {
		raw, err := c.rawForField(f, key)
		if err != nil {
			return nil, err
		}
		return field.Coerce(raw, field.TypeMap)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

// GetList resolves a LIST field and coerces each element to elem.
func (c *Config) GetList(f *field.Field, elem field.Type, args ...any) ([]any, error) {
	v, err := c.intercepted(f, args, func(key string) (any, error) {
		raw, err := c.rawForField(f, key)
		if err != nil {
			return nil, err
		}
		items, err := field.Coerce(raw, field.TypeList)
		if err != nil {
			return nil, err
		}
		list := items.([]string)
		out := make([]any, len(list))
		for i, s := range list {
			ev, err := field.Coerce(s, elem)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// GetObject resolves an OBJECT field and structurally maps the document
// onto target, which must be a struct pointer.  Absent required
// sub-fields fail the mapping.
func (c *Config) GetObject(f *field.Field, target any, args ...any) error {
	_, err := c.intercepted(f, args, func(key string) (any, error) {
		raw, err := c.rawForField(f, key)
		if err != nil {
			return nil, err
		}
		if err := field.ToObject(raw, target); err != nil {
			return nil, err
		}
		return raw, nil
	})
	return err
}

// rawForField resolves the raw backing value, falling back to the
// descriptor's default strategy on miss.
func (c *Config) rawForField(f *field.Field, key string) (any, error) {
	raw, ok := c.lookup(key)
	if !ok {
		raw, ok = f.DefaultValue()
	}
	if !ok {
		if f.Required() {
			return nil, &ValidationError{
				Key:       key,
				Hint:      "required field has no value in any source and no default; set it in a backing source",
				Sensitive: f.Sensitive(),
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return raw, nil
}

// resolveField is rawForField plus coercion to the declared type.
func (c *Config) resolveField(f *field.Field, key string) (any, error) {
	raw, err := c.rawForField(f, key)
	if err != nil {
		return nil, err
	}
	return field.Coerce(raw, f.Type())
}
