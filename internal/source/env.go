// internal/source/env.go
//
// Host environment property source.
//
// Context
// -------
// Exposes prefixed environment variables as configuration keys, the
// host property-resolution capability of the composite store.  The
// mapping mirrors the bootstrap loader: DYNCONF_TENANT__ACME__LIMIT
// becomes "tenant.acme.limit" (double underscore → dot, lowercased).
//
// The process environment rarely changes, so the source re-reads it on
// the same long default period as the file source; a restart is still
// the normal way to change environment-backed values.
package source

import (
	"context"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	koanf "github.com/knadh/koanf/v2"
)

// Env reads prefixed environment variables as a source.
type Env struct {
	name     string
	prefix   string
	interval time.Duration
}

// NewEnv builds an environment source for variables carrying prefix,
// e.g. "DYNCONF_".
func NewEnv(name, prefix string, interval time.Duration) *Env {
	if interval <= 0 {
		interval = DefaultFileInterval
	}
	return &Env{name: name, prefix: prefix, interval: interval}
}

func (e *Env) Name() string                { return e.name }
func (e *Env) Interval() time.Duration     { return e.interval }
func (e *Env) InitialDelay() time.Duration { return e.interval }

func (e *Env) Poll(_ context.Context, _ bool) (map[string]any, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(e.prefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, e.prefix), "__", "."))
	}), nil); err != nil {
		return nil, err
	}
	return k.All(), nil
}
