// internal/config/config_test.go
//
// Unit-tests for the resolution facade and the interception layer.
//
// Context
// -------
// Every test builds a composite store seeded with a static source, so
// the facade resolves against a deterministic snapshot without any
// background polling.
//
// Run: go test ./internal/config -v

package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/yanizio/dynconf/internal/field"
	"github.com/yanizio/dynconf/internal/source"
)

func newConf(t *testing.T, vals map[string]any) *Config {
	t.Helper()
	s := source.NewStore()
	t.Cleanup(s.Close)
	if err := s.Add(source.NewStatic("static", vals)); err != nil {
		t.Fatalf("add static source: %v", err)
	}
	return New(s)
}

func TestGet_KeyBased(t *testing.T) {
	c := newConf(t, map[string]any{"batch.size": "45", "feature.gate": "true"})

	n, err := c.Int64("batch.size")
	if err != nil || n != 45 {
		t.Fatalf("Int64 = %v, %v", n, err)
	}
	b, err := c.Bool("feature.gate")
	if err != nil || !b {
		t.Fatalf("Bool = %v, %v", b, err)
	}

	if _, err := c.Get("missing", field.TypeString); !errors.Is(err, ErrNotFound) {
		t.Fatalf("miss err = %v, want ErrNotFound", err)
	}
	if _, err := c.Get("feature.gate", field.TypeLong); !errors.Is(err, field.ErrCoercion) {
		t.Fatalf("bad type err = %v, want ErrCoercion", err)
	}

	v, err := c.GetDefault("missing", "fallback", field.TypeString)
	if err != nil || v != "fallback" {
		t.Fatalf("GetDefault = %v, %v", v, err)
	}
}

func TestWithDefault(t *testing.T) {
	c := newConf(t, map[string]any{"present": "1"})
	c.WithDefault("local.only", "7")

	n, err := c.Int64("local.only")
	if err != nil || n != 7 {
		t.Fatalf("Int64 = %v, %v", n, err)
	}

	// A backing source still wins over a process-local default.
	c.WithDefault("present", "999")
	n, err = c.Int64("present")
	if err != nil || n != 1 {
		t.Fatalf("Int64 = %v, %v; source must override local default", n, err)
	}
}

func TestGetField_PositiveLongScenario(t *testing.T) {
	c := newConf(t, map[string]any{"retry.backoff.ms": "-5"})
	f := field.MustNew("retry.backoff.ms", field.TypeLong,
		field.Validate(field.PositiveLong()))

	_, err := c.GetField(f)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	c2 := newConf(t, map[string]any{"retry.backoff.ms": "45"})
	v, err := c2.GetField(f)
	if err != nil {
		t.Fatalf("GetField: %v", err)
	}
	if v.(int64) != 45 {
		t.Fatalf("value = %v, want 45", v)
	}
}

func TestGetField_AllowedValuesScenario(t *testing.T) {
	f := field.MustNew("shard.count", field.TypeLong,
		field.Allowed(45, 2, 74, 14))

	c := newConf(t, map[string]any{"shard.count": "2"})
	v, err := c.GetField(f)
	if err != nil || v.(int64) != 2 {
		t.Fatalf("GetField = %v, %v", v, err)
	}

	c2 := newConf(t, map[string]any{"shard.count": "99"})
	_, err = c2.GetField(f)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	// Diagnostics enumerate the allowed set.
	for _, want := range []string{"45", "2", "74", "14"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not enumerate allowed value %s", err, want)
		}
	}
}

func TestGetField_TemplateKey(t *testing.T) {
	c := newConf(t, map[string]any{"tenant.acme.limit": "45"})
	f := field.MustNew("tenant.%s.limit", field.TypeLong)

	v, err := c.GetField(f, "acme")
	if err != nil || v.(int64) != 45 {
		t.Fatalf("GetField = %v, %v", v, err)
	}

	// The unexpanded template itself must not be looked up.
	if _, err := c.GetField(f, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for unknown tenant", err)
	}
}

func TestGetField_SensitiveMasking(t *testing.T) {
	c := newConf(t, map[string]any{"db.password": "hunter2"})
	f := field.MustNew("db.password", field.TypePassword,
		field.Allowed("rotated-only"))

	_, err := c.GetField(f)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Fatalf("raw sensitive value leaked: %q", err)
	}
	if !strings.Contains(err.Error(), field.Mask) {
		t.Fatalf("mask token missing from %q", err)
	}
	if strings.Contains(err.Error(), "rotated-only") {
		t.Fatalf("allowed set leaked for sensitive field: %q", err)
	}
}

func TestGetField_RequiredWithoutValueOrDefault(t *testing.T) {
	c := newConf(t, map[string]any{})
	f := field.MustNew("cluster.id", field.TypeString, field.Required())

	v, err := c.GetField(f)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation (never a silent nil)", err)
	}
	if v != nil {
		t.Fatalf("value = %v, want nil alongside the error", v)
	}
}

func TestGetField_DefaultGeneratorWins(t *testing.T) {
	c := newConf(t, map[string]any{})
	f := field.MustNew("replica.count", field.TypeLong,
		field.Default("3"),
		field.DefaultGenerator(func() any { return "9" }),
	)

	v, err := c.GetField(f)
	if err != nil || v.(int64) != 9 {
		t.Fatalf("GetField = %v, %v; generator must win", v, err)
	}
}

func TestGetMapListObject(t *testing.T) {
	c := newConf(t, map[string]any{
		"codec.options": map[string]any{"level": "9", "dict": true},
		"broker.hosts":  "b1:9092, b2:9092",
		"codec.shape":   map[string]any{"name": "zstd", "level": 3},
	})

	mf := field.MustNew("codec.options", field.TypeMap)
	m, err := c.GetMap(mf)
	if err != nil || m["level"] != "9" {
		t.Fatalf("GetMap = %v, %v", m, err)
	}

	lf := field.MustNew("broker.hosts", field.TypeList)
	l, err := c.GetList(lf, field.TypeString)
	if err != nil || len(l) != 2 || l[1] != "b2:9092" {
		t.Fatalf("GetList = %v, %v", l, err)
	}

	of := field.MustNew("codec.shape", field.TypeObject, field.ClassName("CodecShape"))
	var shape struct {
		Name  string `mapstructure:"name"`
		Level int    `mapstructure:"level"`
	}
	if err := c.GetObject(of, &shape); err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if shape.Name != "zstd" || shape.Level != 3 {
		t.Fatalf("GetObject = %+v", shape)
	}
}

func TestValidateAndRecord(t *testing.T) {
	c := newConf(t, map[string]any{"present.key": "x"})

	ok := field.MustNew("present.key", field.TypeString, field.Required())
	missing := field.MustNew("absent.key", field.TypeString, field.Required())
	custom := field.MustNew("present.key2", field.TypeString,
		field.Validate(field.PresentInSnapshot()))

	set, err := field.NewSet(ok, missing, custom)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	var msgs []string
	clean := c.ValidateAndRecord(set, func(m string) { msgs = append(msgs, m) })
	if clean {
		t.Fatal("expected violations")
	}
	// One violation per failing field, reported exhaustively in a
	// single pass, not fail-fast.
	if len(msgs) != 2 {
		t.Fatalf("sink calls = %d (%v), want 2", len(msgs), msgs)
	}

	var agg *StartupError
	err = c.Validate(set)
	if !errors.As(err, &agg) || len(agg.Violations) != 2 {
		t.Fatalf("Validate = %v, want StartupError with 2 violations", err)
	}

	// A clean set passes.
	cleanSet, _ := field.NewSet(ok)
	if err := c.Validate(cleanSet); err != nil {
		t.Fatalf("clean set: %v", err)
	}
}
