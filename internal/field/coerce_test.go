// internal/field/coerce_test.go
//
// Unit-tests for typed coercion: scalar parsing, overflow behaviour,
// list and document handling, and object mapping.
//
// Run: go test ./internal/field -v

package field

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestCoerce_Scalars(t *testing.T) {
	cases := []struct {
		raw  any
		typ  Type
		want any
	}{
		{"true", TypeBoolean, true},
		{false, TypeBoolean, false},
		{"45", TypeLong, int64(45)},
		{"-5", TypeLong, int64(-5)},
		{"45", TypeInt, int32(45)},
		{"45", TypeShort, int16(45)},
		{"2.5", TypeDouble, 2.5},
		{"2.5", TypeFloat, float32(2.5)},
		{float64(45), TypeLong, int64(45)}, // YAML integer shape
		{float64(2.5), TypeFloat, float32(2.5)},
		{42, TypeString, "42"},
		{"secret", TypePassword, "secret"},
		{"com.example.Codec", TypeClass, "com.example.Codec"},
	}
	for _, c := range cases {
		got, err := Coerce(c.raw, c.typ)
		if err != nil {
			t.Fatalf("Coerce(%v, %s): %v", c.raw, c.typ, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("Coerce(%v, %s) = %v (%T), want %v (%T)", c.raw, c.typ, got, got, c.want, c.want)
		}
	}
}

func TestCoerce_FailsNotTruncates(t *testing.T) {
	cases := []struct {
		raw any
		typ Type
	}{
		{"40000", TypeShort},    // overflows int16
		{"3000000000", TypeInt}, // overflows int32
		{"abc", TypeLong},
		{"1.5", TypeLong}, // fractional text is not an integer
		{"notbool", TypeBoolean},
		{[]int{1}, TypeString},
		{nil, TypeString},
		// YAML numbers arrive as float64; overflow must fail the same
		// way numeric text does, never wrap or collapse to Inf.
		{float64(1e19), TypeLong},   // beyond int64, int64(v) would flip sign
		{float64(-1e19), TypeLong},  // beyond int64 on the negative side
		{float64(1e300), TypeFloat}, // beyond float32, float32(v) would be +Inf
		{float64(40000), TypeShort},
		{float64(3000000000), TypeInt},
		{math.Inf(1), TypeDouble},
		{math.NaN(), TypeDouble},
		{"1e300", TypeFloat}, // text overflow fails the same way
	}
	for _, c := range cases {
		if _, err := Coerce(c.raw, c.typ); !errors.Is(err, ErrCoercion) {
			t.Fatalf("Coerce(%v, %s): err = %v, want ErrCoercion", c.raw, c.typ, err)
		}
	}
}

func TestCoerce_List(t *testing.T) {
	got, err := Coerce("a, b ,c", TypeList)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("split = %v", got)
	}

	// Already-sequenced values pass through unchanged.
	seq := []string{"x", "y"}
	got, err = Coerce(seq, TypeList)
	if err != nil {
		t.Fatalf("passthrough: %v", err)
	}
	if !reflect.DeepEqual(got, seq) {
		t.Fatalf("passthrough = %v", got)
	}
}

func TestCoerce_MapFromDocumentAndText(t *testing.T) {
	doc := map[string]any{"host": "db1", "port": 3306}
	got, err := Coerce(doc, TypeMap)
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("document = %v", got)
	}

	got, err = Coerce(`{"host":"db1","nested":{"a":1}}`, TypeMap)
	if err != nil {
		t.Fatalf("json text: %v", err)
	}
	m := got.(map[string]any)
	if m["host"] != "db1" {
		t.Fatalf("json text = %v", m)
	}
	if _, ok := m["nested"].(map[string]any); !ok {
		t.Fatalf("nested mapping lost: %v", m)
	}
}

type codecShape struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func TestToObject(t *testing.T) {
	var out codecShape
	err := ToObject(map[string]any{"host": "db1", "port": "3306"}, &out)
	if err != nil {
		t.Fatalf("ToObject: %v", err)
	}
	if out.Host != "db1" || out.Port != 3306 {
		t.Fatalf("ToObject = %+v", out)
	}

	// A missing required sub-field fails loudly.
	var partial codecShape
	err = ToObject(map[string]any{"host": "db1"}, &partial)
	if !errors.Is(err, ErrCoercion) {
		t.Fatalf("missing sub-field: err = %v, want ErrCoercion", err)
	}
}
