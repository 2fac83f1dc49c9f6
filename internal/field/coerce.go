// internal/field/coerce.go
//
// Typed coercion: raw source value → declared field type.
//
// Context
// -------
// Backing sources store values in heterogeneous shapes: the repository
// source always delivers text, the file source delivers whatever YAML
// parsed (strings, numbers, nested maps), and process-local defaults
// are already-typed Go values.  Coerce restores type fidelity using the
// Field's declared Type, failing with ErrCoercion when the raw shape
// cannot become the target.  Numeric coercion fails on overflow or
// non-numeric text, it never silently truncates.
//
// Notes
// -----
//   - List coercion splits a comma-delimited string, or passes an
//     already-sequenced value through unchanged.
//   - Map and Object accept a structural document directly, or JSON
//     text (the repository stores everything as text).
//   - Object decoding into a caller struct lives in ToObject; it uses
//     mapstructure with ErrorUnset so absent sub-fields fail loudly.
//   - Oxford commas, two spaces after periods.
package field

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ErrCoercion wraps every failed conversion so callers can errors.Is
// without inspecting message text.
var ErrCoercion = fmt.Errorf("coercion failed")

// Coerce converts raw into a value of the target type t.  The returned
// concrete types are: bool, string, int32, int16, int64, float32,
// float64, []string, map[string]any.  TypeObject returns the structural
// document untouched; use ToObject to decode it into a target struct.
func Coerce(raw any, t Type) (any, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil value for type %s", ErrCoercion, t)
	}
	switch t {
	case TypeBoolean:
		return toBool(raw)
	case TypeString, TypePassword, TypeClass:
		return toString(raw)
	case TypeInt:
		n, err := toInt(raw, 32)
		if err != nil {
			return nil, err
		}
		return int32(n), nil
	case TypeShort:
		n, err := toInt(raw, 16)
		if err != nil {
			return nil, err
		}
		return int16(n), nil
	case TypeLong:
		return toInt(raw, 64)
	case TypeFloat:
		f, err := toFloat(raw, 32)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case TypeDouble:
		return toFloat(raw, 64)
	case TypeList:
		return toList(raw)
	case TypeMap, TypeObject:
		return toDocument(raw)
	default:
		return nil, fmt.Errorf("%w: unsupported target type %s", ErrCoercion, t)
	}
}

// ToObject structurally maps a raw document onto target, which must be
// a non-nil struct pointer.  Every exported target field must receive a
// value; an absent sub-field is an error, not a zero value.
func ToObject(raw any, target any) error {
	doc, err := toDocument(raw)
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		ErrorUnset:       true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCoercion, err)
	}
	if err := dec.Decode(doc); err != nil {
		return fmt.Errorf("%w: object mapping: %v", ErrCoercion, err)
	}
	return nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", ErrCoercion, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: cannot read %T as boolean", ErrCoercion, raw)
	}
}

func toString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: cannot read %T as string", ErrCoercion, raw)
	}
}

// toInt parses into int64 and range-checks against bitSize so Int and
// Short overflow loudly instead of wrapping.
func toInt(raw any, bitSize int) (int64, error) {
	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		// YAML integers may arrive as float64.  Reject fractions and
		// magnitudes outside int64; a bare int64(v) would wrap.
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrCoercion, v)
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v overflows long", ErrCoercion, v)
		}
		n = int64(v)
	case string:
		p, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrCoercion, v)
		}
		n = p
	default:
		return 0, fmt.Errorf("%w: cannot read %T as integer", ErrCoercion, raw)
	}

	switch bitSize {
	case 16:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return 0, fmt.Errorf("%w: %d overflows short", ErrCoercion, n)
		}
	case 32:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %d overflows int", ErrCoercion, n)
		}
	}
	return n, nil
}

// toFloat normalises to float64 and range-checks against bitSize, so a
// FLOAT target rejects magnitudes beyond float32 instead of collapsing
// them to Inf.  Non-finite values are rejected outright; a snapshot
// never carries NaN or Inf.
func toFloat(raw any, bitSize int) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case float32:
		f = float64(v)
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(v), bitSize)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrCoercion, v)
		}
		f = p
	default:
		return 0, fmt.Errorf("%w: cannot read %T as float", ErrCoercion, raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not a finite number", ErrCoercion, f)
	}
	if bitSize == 32 && math.Abs(f) > math.MaxFloat32 {
		return 0, fmt.Errorf("%w: %v overflows float", ErrCoercion, f)
	}
	return f, nil
}

// toList passes sequences through unchanged and splits comma-delimited
// text, trimming whitespace around each element.
func toList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, err := toString(e)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot read %T as list", ErrCoercion, raw)
	}
}

// toDocument accepts a structural document or JSON text and returns a
// flat-or-nested map without loss.
func toDocument(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		return v, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, nil
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("%w: text is not a JSON document: %v", ErrCoercion, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot read %T as document", ErrCoercion, raw)
	}
}
