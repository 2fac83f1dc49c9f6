// internal/field/type.go
//
// Field type and importance enums.
//
// Context
// -------
// Every configuration field declares exactly one Type.  The type drives
// coercion (see coerce.go), allowed-value comparison, and masking.
// Password is not a distinct wire type; it coerces exactly like String
// and only flags the value as sensitive so higher layers substitute
// Mask in any rendered output.
//
// Notes
// -----
//   - Short and Int map to int16 and int32; Long is int64.  Overflowing
//     either fails coercion, it never truncates.
//   - Oxford commas, two spaces after periods.
package field

// Type enumerates the declarable field types.
type Type int

const (
	TypeBoolean Type = iota
	TypeString
	TypeInt
	TypeShort
	TypeLong
	TypeFloat
	TypeDouble
	TypeList
	TypeClass
	TypePassword
	TypeMap
	TypeObject
)

// Mask replaces sensitive values in logs and error text.
const Mask = "******"

var typeNames = map[Type]string{
	TypeBoolean:  "boolean",
	TypeString:   "string",
	TypeInt:      "int",
	TypeShort:    "short",
	TypeLong:     "long",
	TypeFloat:    "float",
	TypeDouble:   "double",
	TypeList:     "list",
	TypeClass:    "class",
	TypePassword: "password",
	TypeMap:      "map",
	TypeObject:   "object",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown"
}

// Sensitive reports whether values of this type must be masked in any
// log or error output.
func (t Type) Sensitive() bool { return t == TypePassword }

// Importance is a documentation-only severity hint.  It has no runtime
// effect; doc generators use it to order rendered tables.
type Importance int

const (
	Low Importance = iota
	Medium
	High
)

func (i Importance) String() string {
	switch i {
	case High:
		return "high"
	case Medium:
		return "medium"
	default:
		return "low"
	}
}
