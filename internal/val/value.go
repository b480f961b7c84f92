package val

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface over the constrained value types.
// Only Int, Str, Bool, and Rec implement it. There is no float variant
// and no null variant; both are rejected at every parse boundary.
type Value interface {
	heapValue() // Sealed - only these types implement it
}

// Int represents an integer value. Always int64, never float64.
type Int int64

func (Int) heapValue() {}

// Str represents a string value.
// Strings are NFC normalized when canonically serialized.
type Str string

func (Str) heapValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) heapValue() {}

// Rec represents a record of named fields.
// Use SortedKeys() for deterministic iteration.
type Rec map[string]Value

func (Rec) heapValue() {}

// NewInt creates an Int value.
func NewInt(n int64) Int {
	return Int(n)
}

// NewStr creates a Str value.
func NewStr(s string) Str {
	return Str(s)
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// Pair is a key-value pair for typed Rec construction.
// Going through Pair gives compile-time type safety - floats cannot be passed.
type Pair struct {
	Key   string
	Value Value
}

// F is a shorthand Pair constructor for ergonomic record building.
// Example: NewRec(F("age", NewInt(30)), F("name", NewStr("dana")))
func F(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewRec creates a Rec from typed key-value pairs.
func NewRec(pairs ...Pair) Rec {
	rec := make(Rec, len(pairs))
	for _, p := range pairs {
		rec[p.Key] = p.Value
	}
	return rec
}

// SortedKeys returns the record's keys in RFC 8785 canonical order
// (UTF-16 code units). Go's sort.Strings compares UTF-8 bytes, which
// produces a different order for some non-ASCII keys.
func (r Rec) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

// compareKeysUTF16 compares strings by UTF-16 code units as required by
// RFC 8785. Surrogate pairs make this differ from byte comparison.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := len(a16)
	if len(b16) < n {
		n = len(b16)
	}
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// ParseJSON deserializes JSON into a Value with strict validation.
// Floats, null, and arrays are rejected at every nesting level.
// This is the primary entry point for external JSON input.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	return FromGo(raw)
}

// FromGo converts a decoded Go value (JSON or YAML shaped) into a Value.
// Accepts bool, string, integral numbers, and string-keyed maps of the
// same. Floats, null, and sequences are rejected.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden: a value is int, string, bool, or record")
	case bool:
		return Bool(val), nil
	case string:
		return Str(val), nil
	case int:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("floats are forbidden: %s", s)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return Int(n), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden: %v", val)
	case map[string]any:
		rec := make(Rec, len(val))
		for k, elem := range val {
			fv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("record field %q: %w", k, err)
			}
			rec[k] = fv
		}
		return rec, nil
	case []any:
		return nil, fmt.Errorf("arrays are forbidden in element position")
	case Value:
		return val, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// TypeName returns the type label for a value: "int", "string", "bool",
// or "record". Used in error messages and audit output.
func TypeName(v Value) string {
	switch v.(type) {
	case Int:
		return "int"
	case Str:
		return "string"
	case Bool:
		return "bool"
	case Rec:
		return "record"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Field projects a named field from a record value.
// Fails if the value is not a record or the field is absent.
func Field(v Value, name string) (Value, error) {
	rec, ok := v.(Rec)
	if !ok {
		return nil, fmt.Errorf("field %q: value is %s, not a record", name, TypeName(v))
	}
	fv, ok := rec[name]
	if !ok {
		return nil, fmt.Errorf("field %q: not present in record", name)
	}
	return fv, nil
}
