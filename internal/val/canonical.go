package val

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON.
// This is the ONLY serialization used for content-addressed identity,
// stored columns, and golden traces.
//
// Key differences from standard json.Marshal:
//  1. Record keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. No floats (returns error)
//  5. No null (returns error)
//
// Besides Value, it accepts plain Go strings, ints, bools, string-keyed
// maps, and []any so that composite artifacts such as trace snapshots can
// be serialized without first converting every leaf.
func MarshalCanonical(v any) ([]byte, error) {
	return marshalCanonical(v)
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case Str:
		return marshalCanonicalString(string(val))
	case Int:
		return []byte(fmt.Sprintf("%d", int64(val))), nil
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Rec:
		return marshalCanonicalRec(val)
	case string:
		return marshalCanonicalString(val)
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []Value:
		anyElems := make([]any, len(val))
		for i, e := range val {
			anyElems[i] = e
		}
		return marshalCanonicalList(anyElems)
	case []any:
		return marshalCanonicalList(val)
	case map[string]any:
		return marshalCanonicalMap(val)
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalMap serializes a string-keyed map whose values are
// arbitrary canonicalizable shapes (used for trace snapshots that mix
// records, lists, and scalars). Keys follow the same UTF-16 ordering
// records use.
func marshalCanonicalMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(m[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalCanonicalString produces a canonical JSON string with NFC
// normalization. RFC 8785 requires:
//   - No HTML escaping (<, >, & are NOT escaped)
//   - U+2028 and U+2029 are NOT escaped
//   - Only control characters, backslash, and quote are escaped
func marshalCanonicalString(s string) ([]byte, error) {
	// NFC normalize at the serialization boundary.
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it.
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	// Go's encoder escapes U+2028/U+2029 for JavaScript compatibility,
	// which RFC 8785 forbids. Undo that, leaving literal-backslash
	// sequences (\\u2028 in source text) untouched.
	result = unescapeSeparators(result)

	return result, nil
}

// unescapeSeparators converts \u2028 and \u2029 escape sequences back to
// literal characters. A backslash only introduces an escape when it is not
// itself escaped, so the run of backslashes already emitted decides: an
// even run means the sequence is a real encoder escape to undo.
func unescapeSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] == '\\' && i+5 < len(data) &&
			data[i+1] == 'u' && data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			run := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				run++
			}
			if run%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 6
				continue
			}
		}
		out = append(out, data[i])
		i++
	}
	return out
}

// marshalCanonicalList serializes a JSON array with canonical elements.
// Lists never appear in element position; this form exists for container
// artifacts: the stored element sequence and trace snapshots.
func marshalCanonicalList(elems []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshalCanonicalRec serializes a record with RFC 8785 key ordering.
func marshalCanonicalRec(rec Rec) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	keys := rec.SortedKeys()
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(rec[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalElements serializes a heap's element sequence as a canonical JSON
// array. This is the storage encoding for slot contents.
func MarshalElements(elems []Value) ([]byte, error) {
	anyElems := make([]any, len(elems))
	for i, e := range elems {
		anyElems[i] = e
	}
	return marshalCanonicalList(anyElems)
}

// ParseElements deserializes a canonical JSON array of element values.
// Each element is validated with the same rules as ParseJSON; an empty or
// blank input yields an empty, non-nil slice.
func ParseElements(data []byte) ([]Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Value{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse elements: %w", err)
	}

	elems := make([]Value, len(raw))
	for i, r := range raw {
		v, err := FromGo(r)
		if err != nil {
			return nil, fmt.Errorf("element[%d]: %w", i, err)
		}
		elems[i] = v
	}
	return elems, nil
}
