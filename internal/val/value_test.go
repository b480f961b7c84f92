package val

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONScalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"int", "42", Int(42)},
		{"negative int", "-17", Int(-17)},
		{"zero", "0", Int(0)},
		{"string", `"hello"`, Str("hello")},
		{"empty string", `""`, Str("")},
		{"bool true", "true", Bool(true)},
		{"bool false", "false", Bool(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONRecord(t *testing.T) {
	got, err := ParseJSON([]byte(`{"age": 30, "name": "dana", "active": true}`))
	require.NoError(t, err)

	rec, ok := got.(Rec)
	require.True(t, ok)
	assert.Equal(t, Int(30), rec["age"])
	assert.Equal(t, Str("dana"), rec["name"])
	assert.Equal(t, Bool(true), rec["active"])
}

func TestParseJSONRejectsFloat(t *testing.T) {
	for _, input := range []string{"3.14", "1e5", "2E-3", `{"salary": 100000.5}`} {
		_, err := ParseJSON([]byte(input))
		require.Error(t, err, "input %s", input)
		assert.Contains(t, err.Error(), "float")
	}
}

func TestParseJSONRejectsNull(t *testing.T) {
	for _, input := range []string{"null", `{"x": null}`} {
		_, err := ParseJSON([]byte(input))
		require.Error(t, err, "input %s", input)
		assert.Contains(t, err.Error(), "null")
	}
}

func TestParseJSONRejectsArray(t *testing.T) {
	for _, input := range []string{"[1,2,3]", `{"xs": [1]}`} {
		_, err := ParseJSON([]byte(input))
		require.Error(t, err, "input %s", input)
		assert.Contains(t, err.Error(), "array")
	}
}

func TestParseJSONLargeInt(t *testing.T) {
	// Beyond 2^53: float64 round-tripping would corrupt this.
	got, err := ParseJSON([]byte("9007199254740993"))
	require.NoError(t, err)
	assert.Equal(t, Int(9007199254740993), got)
}

func TestFromGoYAMLShapes(t *testing.T) {
	// yaml.v3 decodes integers as int and nested maps as map[string]any.
	got, err := FromGo(map[string]any{"age": 30, "name": "dana"})
	require.NoError(t, err)

	rec, ok := got.(Rec)
	require.True(t, ok)
	assert.Equal(t, Int(30), rec["age"])
	assert.Equal(t, Str("dana"), rec["name"])
}

func TestFromGoRejectsFloat(t *testing.T) {
	_, err := FromGo(3.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float")
}

func TestNewRec(t *testing.T) {
	rec := NewRec(F("name", NewStr("cart")), F("count", NewInt(5)))

	assert.Equal(t, Str("cart"), rec["name"])
	assert.Equal(t, Int(5), rec["count"])
	assert.Len(t, rec, 2)
}

func TestSortedKeysUTF16Order(t *testing.T) {
	// U+FF21 (FULLWIDTH A) is a single code unit 0xFF21; U+1D400
	// (MATHEMATICAL BOLD A) encodes as a surrogate pair starting 0xD835.
	// UTF-16 ordering puts the surrogate pair first; UTF-8 byte order
	// would reverse them.
	rec := Rec{
		"Ａ":     Int(1),
		"\U0001D400": Int(2),
	}

	keys := rec.SortedKeys()
	require.Len(t, keys, 2)
	assert.Equal(t, "\U0001D400", keys[0])
	assert.Equal(t, "Ａ", keys[1])
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "int", TypeName(Int(1)))
	assert.Equal(t, "string", TypeName(Str("")))
	assert.Equal(t, "bool", TypeName(Bool(true)))
	assert.Equal(t, "record", TypeName(Rec{}))
}

func TestField(t *testing.T) {
	rec := NewRec(F("age", NewInt(30)), F("name", NewStr("dana")))

	got, err := Field(rec, "age")
	require.NoError(t, err)
	assert.Equal(t, Int(30), got)
}

func TestFieldMissing(t *testing.T) {
	rec := NewRec(F("age", NewInt(30)))

	_, err := Field(rec, "salary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salary")
}

func TestFieldOnNonRecord(t *testing.T) {
	_, err := Field(Int(5), "age")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a record")
}
