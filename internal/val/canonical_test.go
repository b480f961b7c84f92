package val

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalScalars(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"int", Int(42), "42"},
		{"negative", Int(-5), "-5"},
		{"string", Str("hi"), `"hi"`},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalRecSortsKeys(t *testing.T) {
	rec := NewRec(
		F("zebra", NewInt(1)),
		F("apple", NewInt(2)),
		F("mango", NewInt(3)),
	)

	got, err := MarshalCanonical(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"apple":2,"mango":3,"zebra":1}`, string(got))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(Str(`a<b>&c`))
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(got))
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// e + combining acute (NFD) normalizes to the precomposed form (NFC).
	decomposed := Str("é")
	precomposed := Str("é")

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(precomposed)
	require.NoError(t, err)

	assert.Equal(t, string(b), string(a), "NFC-equal strings must serialize identically")
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	// U+2028 stays a literal character, not a \u2028 escape.
	got, err := MarshalCanonical(Str("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(got))
	assert.NotContains(t, string(got), `\u2028`)
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	// Source text containing backslash + "u2028" must keep the escaped
	// backslash, not be collapsed into the separator character.
	got, err := MarshalCanonical(Str(`x\u2028y`))
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028y"`, string(got))
}

func TestMarshalCanonicalRejectsNil(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")
}

func TestMarshalCanonicalRejectsFloat(t *testing.T) {
	_, err := MarshalCanonical(3.14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float")
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	rec := NewRec(
		F("name", NewStr("dana")),
		F("age", NewInt(30)),
		F("active", NewBool(true)),
	)

	first, err := MarshalCanonical(rec)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(rec)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalElementsRoundTrip(t *testing.T) {
	elems := []Value{
		Int(10),
		Str("x"),
		NewRec(F("age", NewInt(25)), F("salary", NewInt(100000))),
	}

	data, err := MarshalElements(elems)
	require.NoError(t, err)
	assert.Equal(t, `[10,"x",{"age":25,"salary":100000}]`, string(data))

	back, err := ParseElements(data)
	require.NoError(t, err)
	assert.Equal(t, elems, back)
}

func TestMarshalElementsEmpty(t *testing.T) {
	data, err := MarshalElements(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestParseElementsEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "[]"} {
		got, err := ParseElements([]byte(input))
		require.NoError(t, err, "input %q", input)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestParseElementsRejectsFloatElement(t *testing.T) {
	_, err := ParseElements([]byte(`[1, 2.5]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element[1]")
}

func TestParseElementsRejectsNestedArray(t *testing.T) {
	_, err := ParseElements([]byte(`[[1,2]]`))
	require.Error(t, err)
}
