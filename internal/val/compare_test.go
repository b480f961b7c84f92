package val

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareInts(t *testing.T) {
	assert.Equal(t, -1, Compare(Int(1), Int(2)))
	assert.Equal(t, 1, Compare(Int(10), Int(2)))
	assert.Equal(t, 0, Compare(Int(5), Int(5)))
	assert.Equal(t, -1, Compare(Int(-3), Int(0)))
}

func TestCompareStrings(t *testing.T) {
	assert.Equal(t, -1, Compare(Str("apple"), Str("banana")))
	assert.Equal(t, 1, Compare(Str("pear"), Str("fig")))
	assert.Equal(t, 0, Compare(Str("kiwi"), Str("kiwi")))
}

func TestCompareBools(t *testing.T) {
	assert.Equal(t, -1, Compare(Bool(false), Bool(true)))
	assert.Equal(t, 1, Compare(Bool(true), Bool(false)))
	assert.Equal(t, 0, Compare(Bool(true), Bool(true)))
	assert.Equal(t, 0, Compare(Bool(false), Bool(false)))
}

func TestCompareTypeRank(t *testing.T) {
	// bool < int < string < record, regardless of content.
	assert.Equal(t, -1, Compare(Bool(true), Int(0)))
	assert.Equal(t, -1, Compare(Int(999), Str("")))
	assert.Equal(t, -1, Compare(Str("zzz"), Rec{}))
	assert.Equal(t, 1, Compare(Rec{}, Bool(false)))
}

func TestCompareRecs(t *testing.T) {
	a := NewRec(F("age", NewInt(25)), F("salary", NewInt(100000)))
	b := NewRec(F("age", NewInt(30)), F("salary", NewInt(50000)))

	assert.Equal(t, -1, Compare(a, b), "first canonical field decides")
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, 0, Compare(a, NewRec(F("salary", NewInt(100000)), F("age", NewInt(25)))))
}

func TestCompareRecPrefix(t *testing.T) {
	short := NewRec(F("age", NewInt(25)))
	long := NewRec(F("age", NewInt(25)), F("salary", NewInt(1)))

	assert.Equal(t, -1, Compare(short, long), "field-prefix record orders first")
	assert.Equal(t, 1, Compare(long, short))
}

func TestCompareRecDifferentKeys(t *testing.T) {
	a := NewRec(F("age", NewInt(1)))
	b := NewRec(F("best", NewInt(1)))

	// "age" < "best" in canonical key order.
	assert.Equal(t, -1, Compare(a, b))
}

func TestCompareIsTotal(t *testing.T) {
	values := []Value{
		Bool(false), Bool(true),
		Int(-1), Int(0), Int(7),
		Str(""), Str("a"),
		Rec{}, NewRec(F("k", NewInt(1))),
	}

	for i, a := range values {
		for j, b := range values {
			got := Compare(a, b)
			rev := Compare(b, a)
			assert.Equal(t, -rev, got, "antisymmetry for (%d, %d)", i, j)
			if i == j {
				assert.Equal(t, 0, got, "reflexivity for %d", i)
			}
		}
	}
}
