package val

import (
	"cmp"
	"fmt"
)

// Compare imposes a total deterministic order over values, used by the
// engine for persisted heaps. Values of different types order by type
// rank: bool < int < string < record. Within a type:
//
//   - bool: false before true
//   - int: numeric order
//   - string: byte order
//   - record: key-by-key in canonical key order, then value-by-value,
//     shorter record first on a shared prefix
//
// Returns -1, 0, or +1. Panics on a nil or foreign Value; the sealed
// interface makes that unreachable for well-formed inputs.
func Compare(a, b Value) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch av := a.(type) {
	case Bool:
		bv := b.(Bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	case Int:
		return cmp.Compare(int64(av), int64(b.(Int)))
	case Str:
		return cmp.Compare(string(av), string(b.(Str)))
	case Rec:
		return compareRecs(av, b.(Rec))
	default:
		panic(fmt.Sprintf("val: compare of unknown value type %T", a))
	}
}

// typeRank assigns the cross-type ordering rank.
func typeRank(v Value) int {
	switch v.(type) {
	case Bool:
		return 0
	case Int:
		return 1
	case Str:
		return 2
	case Rec:
		return 3
	default:
		panic(fmt.Sprintf("val: rank of unknown value type %T", v))
	}
}

// compareRecs orders records field-by-field in canonical key order.
// A record that is a strict field-prefix of another orders first.
func compareRecs(a, b Rec) int {
	ak, bk := a.SortedKeys(), b.SortedKeys()

	n := len(ak)
	if len(bk) < n {
		n = len(bk)
	}
	for i := 0; i < n; i++ {
		if c := compareKeysUTF16(ak[i], bk[i]); c != 0 {
			return c
		}
		if c := Compare(a[ak[i]], b[bk[i]]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ak), len(bk))
}
