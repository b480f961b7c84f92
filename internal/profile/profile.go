// Package profile compiles declarative ordering profiles from CUE.
//
// A profile names a comparator policy over stored values: an optional
// record field to project, a direction, and an optional collation for
// strings. Profiles are operator input, so they pass through the same
// CUE gate as everything else typed by a human: unknown fields are
// rejected, the direction is constrained, and the collation tag must
// parse before the profile compiles.
package profile

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/hoard/internal/order"
	"github.com/roach88/hoard/internal/val"
)

// Direction selects which end of the ordering comes first.
type Direction string

const (
	// DirectionAsc puts the smallest element first.
	DirectionAsc Direction = "asc"

	// DirectionDesc puts the largest element first.
	DirectionDesc Direction = "desc"
)

// Profile is a compiled ordering policy.
type Profile struct {
	// Name labels the policy in output and errors.
	Name string

	// Field is the record field to order by; empty orders whole values.
	Field string

	// Direction is asc or desc.
	Direction Direction

	// Collation is a BCP 47 tag for locale-aware string comparison;
	// empty uses the canonical byte order.
	Collation string
}

// profileFields is the complete set of accepted profile fields.
var profileFields = map[string]bool{
	"name":      true,
	"field":     true,
	"direction": true,
	"collation": true,
}

// CompileProfile parses CUE source into a validated Profile.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The source must define a top-level profile struct, e.g.:
//
//	profile: {
//	    name:      "by age"
//	    field:     "age"
//	    direction: "desc"
//	}
func CompileProfile(src []byte) (*Profile, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	pv := v.LookupPath(cue.ParsePath("profile"))
	if !pv.Exists() {
		return nil, &CompileError{
			Field:   "profile",
			Message: "top-level profile struct is required",
			Pos:     v.Pos(),
		}
	}

	// Reject unknown fields before reading the known ones.
	iter, err := pv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		if !profileFields[iter.Label()] {
			return nil, &CompileError{
				Field:   "profile." + iter.Label(),
				Message: "unknown field (valid: name, field, direction, collation)",
				Pos:     iter.Value().Pos(),
			}
		}
	}

	p := &Profile{}

	nameVal := pv.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "name is required",
			Pos:     pv.Pos(),
		}
	}
	p.Name, err = nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if p.Name == "" {
		return nil, &CompileError{
			Field:   "name",
			Message: "name must be non-empty",
			Pos:     nameVal.Pos(),
		}
	}

	dirVal := pv.LookupPath(cue.ParsePath("direction"))
	if !dirVal.Exists() {
		return nil, &CompileError{
			Field:   "direction",
			Message: `direction is required ("asc" or "desc")`,
			Pos:     pv.Pos(),
		}
	}
	dir, err := dirVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	switch Direction(dir) {
	case DirectionAsc, DirectionDesc:
		p.Direction = Direction(dir)
	default:
		return nil, &CompileError{
			Field:   "direction",
			Message: fmt.Sprintf(`invalid direction %q, must be "asc" or "desc"`, dir),
			Pos:     dirVal.Pos(),
		}
	}

	fieldVal := pv.LookupPath(cue.ParsePath("field"))
	if fieldVal.Exists() {
		p.Field, err = fieldVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if p.Field == "" {
			return nil, &CompileError{
				Field:   "field",
				Message: "field must be non-empty when present",
				Pos:     fieldVal.Pos(),
			}
		}
	}

	collVal := pv.LookupPath(cue.ParsePath("collation"))
	if collVal.Exists() {
		p.Collation, err = collVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if _, err := language.Parse(p.Collation); err != nil {
			return nil, &CompileError{
				Field:   "collation",
				Message: fmt.Sprintf("invalid BCP 47 tag %q: %v", p.Collation, err),
				Pos:     collVal.Pos(),
			}
		}
	}

	return p, nil
}

// Comparator assembles the profile into an ordering policy over values.
//
// Elements that cannot supply the profile's field (non-records, or records
// without it) sort after every element that can, in canonical order among
// themselves, so heterogeneous inputs still order deterministically.
func (p *Profile) Comparator() (order.Comparator[val.Value], error) {
	var col *collate.Collator
	if p.Collation != "" {
		tag, err := language.Parse(p.Collation)
		if err != nil {
			return nil, fmt.Errorf("profile %q: collation: %w", p.Name, err)
		}
		col = collate.New(tag)
	}

	compare := p.compareFn(col)
	return order.FromCompare(compare, false), nil
}

// compareFn builds the three-way compare embedding projection, collation,
// and direction. A negative result means a comes first in output order.
func (p *Profile) compareFn(col *collate.Collator) func(a, b val.Value) int {
	key := func(v val.Value) (val.Value, bool) {
		if p.Field == "" {
			return v, true
		}
		f, err := val.Field(v, p.Field)
		if err != nil {
			return nil, false
		}
		return f, true
	}

	base := func(a, b val.Value) int {
		if col != nil {
			sa, aOK := a.(val.Str)
			sb, bOK := b.(val.Str)
			if aOK && bOK {
				return col.CompareString(string(sa), string(sb))
			}
		}
		return val.Compare(a, b)
	}

	return func(a, b val.Value) int {
		ka, aOK := key(a)
		kb, bOK := key(b)
		switch {
		case aOK && bOK:
			c := base(ka, kb)
			if p.Direction == DirectionDesc {
				c = -c
			}
			return c
		case aOK:
			return -1
		case bOK:
			return 1
		default:
			return val.Compare(a, b)
		}
	}
}
