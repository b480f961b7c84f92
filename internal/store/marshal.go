package store

import (
	"fmt"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/val"
)

// marshalElements converts a heap's element sequence to canonical JSON TEXT
// for the slots.elements column. Uses RFC 8785 canonical JSON for
// deterministic serialization.
func marshalElements(elements []val.Value) (string, error) {
	data, err := val.MarshalElements(elements)
	if err != nil {
		return "", fmt.Errorf("marshal elements: %w", err)
	}
	return string(data), nil
}

// unmarshalElements parses canonical JSON TEXT into an element sequence.
// Uses val.ParseElements which handles large integers via json.Number to
// avoid float64 precision loss for values > 2^53.
func unmarshalElements(data string) ([]val.Value, error) {
	elements, err := val.ParseElements([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal elements: %w", err)
	}
	return elements, nil
}

// marshalOptionalValue converts an optional arg or result to TEXT.
// Absent values become the empty string, never NULL.
func marshalOptionalValue(v val.Value) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := val.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(data), nil
}

// unmarshalOptionalValue parses TEXT back into an optional value.
// The empty string means absent.
func unmarshalOptionalValue(data string) (val.Value, error) {
	if data == "" {
		return nil, nil
	}
	v, err := val.ParseJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return v, nil
}

// marshalBundle converts a handle bundle to canonical JSON TEXT for the
// bundles.handles column.
func marshalBundle(b caps.Bundle) (string, error) {
	data, err := caps.MarshalBundle(b)
	if err != nil {
		return "", fmt.Errorf("marshal bundle: %w", err)
	}
	return string(data), nil
}

// unmarshalBundle parses canonical JSON TEXT into a handle bundle,
// validating that every slot carries the expected operation kind.
func unmarshalBundle(data string) (caps.Bundle, error) {
	b, err := caps.UnmarshalBundle([]byte(data))
	if err != nil {
		return caps.Bundle{}, fmt.Errorf("unmarshal bundle: %w", err)
	}
	return b, nil
}
