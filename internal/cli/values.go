package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/hoard/internal/val"
)

// parseValue interprets a command-line token as a storable value.
// Canonical JSON is tried first, so numbers, quoted strings, booleans,
// and {...} records all work; a token that is not JSON at all is read
// as a bare string, letting `hoard sort pear apple` skip shell quoting.
func parseValue(token string) (val.Value, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, fmt.Errorf("empty value")
	}

	v, err := val.ParseJSON([]byte(trimmed))
	if err == nil {
		return v, nil
	}
	if jsonShaped(trimmed) {
		return nil, fmt.Errorf("invalid value %q: %v", token, err)
	}
	return val.NewStr(trimmed), nil
}

// jsonShaped reports whether the token was clearly meant as JSON, in
// which case its parse error should surface instead of a silent string
// fallback.
func jsonShaped(s string) bool {
	if s == "null" {
		return true
	}
	switch s[0] {
	case '{', '[', '"', '-':
		return true
	}
	return s[0] >= '0' && s[0] <= '9'
}

// readValues parses element values from the argument list, or from
// stdin lines when no arguments were given. Blank lines are skipped.
func readValues(args []string, stdin io.Reader) ([]val.Value, error) {
	if len(args) > 0 {
		values := make([]val.Value, 0, len(args))
		for i, arg := range args {
			v, err := parseValue(arg)
			if err != nil {
				return nil, fmt.Errorf("value %d: %w", i+1, err)
			}
			values = append(values, v)
		}
		return values, nil
	}

	var values []val.Value
	scanner := bufio.NewScanner(stdin)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		v, err := parseValue(text)
		if err != nil {
			return nil, fmt.Errorf("stdin line %d: %w", line, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return values, nil
}

// marshalValues renders each value to canonical JSON.
func marshalValues(values []val.Value) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		data, err := val.MarshalCanonical(v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		out[i] = json.RawMessage(data)
	}
	return out, nil
}
