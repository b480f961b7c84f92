package cli

import (
	"fmt"
	"os"

	"github.com/roach88/hoard/internal/profile"
)

// loadProfile reads and compiles an ordering profile from a CUE file.
func loadProfile(path string) (*profile.Profile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p, err := profile.CompileProfile(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// describeProfile renders a one-line summary of a compiled profile.
func describeProfile(p *profile.Profile) string {
	target := "whole value"
	if p.Field != "" {
		target = "field " + p.Field
	}
	desc := fmt.Sprintf("profile %q orders by %s, %s", p.Name, target, p.Direction)
	if p.Collation != "" {
		desc += fmt.Sprintf(", collation %s", p.Collation)
	}
	return desc
}
