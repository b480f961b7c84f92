package caps

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/hoard/internal/val"
)

// Domain prefixes for content-addressed identity.
// The version suffix enables future algorithm migration.
const (
	DomainInvocation = "hoard/invocation/v1"
	DomainBundle     = "hoard/bundle/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InvocationID computes the content-addressed ID for an audit record.
// The ID is stable across restarts and replays given the same inputs:
// same session, principal, op, argument, and seq always hash identically.
// A nil arg is omitted from the payload rather than encoded as null.
func InvocationID(session, principal string, op OpKind, arg val.Value, seq int64) (string, error) {
	payload := map[string]any{
		"session":   session,
		"principal": principal,
		"op":        string(op),
		"seq":       seq,
	}
	if arg != nil {
		payload["arg"] = arg
	}

	canonical, err := val.MarshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("InvocationID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainInvocation, canonical), nil
}

// MustInvocationID is like InvocationID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustInvocationID(session, principal string, op OpKind, arg val.Value, seq int64) string {
	id, err := InvocationID(session, principal, op, arg, seq)
	if err != nil {
		panic(err)
	}
	return id
}

// BundleDigest computes the content hash of a bundle's canonical encoding.
// The store keeps the digest beside the handles; a checkout that reads
// back handles whose digest differs reports corruption instead of
// dispatching through them.
func BundleDigest(b Bundle) (string, error) {
	canonical, err := MarshalBundle(b)
	if err != nil {
		return "", fmt.Errorf("BundleDigest: %w", err)
	}
	return hashWithDomain(DomainBundle, canonical), nil
}

// MustBundleDigest is like BundleDigest but panics on error.
func MustBundleDigest(b Bundle) string {
	d, err := BundleDigest(b)
	if err != nil {
		panic(err)
	}
	return d
}
