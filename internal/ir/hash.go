package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room for
// an algorithm change without colliding with old journals.
const (
	DomainAction = "reducto/action/v1"
	DomainState  = "reducto/state/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data).
// The null separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ActionHash returns the content hash of an action in its flat wire shape.
// Two actions with the same tag and payload hash identically regardless of
// payload key order.
func ActionHash(a Action) (string, error) {
	canonical, err := MarshalCanonical(a.Flatten())
	if err != nil {
		return "", fmt.Errorf("ActionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAction, canonical), nil
}

// StateHash returns the content hash of a state snapshot. Listeners and the
// journal use it to fingerprint the state after a dispatch without storing
// the state itself.
func StateHash(v IRValue) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("StateHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// MustStateHash is like StateHash but panics on error.
// Use only in tests or when the snapshot is known to be null-free.
func MustStateHash(v IRValue) string {
	h, err := StateHash(v)
	if err != nil {
		panic(err)
	}
	return h
}
