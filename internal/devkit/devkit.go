// Package devkit provides test-only fixture helpers for exercising
// multi-key verifier dispatch. It is never imported by the signing or
// verification core.
package devkit

import "github.com/google/uuid"

// NewKeyID returns a synthetic kid byte string suitable for populating a
// KeyIDRegistry fixture in tests, distinct on every call.
func NewKeyID() []byte {
	id := uuid.New()
	return id[:]
}

// NewKeyIDs returns n distinct synthetic kid byte strings.
func NewKeyIDs(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = NewKeyID()
	}
	return out
}
