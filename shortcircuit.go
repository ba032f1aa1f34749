//go:build cose_shortcircuit

package cose

import (
	"bytes"
	"io"
)

// shortCircuitSigner implements Signer by returning the TBS hash as the
// "signature" (spec 4.3). It exists purely for conformance and fuzz
// testing and must never be linked into a production binary: callers
// opt in by building with -tags cose_shortcircuit.
type shortCircuitSigner struct {
	kid []byte
}

// NewShortCircuitSigner returns a Signer that performs short-circuit
// "signing": Sign returns the digest it was given, unmodified.
//
// Requires the cose_shortcircuit build tag.
func NewShortCircuitSigner(kid []byte) Signer {
	return &shortCircuitSigner{kid: kid}
}

func (s *shortCircuitSigner) Algorithm() Algorithm { return AlgorithmReservedShortCircuit }

func (s *shortCircuitSigner) Sign(_ io.Reader, digest []byte) ([]byte, error) {
	out := make([]byte, len(digest))
	copy(out, digest)
	return out, nil
}

// shortCircuitVerifier implements Verifier by comparing the signature
// bytewise against the recomputed digest.
type shortCircuitVerifier struct {
	kid []byte
}

// NewShortCircuitVerifier returns a Verifier matching NewShortCircuitSigner.
//
// Requires the cose_shortcircuit build tag.
func NewShortCircuitVerifier(kid []byte) Verifier {
	return &shortCircuitVerifier{kid: kid}
}

func (v *shortCircuitVerifier) Algorithm() Algorithm { return AlgorithmReservedShortCircuit }

func (v *shortCircuitVerifier) Verify(content, signature []byte) error {
	digest, err := AlgorithmReservedShortCircuit.computeHash(content)
	if err != nil {
		return err
	}
	return v.VerifyDigest(digest, signature)
}

// VerifyDigest compares digest against signature directly: the short-circuit
// "signature" is the digest itself, so no further hashing is done here.
func (v *shortCircuitVerifier) VerifyDigest(digest, signature []byte) error {
	if !bytes.Equal(digest, signature) {
		return ErrSigVerifyFail
	}
	return nil
}

const shortCircuitBuildEnabled = true
