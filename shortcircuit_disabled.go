//go:build !cose_shortcircuit

package cose

import "io"

// NewShortCircuitSigner is unavailable: this binary was built without the
// cose_shortcircuit tag, so the short-circuit test-only signing path is not
// linked in.
func NewShortCircuitSigner(kid []byte) Signer {
	return unsupportedShortCircuit{}
}

// NewShortCircuitVerifier is unavailable for the same reason as
// NewShortCircuitSigner.
func NewShortCircuitVerifier(kid []byte) Verifier {
	return unsupportedShortCircuit{}
}

// unsupportedShortCircuit satisfies both Signer and Verifier by always
// failing, so a binary built without cose_shortcircuit cannot accidentally
// produce or accept a short-circuit "signature".
type unsupportedShortCircuit struct{}

func (unsupportedShortCircuit) Algorithm() Algorithm { return AlgorithmReservedShortCircuit }

func (unsupportedShortCircuit) Sign(_ io.Reader, _ []byte) ([]byte, error) {
	return nil, ErrAlgorithmNotSupported
}

func (unsupportedShortCircuit) Verify(_, _ []byte) error {
	return ErrAlgorithmNotSupported
}

func (unsupportedShortCircuit) VerifyDigest(_, _ []byte) error {
	return ErrAlgorithmNotSupported
}

const shortCircuitBuildEnabled = false
