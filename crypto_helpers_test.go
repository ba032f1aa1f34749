package cose

import (
	"crypto"
	"testing"
)

// publicKeyOf extracts the public half of a crypto.PrivateKey produced by
// NewSignerWithEphemeralKey, for constructing a matching Verifier in tests.
func publicKeyOf(t *testing.T, key crypto.PrivateKey) crypto.PublicKey {
	t.Helper()
	signer, ok := key.(crypto.Signer)
	if !ok {
		t.Fatalf("key of type %T does not implement crypto.Signer", key)
	}
	return signer.Public()
}
