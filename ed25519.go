package cose

import (
	"crypto"
	"crypto/ed25519"
	"io"
)

// ed25519Signer is a Pure EdDSA based signer with a generic crypto.Signer.
type ed25519Signer struct {
	key     crypto.Signer
	adapter CryptoAdapter
}

// Algorithm returns the signing algorithm associated with the private key.
func (es *ed25519Signer) Algorithm() Algorithm {
	return AlgorithmEdDSA
}

// Sign signs digest with the private key, possibly using entropy from rand.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc8152#section-8.2
func (es *ed25519Signer) Sign(rand io.Reader, digest []byte) ([]byte, error) {
	adapter := es.adapter
	if adapter == nil {
		adapter = DefaultCryptoAdapter
	}
	return adapter.Sign(AlgorithmEdDSA, es.key, rand, digest)
}

func (es *ed25519Signer) setCryptoAdapter(a CryptoAdapter) { es.adapter = a }

// ed25519Verifier is a Pure EdDSA based verifier with golang built-in keys.
type ed25519Verifier struct {
	key     ed25519.PublicKey
	adapter CryptoAdapter
}

// Algorithm returns the signing algorithm associated with the public key.
func (ev *ed25519Verifier) Algorithm() Algorithm {
	return AlgorithmEdDSA
}

// Verify verifies content with the public key, returning nil for success,
// otherwise ErrSigVerifyFail. EdDSA has no separate digest form: content is
// passed to the adapter unhashed.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc8152#section-8.2
func (ev *ed25519Verifier) Verify(content []byte, signature []byte) error {
	return ev.VerifyDigest(content, signature)
}

// VerifyDigest is identical to Verify for EdDSA: there is no separate
// digest form, so the engine's already-built TBS bytes pass straight
// through.
func (ev *ed25519Verifier) VerifyDigest(digest []byte, signature []byte) error {
	adapter := ev.adapter
	if adapter == nil {
		adapter = DefaultCryptoAdapter
	}
	return adapter.Verify(AlgorithmEdDSA, ev.key, digest, signature)
}

func (ev *ed25519Verifier) setCryptoAdapter(a CryptoAdapter) { ev.adapter = a }
