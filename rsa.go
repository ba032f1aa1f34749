package cose

import (
	"crypto"
	"io"
)

// rsaSigner is a RSASSA-PSS based signer with a generic crypto.Signer. The
// actual PSS call is delegated to a CryptoAdapter so the signing primitive
// can be swapped for an HSM or remote KMS without touching this type.
//
// Reference: https://www.rfc-editor.org/rfc/rfc8230.html#section-2
type rsaSigner struct {
	alg     Algorithm
	key     crypto.Signer
	adapter CryptoAdapter
}

// Algorithm returns the signing algorithm associated with the private key.
func (rs *rsaSigner) Algorithm() Algorithm {
	return rs.alg
}

// Sign signs digest with the private key, using entropy from rand. digest
// is already hashed with the algorithm's hash function and is not hashed
// again. The resulting signature follows RFC 8152 section 8.
func (rs *rsaSigner) Sign(rand io.Reader, digest []byte) ([]byte, error) {
	return rs.SignDigest(rand, digest)
}

// SignDigest signs message digest with the private key, possibly using
// entropy from rand.
func (rs *rsaSigner) SignDigest(rand io.Reader, digest []byte) ([]byte, error) {
	return rs.adapterOrDefault().Sign(rs.alg, rs.key, rand, digest)
}

func (rs *rsaSigner) adapterOrDefault() CryptoAdapter {
	if rs.adapter != nil {
		return rs.adapter
	}
	return DefaultCryptoAdapter
}

func (rs *rsaSigner) setCryptoAdapter(a CryptoAdapter) { rs.adapter = a }

// rsaVerifier is a RSASSA-PSS based verifier with golang built-in keys.
//
// Reference: https://www.rfc-editor.org/rfc/rfc8230.html#section-2
type rsaVerifier struct {
	alg     Algorithm
	key     crypto.PublicKey
	adapter CryptoAdapter
}

// Algorithm returns the signing algorithm associated with the public key.
func (rv *rsaVerifier) Algorithm() Algorithm {
	return rv.alg
}

// Verify verifies message content with the public key, returning nil for
// success, otherwise ErrSigVerifyFail.
func (rv *rsaVerifier) Verify(content []byte, signature []byte) error {
	digest, err := rv.alg.computeHash(content)
	if err != nil {
		return err
	}
	return rv.VerifyDigest(digest, signature)
}

// VerifyDigest verifies message digest with the public key, returning nil
// for success, otherwise ErrSigVerifyFail.
func (rv *rsaVerifier) VerifyDigest(digest []byte, signature []byte) error {
	adapter := rv.adapter
	if adapter == nil {
		adapter = DefaultCryptoAdapter
	}
	return adapter.Verify(rv.alg, rv.key, digest, signature)
}

func (rv *rsaVerifier) setCryptoAdapter(a CryptoAdapter) { rv.adapter = a }
