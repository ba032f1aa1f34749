package cose

import (
	"crypto"
	"crypto/ecdsa"
	"encoding/asn1"
	"errors"
	"io"
	"math/big"
)

// I2OSP - Integer-to-Octet-String primitive converts a nonnegative integer to
// an octet string of a specified length.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc8017#section-4.1
func I2OSP(x *big.Int, xLen int) ([]byte, error) {
	if x.Sign() < 0 {
		return nil, errors.New("I2OSP: negative integer")
	}
	if x.BitLen() > xLen*8 {
		return nil, errors.New("I2OSP: integer too large")
	}
	return x.FillBytes(make([]byte, xLen)), nil
}

// OS2IP - Octet-String-to-Integer primitive converts an octet string to a
// nonnegative integer.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc8017#section-4.2
func OS2IP(x []byte) *big.Int {
	return new(big.Int).SetBytes(x)
}

// ecdsaKeySigner signs with a concrete *ecdsa.PrivateKey, delegated to a
// CryptoAdapter so the fixed-length r||s re-encoding RFC 8152 8.1 requires
// lives in one place (cryptoadapter.go) regardless of key concreteness.
type ecdsaKeySigner struct {
	alg     Algorithm
	key     *ecdsa.PrivateKey
	adapter CryptoAdapter
}

// Algorithm returns the signing algorithm associated with the private key.
func (es *ecdsaKeySigner) Algorithm() Algorithm {
	return es.alg
}

// Sign signs digest with the private key, possibly using entropy from rand.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc8152#section-8.1
func (es *ecdsaKeySigner) Sign(rnd io.Reader, digest []byte) ([]byte, error) {
	adapter := es.adapter
	if adapter == nil {
		adapter = DefaultCryptoAdapter
	}
	return adapter.Sign(es.alg, es.key, rnd, digest)
}

func (es *ecdsaKeySigner) setCryptoAdapter(a CryptoAdapter) { es.adapter = a }

// ecdsaCryptoSigner signs through a generic crypto.Signer whose Public() key
// is an *ecdsa.PublicKey, e.g. an HSM-backed key that does not expose its
// private scalar.
type ecdsaCryptoSigner struct {
	alg     Algorithm
	key     *ecdsa.PublicKey
	signer  crypto.Signer
	adapter CryptoAdapter
}

// Algorithm returns the signing algorithm associated with the private key.
func (es *ecdsaCryptoSigner) Algorithm() Algorithm {
	return es.alg
}

// Sign signs digest via the wrapped crypto.Signer, possibly using entropy
// from rand.
func (es *ecdsaCryptoSigner) Sign(rnd io.Reader, digest []byte) ([]byte, error) {
	adapter := es.adapter
	if adapter == nil {
		adapter = DefaultCryptoAdapter
	}
	return adapter.Sign(es.alg, es.signer, rnd, digest)
}

func (es *ecdsaCryptoSigner) setCryptoAdapter(a CryptoAdapter) { es.adapter = a }

// ecdsaVerifier verifies the fixed-length r||s signature encoding of
// RFC 8152 8.1 against a golang built-in public key.
type ecdsaVerifier struct {
	alg     Algorithm
	key     *ecdsa.PublicKey
	adapter CryptoAdapter
}

// Algorithm returns the signing algorithm associated with the public key.
func (ev *ecdsaVerifier) Algorithm() Algorithm {
	return ev.alg
}

// Verify verifies message content with the public key, returning nil for
// success, otherwise ErrSigVerifyFail.
func (ev *ecdsaVerifier) Verify(content []byte, signature []byte) error {
	digest, err := ev.alg.computeHash(content)
	if err != nil {
		return err
	}
	return ev.VerifyDigest(digest, signature)
}

// VerifyDigest verifies message digest with the public key, returning nil
// for success, otherwise ErrSigVerifyFail.
func (ev *ecdsaVerifier) VerifyDigest(digest []byte, signature []byte) error {
	adapter := ev.adapter
	if adapter == nil {
		adapter = DefaultCryptoAdapter
	}
	return adapter.Verify(ev.alg, ev.key, digest, signature)
}

func (ev *ecdsaVerifier) setCryptoAdapter(a CryptoAdapter) { ev.adapter = a }

// encodeECDSASignature concatenates r and s, each left-padded with zeroes to
// fieldSize bytes, the RFC 8152 8.1 COSE_Signature encoding for ECDSA.
func encodeECDSASignature(r, s *big.Int, fieldSize int) ([]byte, error) {
	rBytes, err := I2OSP(r, fieldSize)
	if err != nil {
		return nil, err
	}
	sBytes, err := I2OSP(s, fieldSize)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 2*fieldSize)
	out = append(out, rBytes...)
	out = append(out, sBytes...)
	return out, nil
}

// ecdsaASN1Signature mirrors the SEQUENCE { r INTEGER, s INTEGER } structure
// crypto.Signer implementations for ECDSA keys emit.
type ecdsaASN1Signature struct {
	R, S *big.Int
}

func decodeASN1ECDSASignature(der []byte) (r, s *big.Int, err error) {
	var sig ecdsaASN1Signature
	if _, err := asn1.Unmarshal(der, &sig); err != nil {
		return nil, nil, err
	}
	return sig.R, sig.S, nil
}
