package cose

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"hash"
	"io"
	"math/big"
)

// CryptoAdapter is the narrow, crypto-agnostic façade the engine drives for
// every signing and verification primitive (spec C3). Concrete Signer and
// Verifier implementations (ecdsa*, rsa*, ed25519*) are thin adapters
// around this interface; the short-circuit test signer and verifier do not
// use it. Swapping it out
// (for an HSM, a remote KMS, a different crypto library) does not require
// touching the Sign/Verify engines.
type CryptoAdapter interface {
	// Sign produces a signature over tbsOrHash using key. For hash-based
	// algorithms tbsOrHash is already the digest; for hash-less algorithms
	// (EdDSA) it is the full TBS bytes.
	Sign(alg Algorithm, key crypto.Signer, rand io.Reader, tbsOrHash []byte) ([]byte, error)

	// Verify checks signature against tbsOrHash using key, returning
	// ErrSigVerifyFail on mismatch.
	Verify(alg Algorithm, key crypto.PublicKey, tbsOrHash, signature []byte) error

	// SigSize returns the byte length a signature produced by Sign for alg
	// and key would occupy, without performing any signing. Sign1 and Sign
	// do not call it: they encode each message in a single pass, with no
	// size-calculation pass.
	SigSize(alg Algorithm, key crypto.PublicKey) (int, error)

	// HashStart begins an incremental hash for alg, or (nil, nil) if alg has
	// no associated hash function (EdDSA).
	HashStart(alg Algorithm) (hash.Hash, error)
}

// stdCryptoAdapter implements CryptoAdapter on top of the Go standard
// library's crypto/ecdsa, crypto/rsa, and crypto/ed25519 packages.
type stdCryptoAdapter struct{}

// DefaultCryptoAdapter is the CryptoAdapter used when a Signer/Verifier is
// constructed via NewSigner/NewVerifier without an explicit adapter.
var DefaultCryptoAdapter CryptoAdapter = stdCryptoAdapter{}

// cryptoAdapterSetter is implemented by every built-in Signer/Verifier
// (ecdsa*, rsa*, ed25519*) so the Sign/Verify engines can apply an
// EngineContext's CryptoAdapter to a caller-supplied key without widening
// the public Signer/Verifier interfaces.
type cryptoAdapterSetter interface {
	setCryptoAdapter(CryptoAdapter)
}

// applyCryptoAdapter installs ctx's CryptoAdapter into v if v supports it.
// Types outside this package that implement Signer/Verifier directly are
// unaffected and keep whatever crypto path they already use.
func applyCryptoAdapter(v any, adapter CryptoAdapter) {
	if s, ok := v.(cryptoAdapterSetter); ok {
		s.setCryptoAdapter(adapter)
	}
}

func (stdCryptoAdapter) HashStart(alg Algorithm) (hash.Hash, error) {
	h := alg.hashFunc()
	if h == 0 {
		return nil, nil
	}
	if !h.Available() {
		return nil, ErrUnavailableHashFunc
	}
	return h.New(), nil
}

func (a stdCryptoAdapter) Sign(alg Algorithm, key crypto.Signer, rnd io.Reader, tbsOrHash []byte) ([]byte, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	switch alg {
	case AlgorithmPS256, AlgorithmPS384, AlgorithmPS512:
		return key.Sign(rnd, tbsOrHash, &rsa.PSSOptions{
			SaltLength: rsa.PSSSaltLengthEqualsHash,
			Hash:       alg.hashFunc(),
		})
	case AlgorithmES256, AlgorithmES384, AlgorithmES512:
		pub, ok := key.Public().(*ecdsa.PublicKey)
		if !ok {
			return nil, ErrInvalidAlgorithm
		}
		if sk, ok := key.(*ecdsa.PrivateKey); ok {
			r, s, err := ecdsa.Sign(rnd, sk, tbsOrHash)
			if err != nil {
				return nil, err
			}
			return encodeECDSASignature(r, s, ecdsaFieldSize(pub))
		}
		der, err := key.Sign(rnd, tbsOrHash, alg.hashFunc())
		if err != nil {
			return nil, err
		}
		r, s, err := decodeASN1ECDSASignature(der)
		if err != nil {
			return nil, err
		}
		return encodeECDSASignature(r, s, ecdsaFieldSize(pub))
	case AlgorithmEdDSA:
		return key.Sign(rnd, tbsOrHash, crypto.Hash(0))
	default:
		return nil, fmt.Errorf("%v: %w", alg, ErrAlgorithmNotSupported)
	}
}

func (a stdCryptoAdapter) Verify(alg Algorithm, key crypto.PublicKey, tbsOrHash, signature []byte) error {
	switch alg {
	case AlgorithmPS256, AlgorithmPS384, AlgorithmPS512:
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return ErrInvalidAlgorithm
		}
		if err := rsa.VerifyPSS(pub, alg.hashFunc(), tbsOrHash, signature, &rsa.PSSOptions{
			SaltLength: rsa.PSSSaltLengthEqualsHash,
		}); err != nil {
			return ErrSigVerifyFail
		}
		return nil
	case AlgorithmES256, AlgorithmES384, AlgorithmES512:
		pub, ok := key.(*ecdsa.PublicKey)
		if !ok {
			return ErrInvalidAlgorithm
		}
		keySize := ecdsaFieldSize(pub)
		if len(signature) != 2*keySize {
			return ErrSigVerifyFail
		}
		r := new(big.Int).SetBytes(signature[:keySize])
		s := new(big.Int).SetBytes(signature[keySize:])
		if !ecdsa.Verify(pub, tbsOrHash, r, s) {
			return ErrSigVerifyFail
		}
		return nil
	case AlgorithmEdDSA:
		pub, ok := key.(ed25519.PublicKey)
		if !ok {
			return ErrInvalidAlgorithm
		}
		if !ed25519.Verify(pub, tbsOrHash, signature) {
			return ErrSigVerifyFail
		}
		return nil
	default:
		return fmt.Errorf("%v: %w", alg, ErrAlgorithmNotSupported)
	}
}

func (a stdCryptoAdapter) SigSize(alg Algorithm, key crypto.PublicKey) (int, error) {
	switch alg {
	case AlgorithmPS256, AlgorithmPS384, AlgorithmPS512:
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return 0, ErrInvalidAlgorithm
		}
		return pub.Size(), nil
	case AlgorithmES256, AlgorithmES384, AlgorithmES512:
		pub, ok := key.(*ecdsa.PublicKey)
		if !ok {
			return 0, ErrInvalidAlgorithm
		}
		return 2 * ecdsaFieldSize(pub), nil
	case AlgorithmEdDSA:
		return ed25519.SignatureSize, nil
	default:
		return 0, fmt.Errorf("%v: %w", alg, ErrAlgorithmNotSupported)
	}
}

func ecdsaFieldSize(pub *ecdsa.PublicKey) int {
	bits := pub.Curve.Params().BitSize
	return (bits + 7) / 8
}
