package cose

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"hash"
	"io"
	"testing"
)

// countingCryptoAdapter wraps DefaultCryptoAdapter and records how many
// times Sign/Verify were invoked, so tests can confirm an EngineContext's
// CryptoAdapter actually reaches the signing/verification path instead of
// being silently ignored in favor of DefaultCryptoAdapter.
type countingCryptoAdapter struct {
	signs, verifies int
}

func (c *countingCryptoAdapter) Sign(alg Algorithm, key crypto.Signer, rand io.Reader, tbsOrHash []byte) ([]byte, error) {
	c.signs++
	return DefaultCryptoAdapter.Sign(alg, key, rand, tbsOrHash)
}

func (c *countingCryptoAdapter) Verify(alg Algorithm, key crypto.PublicKey, tbsOrHash, signature []byte) error {
	c.verifies++
	return DefaultCryptoAdapter.Verify(alg, key, tbsOrHash, signature)
}

func (c *countingCryptoAdapter) SigSize(alg Algorithm, key crypto.PublicKey) (int, error) {
	return DefaultCryptoAdapter.SigSize(alg, key)
}

func (c *countingCryptoAdapter) HashStart(alg Algorithm) (hash.Hash, error) {
	return DefaultCryptoAdapter.HashStart(alg)
}

func TestStdCryptoAdapter_ECDSA_SignVerify_roundtrip(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	digest, err := AlgorithmES256.computeHash([]byte("message"))
	if err != nil {
		t.Fatalf("computeHash: %v", err)
	}

	adapter := DefaultCryptoAdapter
	sig, err := adapter.Sign(AlgorithmES256, key, rand.Reader, digest)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) != 64 {
		t.Fatalf("expected a 64-byte raw r||s signature, got %d bytes", len(sig))
	}
	if err := adapter.Verify(AlgorithmES256, &key.PublicKey, digest, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	sig[0] ^= 0xff
	if err := adapter.Verify(AlgorithmES256, &key.PublicKey, digest, sig); err == nil {
		t.Fatal("expected tampered signature to fail verification")
	}
}

func TestStdCryptoAdapter_SigSize(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	size, err := DefaultCryptoAdapter.SigSize(AlgorithmES256, &key.PublicKey)
	if err != nil {
		t.Fatalf("SigSize: %v", err)
	}
	if size != 64 {
		t.Fatalf("want 64, got %d", size)
	}
}

func TestStdCryptoAdapter_HashStart(t *testing.T) {
	h, err := DefaultCryptoAdapter.HashStart(AlgorithmES256)
	if err != nil {
		t.Fatalf("HashStart: %v", err)
	}
	if h == nil {
		t.Fatal("expected a non-nil hash.Hash for ES256")
	}

	h, err = DefaultCryptoAdapter.HashStart(AlgorithmEdDSA)
	if err != nil {
		t.Fatalf("HashStart: %v", err)
	}
	if h != nil {
		t.Fatal("expected a nil hash.Hash for EdDSA")
	}
}

func TestStdCryptoAdapter_UnsupportedAlgorithm(t *testing.T) {
	if _, err := DefaultCryptoAdapter.SigSize(Algorithm(-1000), nil); err == nil {
		t.Fatal("expected an error for an unsupported algorithm")
	}
}

// TestEngineContext_CryptoAdapterReachesSignAndVerify confirms C3's
// pluggability is wired end to end: a CryptoAdapter set via
// EngineContext.WithCryptoAdapter is the one Sign1/Verify1 actually invoke,
// not DefaultCryptoAdapter.
func TestEngineContext_CryptoAdapterReachesSignAndVerify(t *testing.T) {
	signer, key, err := NewSignerWithEphemeralKey(AlgorithmES256)
	if err != nil {
		t.Fatalf("NewSignerWithEphemeralKey: %v", err)
	}
	verifier, err := NewVerifier(AlgorithmES256, publicKeyOf(t, key))
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	signAdapter := &countingCryptoAdapter{}
	signCtx := (&EngineContext{}).WithCryptoAdapter(signAdapter)
	_, wire, err := Sign1(signCtx, rand.Reader, signer, nil, nil, []byte("payload"))
	if err != nil {
		t.Fatalf("Sign1: %v", err)
	}
	if signAdapter.signs != 1 {
		t.Fatalf("want 1 Sign call through the EngineContext adapter, got %d", signAdapter.signs)
	}

	verifyAdapter := &countingCryptoAdapter{}
	verifyCtx := (&EngineContext{}).WithCryptoAdapter(verifyAdapter)
	if _, err := Verify1(verifyCtx, wire, SingleVerifier{Verifier: verifier}, nil); err != nil {
		t.Fatalf("Verify1: %v", err)
	}
	if verifyAdapter.verifies != 1 {
		t.Fatalf("want 1 Verify call through the EngineContext adapter, got %d", verifyAdapter.verifies)
	}
}
