package cose

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
)

func TestRSASignerVerifier_roundtrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	signer := &rsaSigner{alg: AlgorithmPS256, key: key}
	verifier := &rsaVerifier{alg: AlgorithmPS256, key: &key.PublicKey}

	digest, err := AlgorithmPS256.computeHash([]byte("message"))
	if err != nil {
		t.Fatalf("computeHash: %v", err)
	}
	sig, err := signer.Sign(rand.Reader, digest)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := verifier.Verify([]byte("message"), sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := verifier.Verify([]byte("tampered"), sig); err == nil {
		t.Fatal("expected verification to fail for a different message")
	}
}

func TestRSASignerVerifier_customAdapter(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	adapter := stdCryptoAdapter{}
	signer := &rsaSigner{alg: AlgorithmPS384, key: key, adapter: adapter}
	verifier := &rsaVerifier{alg: AlgorithmPS384, key: &key.PublicKey, adapter: adapter}

	digest, err := AlgorithmPS384.computeHash([]byte("message"))
	if err != nil {
		t.Fatalf("computeHash: %v", err)
	}
	sig, err := signer.Sign(rand.Reader, digest)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := verifier.Verify([]byte("message"), sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if signer.Algorithm() != AlgorithmPS384 {
		t.Fatalf("Algorithm() = %v, want %v", signer.Algorithm(), AlgorithmPS384)
	}
	if verifier.Algorithm() != AlgorithmPS384 {
		t.Fatalf("Algorithm() = %v, want %v", verifier.Algorithm(), AlgorithmPS384)
	}
}
