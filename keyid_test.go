package cose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	alg Algorithm
}

func (s stubVerifier) Algorithm() Algorithm                { return s.alg }
func (s stubVerifier) Verify(content, signature []byte) error { return nil }

func TestExactKeyID(t *testing.T) {
	v := stubVerifier{alg: AlgorithmES256}
	r := ExactKeyID{Want: []byte("k1"), Verifier: v}

	got, err := r.Resolve(AlgorithmES256, []byte("k1"))
	assert.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = r.Resolve(AlgorithmES256, []byte("other"))
	assert.ErrorIs(t, err, ErrKIDUnmatched)

	// no kid presented: no check performed.
	got, err = r.Resolve(AlgorithmES256, nil)
	assert.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestKeyIDRegistry(t *testing.T) {
	v1 := stubVerifier{alg: AlgorithmES256}
	v2 := stubVerifier{alg: AlgorithmEdDSA}
	reg := KeyIDRegistry{"k1": v1, "k2": v2}

	got, err := reg.Resolve(AlgorithmES256, []byte("k1"))
	assert.NoError(t, err)
	assert.Equal(t, v1, got)

	_, err = reg.Resolve(AlgorithmES256, []byte("missing"))
	assert.ErrorIs(t, err, ErrKIDUnmatched)
}

func TestVerifierChain(t *testing.T) {
	v1 := stubVerifier{alg: AlgorithmES256}
	v2 := stubVerifier{alg: AlgorithmEdDSA}
	chain := VerifierChain{v1, v2}

	got, err := chain.Resolve(AlgorithmEdDSA, nil)
	assert.NoError(t, err)
	assert.Equal(t, v2, got)

	_, err = chain.Resolve(AlgorithmPS256, nil)
	assert.ErrorIs(t, err, ErrNoVerifierForAlg)
}
