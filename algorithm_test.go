package cose

import (
	"crypto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithm_String(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		want string
	}{
		{AlgorithmES256, "ES256"},
		{AlgorithmPS384, "PS384"},
		{AlgorithmEdDSA, "EdDSA"},
		{AlgorithmReserved, "Reserved"},
		{AlgorithmReservedShortCircuit, "ReservedShortCircuit"},
		{Algorithm(12345), "Algorithm(12345)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.alg.String())
	}
}

func TestAlgorithm_hashFunc(t *testing.T) {
	assert.Equal(t, crypto.SHA256, AlgorithmES256.hashFunc())
	assert.Equal(t, crypto.SHA384, AlgorithmPS384.hashFunc())
	assert.Equal(t, crypto.SHA512, AlgorithmPS512.hashFunc())
	assert.Equal(t, crypto.Hash(0), AlgorithmEdDSA.hashFunc())
	assert.Equal(t, crypto.SHA256, AlgorithmReservedShortCircuit.hashFunc())
}

func TestAlgorithm_computeHash(t *testing.T) {
	digest, err := AlgorithmES256.computeHash([]byte("hello"))
	require.NoError(t, err)
	assert.Len(t, digest, 32)

	// EdDSA has no associated hash; computeHash hashes with crypto.Hash(0),
	// which is unavailable and surfaces as an error.
	_, err = AlgorithmEdDSA.computeHash([]byte("hello"))
	assert.ErrorIs(t, err, ErrUnavailableHashFunc)
}
