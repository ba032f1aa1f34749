package cose

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign1_VerifyRoundtrip(t *testing.T) {
	signer, key, err := NewSignerWithEphemeralKey(AlgorithmES256)
	require.NoError(t, err)
	verifier, err := NewVerifier(AlgorithmES256, publicKeyOf(t, key))
	require.NoError(t, err)

	payload := []byte("hello world")
	_, wire, err := Sign1(nil, rand.Reader, signer, nil, nil, payload)
	require.NoError(t, err)

	msg, err := Verify1(&EngineContext{}, wire, SingleVerifier{Verifier: verifier}, nil)
	require.NoError(t, err)
	assert.Equal(t, payload, msg.Payload)
}

func TestSign1_DetachedPayload(t *testing.T) {
	signer, key, err := NewSignerWithEphemeralKey(AlgorithmEdDSA)
	require.NoError(t, err)
	verifier, err := NewVerifier(AlgorithmEdDSA, publicKeyOf(t, key))
	require.NoError(t, err)

	ctx := &EngineContext{Options: OptDetachedPayload}
	payload := []byte("detached content")
	_, wire, err := Sign1(ctx, rand.Reader, signer, nil, nil, payload)
	require.NoError(t, err)

	_, err = Verify1(ctx, wire, SingleVerifier{Verifier: verifier}, nil)
	assert.ErrorIs(t, err, ErrMissingPayload)

	msg, err := Verify1(ctx, wire, SingleVerifier{Verifier: verifier}, payload)
	require.NoError(t, err)
	assert.Nil(t, msg.Payload)
}

func TestSign1_TagPolicy(t *testing.T) {
	signer, key, err := NewSignerWithEphemeralKey(AlgorithmES256)
	require.NoError(t, err)
	verifier, err := NewVerifier(AlgorithmES256, publicKeyOf(t, key))
	require.NoError(t, err)

	ctx := &EngineContext{Options: OptOmitCBORTag}
	_, wire, err := Sign1(ctx, rand.Reader, signer, nil, nil, []byte("x"))
	require.NoError(t, err)

	_, err = Verify1(&EngineContext{Options: OptTagRequired}, wire, SingleVerifier{Verifier: verifier}, nil)
	assert.ErrorIs(t, err, ErrTagRequired)

	_, err = Verify1(ctx, wire, SingleVerifier{Verifier: verifier}, nil)
	require.NoError(t, err)
}

func TestSign1_DecodeOnly(t *testing.T) {
	signer, _, err := NewSignerWithEphemeralKey(AlgorithmES256)
	require.NoError(t, err)
	_, wire, err := Sign1(nil, rand.Reader, signer, nil, nil, []byte("x"))
	require.NoError(t, err)

	msg, err := Verify1(&EngineContext{Options: OptDecodeOnly}, wire, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), msg.Payload)
}

func TestSign1_WrongVerifierAlgorithm(t *testing.T) {
	signer, _, err := NewSignerWithEphemeralKey(AlgorithmES256)
	require.NoError(t, err)
	_, otherKey, err := NewSignerWithEphemeralKey(AlgorithmEdDSA)
	require.NoError(t, err)
	mismatchedVerifier, err := NewVerifier(AlgorithmEdDSA, publicKeyOf(t, otherKey))
	require.NoError(t, err)

	_, wire, err := Sign1(nil, rand.Reader, signer, nil, nil, []byte("x"))
	require.NoError(t, err)

	_, err = Verify1(nil, wire, SingleVerifier{Verifier: mismatchedVerifier}, nil)
	assert.ErrorContains(t, err, ErrNoVerifierForAlg.Error())
}

func TestSign1_NoResolver(t *testing.T) {
	signer, _, err := NewSignerWithEphemeralKey(AlgorithmES256)
	require.NoError(t, err)
	_, wire, err := Sign1(nil, rand.Reader, signer, nil, nil, []byte("x"))
	require.NoError(t, err)

	_, err = Verify1(nil, wire, nil, nil)
	assert.ErrorContains(t, err, ErrNoVerifierForAlg.Error())
}
