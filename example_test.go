package cose_test

import (
	"crypto"
	"crypto/rand"
	"fmt"

	"github.com/coseforge/go-cose-engine"
)

func ExampleSign1() {
	signer, key, err := cose.NewSignerWithEphemeralKey(cose.AlgorithmES256)
	if err != nil {
		panic(err)
	}
	verifier, err := cose.NewVerifier(cose.AlgorithmES256, key.(crypto.Signer).Public())
	if err != nil {
		panic(err)
	}

	_, wire, err := cose.Sign1(nil, rand.Reader, signer, nil, nil, []byte("hello world"))
	if err != nil {
		panic(err)
	}

	msg, err := cose.Verify1(nil, wire, cose.SingleVerifier{Verifier: verifier}, nil)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(msg.Payload))
	// Output: hello world
}
