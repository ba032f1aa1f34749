package cose

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// sign1Wire represents the on-the-wire COSE_Sign1 array.
//
//	COSE_Sign1 = [
//	    Headers,
//	    payload : bstr / nil,
//	    signature : bstr
//	]
//
// Reference: https://www.rfc-editor.org/rfc/rfc9052#section-4.2
type sign1Wire struct {
	_           struct{} `cbor:",toarray"`
	Protected   cbor.RawMessage
	Unprotected cbor.RawMessage
	Payload     []byte
	Signature   []byte
}

// Sign1Message is a decoded COSE_Sign1 message: a single signer, payload
// either embedded or detached, and a flat headers pair.
//
// Reference: https://www.rfc-editor.org/rfc/rfc9052#section-4.2
type Sign1Message struct {
	Headers   Headers
	Payload   []byte
	Signature []byte
}

// NewSign1Message returns a Sign1Message with both header buckets
// initialized to empty maps.
func NewSign1Message() *Sign1Message {
	return &Sign1Message{
		Headers: Headers{
			Protected:   ProtectedHeader{},
			Unprotected: UnprotectedHeader{},
		},
	}
}

// Sign1 runs the full Sign Engine pipeline for COSE_Sign1 (spec 4.5):
// merge any header parameters the signer contributes, build and hash the
// Sig_structure, invoke the signer, then emit the finished wire bytes.
// ctx controls tagging, detached-payload, and encoding options; a nil ctx uses the zero-value EngineContext (tagged, embedded
// payload, default encoding).
func Sign1(ctx *EngineContext, rnd io.Reader, signer Signer, protected ProtectedHeader, unprotected UnprotectedHeader, payload []byte) (*Sign1Message, []byte, error) {
	if ctx == nil {
		ctx = &EngineContext{}
	}
	if protected == nil {
		protected = ProtectedHeader{}
	}
	if unprotected == nil {
		unprotected = UnprotectedHeader{}
	}

	skAlg := signer.Algorithm()
	if alg, err := protected.Algorithm(); err != nil {
		if err != ErrAlgorithmNotFound {
			return nil, nil, err
		}
		protected.SetAlgorithm(skAlg)
	} else if alg != skAlg {
		return nil, nil, fmt.Errorf("%w: signer %v: header %v", ErrAlgorithmMismatch, skAlg, alg)
	}

	msg := &Sign1Message{
		Headers: Headers{Protected: protected, Unprotected: unprotected},
		Payload: payload,
	}
	if err := checkNoDuplicateAcrossBuckets(&msg.Headers); err != nil {
		return nil, nil, err
	}
	if err := checkAlgorithmProtected(&msg.Headers); err != nil {
		return nil, nil, err
	}
	if err := checkCriticalProtectedOnly(&msg.Headers); err != nil {
		return nil, nil, err
	}

	encodedProtected, err := msg.Headers.EncodeProtected(ctx.encMode())
	if err != nil {
		return nil, nil, err
	}

	wirePayload := payload
	tbsPayload := orEmpty(payload)
	if ctx.Options.Has(OptDetachedPayload) {
		wirePayload = nil
	}

	tbs, err := newTBSBuilder(ctx.encMode()).buildSign1(encodedProtected, ctx.ExternalAAD, tbsPayload)
	if err != nil {
		return nil, nil, err
	}
	digest, err := digestOrTBS(skAlg, tbs)
	if err != nil {
		return nil, nil, err
	}

	applyCryptoAdapter(signer, ctx.cryptoAdapter())
	sig, err := signer.Sign(rnd, digest)
	if err != nil {
		return nil, nil, err
	}
	msg.Signature = sig

	encodedUnprotected, err := msg.Headers.EncodeUnprotected(ctx.encMode())
	if err != nil {
		return nil, nil, err
	}
	wire := sign1Wire{
		Protected:   encodedProtected,
		Unprotected: encodedUnprotected,
		Payload:     wirePayload,
		Signature:   sig,
	}

	var out []byte
	if ctx.Options.Has(OptOmitCBORTag) {
		out, err = ctx.encMode().Marshal(wire)
	} else {
		out, err = ctx.encMode().Marshal(cbor.Tag{Number: CBORTagSign1Message, Content: wire})
	}
	if err != nil {
		return nil, nil, err
	}
	return msg, out, nil
}

// Verify1 runs the full Verify Engine pipeline for COSE_Sign1 (spec 4.6):
// decode the wire bytes, enforce tag policy and header invariants, resolve
// a Verifier via resolver using the decoded kid (if any), and check the
// signature unless OptDecodeOnly is set.
func Verify1(ctx *EngineContext, data []byte, resolver KeyIDResolver, externalPayload []byte) (*Sign1Message, error) {
	if ctx == nil {
		ctx = &EngineContext{}
	}

	raw, tagged, err := decodeSign1Wire(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Options.tagPolicy(tagged); err != nil {
		return nil, err
	}

	protected, err := UnmarshalCBORProtected(raw.Protected, ctx.Options.Has(OptStrictHeaderDecoding))
	if err != nil {
		return nil, err
	}
	unprotected, err := UnmarshalCBORUnprotected(raw.Unprotected)
	if err != nil {
		return nil, err
	}
	msg := &Sign1Message{
		Headers: Headers{
			RawProtected:   raw.Protected,
			Protected:      protected,
			RawUnprotected: raw.Unprotected,
			Unprotected:    unprotected,
		},
		Payload:   raw.Payload,
		Signature: raw.Signature,
	}
	if len(msg.Signature) == 0 {
		return nil, ErrSign1Format
	}
	if err := checkNoDuplicateAcrossBuckets(&msg.Headers); err != nil {
		return nil, err
	}
	if err := checkAlgorithmProtected(&msg.Headers); err != nil {
		return nil, err
	}
	if err := checkCriticalProtectedOnly(&msg.Headers); err != nil {
		return nil, err
	}
	if err := checkCriticality(protected, ctx.CriticalReader); err != nil {
		return nil, err
	}
	// An exhausted parameter pool is not fatal: the parameters that did not
	// fit are simply not stored.
	if err := ctx.params().fillFromHeaders(&msg.Headers); err != nil && err != ErrTooManyParameters {
		return nil, err
	}

	alg, err := protected.Algorithm()
	if err != nil {
		return nil, err
	}

	payload := msg.Payload
	if ctx.Options.Has(OptDetachedPayload) {
		if len(externalPayload) == 0 {
			return nil, ErrMissingPayload
		}
		payload = externalPayload
	}

	if ctx.Options.Has(OptDecodeOnly) {
		return msg, nil
	}

	if resolver == nil {
		return nil, wrapDispatchFailure(ErrNoVerifierForAlg)
	}
	var kid []byte
	if v, ok := unprotected[HeaderLabelKeyID]; ok {
		if b, ok := v.([]byte); ok {
			kid = b
		}
	}
	verifier, err := resolver.Resolve(alg, kid)
	if err != nil && err != errDeclined {
		return nil, err
	}
	if err != nil || verifier == nil || verifier.Algorithm() != alg {
		return nil, wrapDispatchFailure(ErrNoVerifierForAlg)
	}

	tbs, err := newTBSBuilder(ctx.encMode()).buildSign1(orEmpty(raw.Protected), ctx.ExternalAAD, orEmpty(payload))
	if err != nil {
		return nil, err
	}
	digest, err := digestOrTBS(alg, tbs)
	if err != nil {
		return nil, err
	}
	dv, ok := verifier.(DigestVerifier)
	if !ok {
		return nil, fmt.Errorf("%w: verifier does not implement DigestVerifier", ErrInvalidAlgorithm)
	}
	applyCryptoAdapter(verifier, ctx.cryptoAdapter())
	if err := dv.VerifyDigest(digest, msg.Signature); err != nil {
		return nil, ErrSigVerifyFail
	}
	return msg, nil
}

// decodeSign1Wire accepts both the tagged (#6.18) and untagged forms of
// COSE_Sign1, reporting which form was used.
func decodeSign1Wire(data []byte) (*sign1Wire, bool, error) {
	var rawTag cbor.RawTag
	if err := decMode.Unmarshal(data, &rawTag); err == nil {
		if rawTag.Number != CBORTagSign1Message {
			return nil, false, fmt.Errorf("%w: unexpected CBOR tag %d", ErrSign1Format, rawTag.Number)
		}
		var wire sign1Wire
		if err := decMode.Unmarshal(rawTag.Content, &wire); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrCBORDecode, err)
		}
		return &wire, true, nil
	}
	var wire sign1Wire
	if err := decMode.Unmarshal(data, &wire); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrSign1Format, err)
	}
	return &wire, false, nil
}
