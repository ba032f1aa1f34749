package cose

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// signatureWire represents the on-the-wire COSE_Signature array.
//
//	COSE_Signature =  [
//	    Headers,
//	    signature : bstr
//	]
//
// Reference: https://www.rfc-editor.org/rfc/rfc9052#section-4.1
type signatureWire struct {
	_           struct{} `cbor:",toarray"`
	Protected   cbor.RawMessage
	Unprotected cbor.RawMessage
	Signature   []byte
}

// Signature is one decoded entry of a COSE_Sign message's signatures array.
type Signature struct {
	Headers   Headers
	Signature []byte
}

// signWire represents the on-the-wire COSE_Sign array.
//
//	COSE_Sign = [
//	    Headers,
//	    payload : bstr / nil,
//	    signatures : [+ COSE_Signature]
//	]
//
// Reference: https://www.rfc-editor.org/rfc/rfc9052#section-4.1
type signWire struct {
	_           struct{} `cbor:",toarray"`
	Protected   cbor.RawMessage
	Unprotected cbor.RawMessage
	Payload     []byte
	Signatures  []cbor.RawMessage
}

// SignMessage is a decoded COSE_Sign message: a body headers pair shared by
// every signer, a payload, and one COSE_Signature per signer.
//
// Reference: https://www.rfc-editor.org/rfc/rfc9052#section-4.1
type SignMessage struct {
	Headers    Headers
	Payload    []byte
	Signatures []*Signature
}

// NewSignMessage returns a SignMessage with the body headers initialized to
// empty maps.
func NewSignMessage() *SignMessage {
	return &SignMessage{
		Headers: Headers{
			Protected:   ProtectedHeader{},
			Unprotected: UnprotectedHeader{},
		},
	}
}

// SignerEntry pairs a Signer with the per-signature header buckets it signs
// under, one per signature in a multi-signer COSE_Sign message.
type SignerEntry struct {
	Signer      Signer
	Protected   ProtectedHeader
	Unprotected UnprotectedHeader
}

// Sign runs the Sign Engine pipeline for COSE_Sign (spec 4.5's multi-signer
// form): the body_protected bytes are shared across every COSE_Signature's
// Sig_structure, but each signer hashes and signs independently.
func Sign(ctx *EngineContext, rnd io.Reader, bodyProtected ProtectedHeader, bodyUnprotected UnprotectedHeader, payload []byte, entries []SignerEntry) (*SignMessage, []byte, error) {
	if ctx == nil {
		ctx = &EngineContext{}
	}
	if len(entries) == 0 {
		return nil, nil, ErrNoSignatures
	}
	if bodyProtected == nil {
		bodyProtected = ProtectedHeader{}
	}
	if bodyUnprotected == nil {
		bodyUnprotected = UnprotectedHeader{}
	}

	msg := &SignMessage{
		Headers: Headers{Protected: bodyProtected, Unprotected: bodyUnprotected},
		Payload: payload,
	}
	if err := checkNoDuplicateAcrossBuckets(&msg.Headers); err != nil {
		return nil, nil, err
	}

	encodedBodyProtected, err := msg.Headers.EncodeProtected(ctx.encMode())
	if err != nil {
		return nil, nil, err
	}

	signatureWires := make([]cbor.RawMessage, 0, len(entries))
	msg.Signatures = make([]*Signature, 0, len(entries))
	for _, entry := range entries {
		sigProtected := entry.Protected
		if sigProtected == nil {
			sigProtected = ProtectedHeader{}
		}
		sigUnprotected := entry.Unprotected
		if sigUnprotected == nil {
			sigUnprotected = UnprotectedHeader{}
		}

		skAlg := entry.Signer.Algorithm()
		if alg, err := sigProtected.Algorithm(); err != nil {
			if err != ErrAlgorithmNotFound {
				return nil, nil, err
			}
			sigProtected.SetAlgorithm(skAlg)
		} else if alg != skAlg {
			return nil, nil, fmt.Errorf("%w: signer %v: header %v", ErrAlgorithmMismatch, skAlg, alg)
		}

		sigHeaders := Headers{Protected: sigProtected, Unprotected: sigUnprotected}
		if err := checkNoDuplicateAcrossBuckets(&sigHeaders); err != nil {
			return nil, nil, err
		}
		if err := checkAlgorithmProtected(&sigHeaders); err != nil {
			return nil, nil, err
		}

		encodedSigProtected, err := sigHeaders.EncodeProtected(ctx.encMode())
		if err != nil {
			return nil, nil, err
		}
		tbs, err := newTBSBuilder(ctx.encMode()).buildSign(encodedBodyProtected, encodedSigProtected, ctx.ExternalAAD, orEmpty(payload))
		if err != nil {
			return nil, nil, err
		}
		digest, err := digestOrTBS(skAlg, tbs)
		if err != nil {
			return nil, nil, err
		}
		applyCryptoAdapter(entry.Signer, ctx.cryptoAdapter())
		sig, err := entry.Signer.Sign(rnd, digest)
		if err != nil {
			return nil, nil, err
		}

		encodedSigUnprotected, err := sigHeaders.EncodeUnprotected(ctx.encMode())
		if err != nil {
			return nil, nil, err
		}
		wireSig := signatureWire{
			Protected:   encodedSigProtected,
			Unprotected: encodedSigUnprotected,
			Signature:   sig,
		}
		encodedWireSig, err := ctx.encMode().Marshal(wireSig)
		if err != nil {
			return nil, nil, err
		}
		signatureWires = append(signatureWires, encodedWireSig)
		msg.Signatures = append(msg.Signatures, &Signature{Headers: sigHeaders, Signature: sig})
	}

	encodedBodyUnprotected, err := msg.Headers.EncodeUnprotected(ctx.encMode())
	if err != nil {
		return nil, nil, err
	}
	wire := signWire{
		Protected:   encodedBodyProtected,
		Unprotected: encodedBodyUnprotected,
		Payload:     payload,
		Signatures:  signatureWires,
	}

	var out []byte
	if ctx.Options.Has(OptOmitCBORTag) {
		out, err = ctx.encMode().Marshal(wire)
	} else {
		out, err = ctx.encMode().Marshal(cbor.Tag{Number: CBORTagSignMessage, Content: wire})
	}
	if err != nil {
		return nil, nil, err
	}
	return msg, out, nil
}

// Verify runs the Verify Engine pipeline for COSE_Sign: every signature is
// checked against resolver, and the outcome is governed by
// OptRequireAllSignaturesValid (default: at least one signature must
// validate).
func Verify(ctx *EngineContext, data []byte, resolver KeyIDResolver) (*SignMessage, error) {
	if ctx == nil {
		ctx = &EngineContext{}
	}

	raw, tagged, err := decodeSignWire(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Options.tagPolicy(tagged); err != nil {
		return nil, err
	}
	if len(raw.Signatures) == 0 {
		return nil, ErrNoSignatures
	}

	bodyProtected, err := UnmarshalCBORProtected(raw.Protected, ctx.Options.Has(OptStrictHeaderDecoding))
	if err != nil {
		return nil, err
	}
	bodyUnprotected, err := UnmarshalCBORUnprotected(raw.Unprotected)
	if err != nil {
		return nil, err
	}
	msg := &SignMessage{
		Headers: Headers{
			RawProtected:   raw.Protected,
			Protected:      bodyProtected,
			RawUnprotected: raw.Unprotected,
			Unprotected:    bodyUnprotected,
		},
		Payload: raw.Payload,
	}
	if err := checkNoDuplicateAcrossBuckets(&msg.Headers); err != nil {
		return nil, err
	}

	validCount := 0
	msg.Signatures = make([]*Signature, 0, len(raw.Signatures))
	for _, rawSig := range raw.Signatures {
		var wireSig signatureWire
		if err := decMode.Unmarshal(rawSig, &wireSig); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSignFormat, err)
		}
		sigProtected, err := UnmarshalCBORProtected(wireSig.Protected, ctx.Options.Has(OptStrictHeaderDecoding))
		if err != nil {
			return nil, err
		}
		sigUnprotected, err := UnmarshalCBORUnprotected(wireSig.Unprotected)
		if err != nil {
			return nil, err
		}
		sigHeaders := Headers{
			RawProtected:   wireSig.Protected,
			Protected:      sigProtected,
			RawUnprotected: wireSig.Unprotected,
			Unprotected:    sigUnprotected,
		}
		if err := checkNoDuplicateAcrossBuckets(&sigHeaders); err != nil {
			return nil, err
		}
		if err := checkAlgorithmProtected(&sigHeaders); err != nil {
			return nil, err
		}
		sig := &Signature{Headers: sigHeaders, Signature: wireSig.Signature}
		msg.Signatures = append(msg.Signatures, sig)

		if ctx.Options.Has(OptDecodeOnly) {
			continue
		}

		alg, err := sigProtected.Algorithm()
		if err != nil {
			return nil, err
		}
		var kid []byte
		if v, ok := sigUnprotected[HeaderLabelKeyID]; ok {
			if b, ok := v.([]byte); ok {
				kid = b
			}
		}
		verifier, err := resolver.Resolve(alg, kid)
		if err != nil || verifier == nil || verifier.Algorithm() != alg {
			if ctx.Options.Has(OptRequireAllSignaturesValid) {
				return nil, wrapDispatchFailure(ErrNoVerifierForAlg)
			}
			continue
		}

		tbs, err := newTBSBuilder(ctx.encMode()).buildSign(orEmpty(raw.Protected), orEmpty(wireSig.Protected), ctx.ExternalAAD, orEmpty(raw.Payload))
		if err != nil {
			return nil, err
		}
		digest, err := digestOrTBS(alg, tbs)
		if err != nil {
			return nil, err
		}
		dv, ok := verifier.(DigestVerifier)
		if ok {
			applyCryptoAdapter(verifier, ctx.cryptoAdapter())
		}
		if !ok || dv.VerifyDigest(digest, sig.Signature) != nil {
			if ctx.Options.Has(OptRequireAllSignaturesValid) {
				return nil, ErrSigVerifyFail
			}
			continue
		}
		validCount++
	}

	if ctx.Options.Has(OptDecodeOnly) {
		return msg, nil
	}
	if ctx.Options.Has(OptRequireAllSignaturesValid) {
		if validCount != len(raw.Signatures) {
			return nil, ErrSigVerifyFail
		}
		return msg, nil
	}
	if validCount == 0 {
		return nil, ErrSigVerifyFail
	}
	return msg, nil
}

// decodeSignWire accepts both the tagged (#6.98) and untagged forms of
// COSE_Sign, reporting which form was used.
func decodeSignWire(data []byte) (*signWire, bool, error) {
	var rawTag cbor.RawTag
	if err := decMode.Unmarshal(data, &rawTag); err == nil {
		if rawTag.Number != CBORTagSignMessage {
			return nil, false, fmt.Errorf("%w: unexpected CBOR tag %d", ErrSignFormat, rawTag.Number)
		}
		var wire signWire
		if err := decMode.Unmarshal(rawTag.Content, &wire); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrCBORDecode, err)
		}
		return &wire, true, nil
	}
	var wire signWire
	if err := decMode.Unmarshal(data, &wire); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrSignFormat, err)
	}
	return &wire, false, nil
}
