package cose

import "github.com/fxamacker/cbor/v2"

// sigStructureContext identifies which of the two Sig_structure shapes is
// being built, per RFC 9052 4.4.
type sigStructureContext string

const (
	contextSignature1 sigStructureContext = "Signature1"
	contextSignature  sigStructureContext = "Signature"
)

// tbsBuilder assembles and encodes the canonical Sig_structure (the "to be
// signed" bytes) described in spec 4.2. It is the one place the wire layout
// of the array that gets signed is defined.
type tbsBuilder struct {
	enc cbor.EncMode
}

func newTBSBuilder(enc cbor.EncMode) *tbsBuilder {
	return &tbsBuilder{enc: enc}
}

// buildSign1 builds the 4-element Sig_structure used by COSE_Sign1:
//
//	Sig_structure = [
//	    "Signature1",
//	    body_protected : bstr,
//	    external_aad   : bstr,
//	    payload        : bstr
//	]
func (b *tbsBuilder) buildSign1(bodyProtected, externalAAD, payload []byte) ([]byte, error) {
	return b.marshal([]any{
		string(contextSignature1),
		cbor.RawMessage(orEmpty(bodyProtected)),
		orEmpty(externalAAD),
		orEmpty(payload),
	})
}

// buildSign builds the 5-element Sig_structure used by a COSE_Signature
// inside a COSE_Sign:
//
//	Sig_structure = [
//	    "Signature",
//	    body_protected : bstr,
//	    sign_protected : bstr,
//	    external_aad   : bstr,
//	    payload        : bstr
//	]
func (b *tbsBuilder) buildSign(bodyProtected, signProtected, externalAAD, payload []byte) ([]byte, error) {
	return b.marshal([]any{
		string(contextSignature),
		cbor.RawMessage(orEmpty(bodyProtected)),
		cbor.RawMessage(orEmpty(signProtected)),
		orEmpty(externalAAD),
		orEmpty(payload),
	})
}

func (b *tbsBuilder) marshal(sigStructure []any) ([]byte, error) {
	tbs, err := b.enc.Marshal(sigStructure)
	if err != nil {
		return nil, err
	}
	return tbs, nil
}

func orEmpty(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// digestOrTBS hashes tbs with the algorithm's associated hash function
// (ECDSA, RSA-PSS, and SHA-256 for the short-circuit test algorithm), or
// returns tbs unchanged for the hash-less EdDSA, per spec 4.2.
func digestOrTBS(alg Algorithm, tbs []byte) ([]byte, error) {
	h := alg.hashFunc()
	if h == 0 {
		return tbs, nil
	}
	return computeHash(h, tbs)
}
