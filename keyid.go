package cose

import "bytes"

// KeyIDResolver picks the Verifier to use for a decoded `alg`/`kid` pair,
// resolving spec 9's open question about kid handling during verification.
// Several concrete strategies are provided; callers needing something else
// can implement the interface directly.
type KeyIDResolver interface {
	// Resolve returns the Verifier registered for alg/kid, or an error if
	// none matches (ErrKIDUnmatched or ErrNoVerifierForAlg for the
	// strategies in this file).
	Resolve(alg Algorithm, kid []byte) (Verifier, error)
}

// KeyIDResolverFunc adapts a function to KeyIDResolver.
type KeyIDResolverFunc func(alg Algorithm, kid []byte) (Verifier, error)

// Resolve calls f.
func (f KeyIDResolverFunc) Resolve(alg Algorithm, kid []byte) (Verifier, error) {
	return f(alg, kid)
}

// ExactKeyID resolves to a single Verifier, requiring the decoded kid (if
// present) to equal Want exactly. Used for the common single-key case.
type ExactKeyID struct {
	Want     []byte
	Verifier Verifier
}

// Resolve implements KeyIDResolver.
func (e ExactKeyID) Resolve(alg Algorithm, kid []byte) (Verifier, error) {
	if len(e.Want) > 0 && len(kid) > 0 && !bytes.Equal(kid, e.Want) {
		return nil, ErrKIDUnmatched
	}
	return e.Verifier, nil
}

// KeyIDRegistry resolves by exact-match lookup in a map, the multi-key
// case: many verifiers, selected by the `kid` header parameter.
type KeyIDRegistry map[string]Verifier

// Resolve implements KeyIDResolver.
func (r KeyIDRegistry) Resolve(alg Algorithm, kid []byte) (Verifier, error) {
	v, ok := r[string(kid)]
	if !ok {
		return nil, ErrKIDUnmatched
	}
	return v, nil
}

// SingleVerifier adapts one fixed Verifier to KeyIDResolver, accepting any
// kid. Used when the caller has exactly one verification key and has no use
// for kid-based dispatch.
type SingleVerifier struct {
	Verifier Verifier
}

// Resolve implements KeyIDResolver.
func (s SingleVerifier) Resolve(alg Algorithm, kid []byte) (Verifier, error) {
	if s.Verifier == nil {
		return nil, errDeclined
	}
	return s.Verifier, nil
}

// VerifierChain dispatches by matching the message's `alg` header against
// each Verifier's own Algorithm in order, the chain-walk dispatch described
// in spec 4.6: the first entry that accepts the algorithm wins.
type VerifierChain []Verifier

// Resolve implements KeyIDResolver.
func (c VerifierChain) Resolve(alg Algorithm, kid []byte) (Verifier, error) {
	for _, v := range c {
		if v != nil && v.Algorithm() == alg {
			return v, nil
		}
	}
	return nil, ErrNoVerifierForAlg
}
