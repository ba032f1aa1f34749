package cose

import "github.com/fxamacker/cbor/v2"

// OptionFlag is a single bit in the caller-supplied option-flag word that
// configures a Sign or Verify operation (spec 5, 6). It is a bitmask type
// so flags compose with bitwise OR, the way the source's C option word did.
type OptionFlag uint32

const (
	// OptShortCircuitSign names the short-circuit test mode. The engines do
	// not read this flag: the short-circuit path is selected by signing and
	// verifying with NewShortCircuitSigner/NewShortCircuitVerifier, which
	// only work in binaries built with the cose_shortcircuit tag.
	OptShortCircuitSign OptionFlag = 1 << iota

	// OptOmitCBORTag skips emitting the CBOR tag (18 or 98) around the
	// message array.
	OptOmitCBORTag

	// OptTagRequired fails verification of an untagged message.
	// Mutually exclusive with OptTagProhibited; at most one may be set,
	// the absence of both means OPTIONAL (either form accepted).
	OptTagRequired

	// OptTagProhibited fails verification of a tagged message.
	OptTagProhibited

	// OptDetachedPayload signals that the payload is conveyed out of band:
	// in Sign1, the serialized payload slot is CBOR nil; in Verify1, the
	// payload must be supplied through its externalPayload argument.
	// Sign and Verify (COSE_Sign) do not read this flag and always carry
	// the payload inside the message.
	OptDetachedPayload

	// OptDecodeOnly skips the cryptographic verification step once
	// structure and headers have been validated, returning success without
	// checking the signature. Intended for inspection tooling, never for
	// trust decisions.
	OptDecodeOnly

	// OptRequireAllSignaturesValid changes the COSE_Sign verify policy from
	// "at least one signature validates" to "every signature must validate".
	OptRequireAllSignaturesValid

	// OptCanonicalEncoding requests RFC 8949 4.2 deterministic map-key
	// ordering. Without it, Go's randomized map iteration means repeated
	// encodes of the same logical headers are not byte-identical.
	OptCanonicalEncoding

	// OptStrictHeaderDecoding rejects the legacy h'a0' (empty map) encoding
	// of an empty protected header; only the zero-length bstr form is
	// accepted.
	OptStrictHeaderDecoding
)

// Has reports whether flag is set in o.
func (o OptionFlag) Has(flag OptionFlag) bool { return o&flag != 0 }

// encMode returns the CBOR encode mode matching the CANONICAL_ENCODING
// option.
func (o OptionFlag) encMode() cbor.EncMode {
	if o.Has(OptCanonicalEncoding) {
		return encModeCanonical
	}
	return encModeDefault
}

// tagPolicy validates a decoded tag presence against the TAG_* flags.
func (o OptionFlag) tagPolicy(tagged bool) error {
	switch {
	case o.Has(OptTagRequired) && o.Has(OptTagProhibited):
		// caller error: both set. Treat as OPTIONAL rather than panic, the
		// engine never panics on caller-supplied option combinations.
		return nil
	case o.Has(OptTagRequired) && !tagged:
		return ErrTagRequired
	case o.Has(OptTagProhibited) && tagged:
		return ErrTagProhibited
	default:
		return nil
	}
}

// EngineContext owns everything a single Sign or Verify call needs: the
// option word, the caller-supplied AAD, and the fixed-capacity buffers the
// engine borrows for the duration of the call (spec 3 "Engine context",
// spec 5 "Shared resources"). It is created per operation and must not be
// reused concurrently across goroutines while a call is in flight.
type EngineContext struct {
	Options OptionFlag

	// ExternalAAD is covered by the signature but never transmitted.
	ExternalAAD []byte

	// CriticalReader offers unknown `crit` labels to the caller before
	// failing with ErrUnknownCriticalParameter.
	CriticalReader CriticalParameterReader

	// Params is the fixed-capacity pool the Verify Engine decodes header
	// parameters into. If nil, a pool sized for 16 parameters is used.
	Params *ParameterPool

	adapter CryptoAdapter
}

// cryptoAdapter returns the configured CryptoAdapter, defaulting to
// DefaultCryptoAdapter.
func (c *EngineContext) cryptoAdapter() CryptoAdapter {
	if c.adapter != nil {
		return c.adapter
	}
	return DefaultCryptoAdapter
}

// WithCryptoAdapter overrides the CryptoAdapter used by this context, for
// callers plugging in an HSM or remote KMS backend.
func (c *EngineContext) WithCryptoAdapter(a CryptoAdapter) *EngineContext {
	c.adapter = a
	return c
}

func (c *EngineContext) encMode() cbor.EncMode {
	return c.Options.encMode()
}

func (c *EngineContext) params() *ParameterPool {
	if c.Params == nil {
		c.Params = NewParameterPool(16)
	}
	return c.Params
}
