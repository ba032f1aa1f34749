package cose

import "github.com/fxamacker/cbor/v2"

// CBOR Tags for COSE signatures registered in the IANA "CBOR Tags" registry.
//
// Reference: https://www.iana.org/assignments/cbor-tags/cbor-tags.xhtml#tags
const (
	CBORTagSignMessage  = 98
	CBORTagSign1Message = 18
)

// Pre-configured modes for CBOR encoding and decoding.
//
// Two encode modes exist because deterministic (canonical) map-key ordering
// per RFC 8949 4.2 is opt-in (CANONICAL_ENCODING), not the default: Go map
// iteration order is randomized, so without the Sort option two encodes of
// the same caller-built header map are not byte-identical. Requesting
// CANONICAL_ENCODING is what gives callers the "two invocations yield
// byte-identical output" property; the default mode makes no such promise.
var (
	encModeCanonical cbor.EncMode
	encModeDefault   cbor.EncMode

	decMode              cbor.DecMode
	decModeTagsForbidden cbor.DecMode
)

func init() {
	var err error

	canonicalOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}
	encModeCanonical, err = canonicalOpts.EncMode()
	if err != nil {
		panic(err)
	}

	defaultOpts := cbor.EncOptions{
		Sort:        cbor.SortNone,
		IndefLength: cbor.IndefLengthForbidden,
	}
	encModeDefault, err = defaultOpts.EncMode()
	if err != nil {
		panic(err)
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF, // duplicated key not allowed
		IndefLength: cbor.IndefLengthForbidden,  // no streaming
		IntDec:      cbor.IntDecConvertSigned,   // decode CBOR uint/int to Go int64
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(err)
	}

	decOpts.TagsMd = cbor.TagsForbidden
	decModeTagsForbidden, err = decOpts.DecMode()
	if err != nil {
		panic(err)
	}
}
