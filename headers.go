package cose

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// COSE Header labels registered in the IANA "COSE Header Parameters"
// registry that this core recognizes by integer.
//
// Reference: https://www.iana.org/assignments/cose/cose.xhtml#header-parameters
const (
	HeaderLabelAlgorithm   int64 = 1
	HeaderLabelCritical    int64 = 2
	HeaderLabelContentType int64 = 3
	HeaderLabelKeyID       int64 = 4
	HeaderLabelIV          int64 = 5
)

// knownLabels is the set of integer labels the engine understands natively.
// A label listed in `crit` that is not in this set, and not accepted by a
// caller-supplied CriticalParameterReader, fails with
// ErrUnknownCriticalParameter.
var knownLabels = map[int64]struct{}{
	HeaderLabelAlgorithm:   {},
	HeaderLabelCritical:    {},
	HeaderLabelContentType: {},
	HeaderLabelKeyID:       {},
	HeaderLabelIV:          {},
}

// CriticalParameterReader lets a caller teach the engine about additional
// labels it is willing to treat as understood when they appear in `crit`.
// Only labels this callback declines (returns false) cause verification to
// fail with ErrUnknownCriticalParameter.
type CriticalParameterReader func(label any) bool

// ProtectedHeader contains parameters that are cryptographically protected:
// they are serialized into the Sig_structure and covered by the signature.
type ProtectedHeader map[any]any

// MarshalCBOR encodes the protected header into a CBOR bstr object. A
// zero-length header is encoded as a zero-length byte string, never as a
// byte string wrapping an empty map (RFC 9052 4.2).
func (h ProtectedHeader) MarshalCBOR(enc cbor.EncMode) ([]byte, error) {
	if len(h) == 0 {
		return enc.Marshal([]byte{})
	}
	if err := validateHeaderParameters(h, true); err != nil {
		return nil, fmt.Errorf("protected header: %w", err)
	}
	encoded, err := enc.Marshal(map[any]any(h))
	if err != nil {
		return nil, err
	}
	return enc.Marshal(encoded)
}

// UnmarshalCBORProtected decodes a CBOR bstr object into a ProtectedHeader.
// Both the zero-length-bstr and the empty-map (h'a0') forms are accepted for
// an empty header unless strict is set, per RFC 9052 4.2's
// "empty_or_serialized_map".
func UnmarshalCBORProtected(data []byte, strict bool) (ProtectedHeader, error) {
	var encoded []byte
	if err := decMode.Unmarshal(data, &encoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCBORDecode, err)
	}
	if len(encoded) == 0 {
		return ProtectedHeader{}, nil
	}
	if encoded[0]>>5 != 5 { // major type 5: map
		return nil, fmt.Errorf("%w: protected header: not a map", ErrCBORDecode)
	}
	if err := validateHeaderLabelCBOR(encoded); err != nil {
		return nil, err
	}
	var decoded map[any]any
	if err := decMode.Unmarshal(encoded, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCBORDecode, err)
	}
	if strict && len(decoded) == 0 {
		return nil, fmt.Errorf("%w: empty protected map encoded instead of zero-length bstr", ErrCBORNotWellFormed)
	}
	h := ProtectedHeader(decoded)
	if err := validateHeaderParameters(h, true); err != nil {
		return nil, fmt.Errorf("protected header: %w", err)
	}
	return h, nil
}

// SetAlgorithm sets the algorithm value of the protected header.
func (h ProtectedHeader) SetAlgorithm(alg Algorithm) {
	h[HeaderLabelAlgorithm] = alg
}

// Algorithm returns the algorithm value from the protected header.
func (h ProtectedHeader) Algorithm() (Algorithm, error) {
	value, ok := h[HeaderLabelAlgorithm]
	if !ok {
		return 0, ErrAlgorithmNotFound
	}
	switch alg := value.(type) {
	case Algorithm:
		return alg, nil
	case int:
		return Algorithm(alg), nil
	case int64:
		return Algorithm(alg), nil
	default:
		return 0, ErrParameterType
	}
}

// Critical returns the labels listed in the `crit` parameter, if any.
func (h ProtectedHeader) Critical() ([]any, error) {
	value, ok := h[HeaderLabelCritical]
	if !ok {
		return nil, nil
	}
	labels, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: crit", ErrParameterType)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: crit: empty array", ErrParameterType)
	}
	for _, label := range labels {
		if !canInt(label) && !canTstr(label) {
			return nil, fmt.Errorf("%w: crit entry %v", ErrParameterType, label)
		}
		if _, present := h[label]; !present {
			return nil, fmt.Errorf("%w: crit lists %v but it is absent", ErrUnknownCriticalParameter, label)
		}
	}
	return labels, nil
}

// checkCriticality enforces spec 4.1: every label in `crit` must be present
// in the protected bucket (checked by Critical above) and must be recognized
// either natively (knownLabels) or by the caller-supplied reader.
func checkCriticality(h ProtectedHeader, reader CriticalParameterReader) error {
	labels, err := h.Critical()
	if err != nil {
		return err
	}
	for _, label := range labels {
		recognized := false
		if norm, ok := normalizeLabel(label); ok {
			if li, isInt := norm.(int64); isInt {
				if _, known := knownLabels[li]; known {
					recognized = true
				}
			}
		}
		if !recognized && reader != nil && reader(label) {
			recognized = true
		}
		if !recognized {
			return fmt.Errorf("%w: %v", ErrUnknownCriticalParameter, label)
		}
	}
	return nil
}

// UnprotectedHeader contains parameters that are not cryptographically
// protected.
type UnprotectedHeader map[any]any

// MarshalCBOR encodes the unprotected header into a CBOR map object. A
// zero-length header is encoded as the empty map h'a0'.
func (h UnprotectedHeader) MarshalCBOR(enc cbor.EncMode) ([]byte, error) {
	if len(h) == 0 {
		return []byte{0xa0}, nil
	}
	if err := validateHeaderParameters(h, false); err != nil {
		return nil, fmt.Errorf("unprotected header: %w", err)
	}
	return enc.Marshal(map[any]any(h))
}

// UnmarshalCBORUnprotected decodes a CBOR map object into an UnprotectedHeader.
func UnmarshalCBORUnprotected(data []byte) (UnprotectedHeader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: unprotected header: missing type", ErrCBORDecode)
	}
	if data[0]>>5 != 5 {
		return nil, fmt.Errorf("%w: unprotected header: not a map", ErrCBORDecode)
	}
	if err := validateHeaderLabelCBOR(data); err != nil {
		return nil, err
	}
	var decoded map[any]any
	if err := decMode.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCBORDecode, err)
	}
	h := UnprotectedHeader(decoded)
	if err := validateHeaderParameters(h, false); err != nil {
		return nil, fmt.Errorf("unprotected header: %w", err)
	}
	return h, nil
}

// Headers bundles the protected and unprotected buckets of a COSE message
// or signature, in both decoded and raw-bytes form.
//
//	Headers = (
//	    protected : empty_or_serialized_map,
//	    unprotected : header_map
//	)
type Headers struct {
	RawProtected   cbor.RawMessage
	Protected      ProtectedHeader
	RawUnprotected cbor.RawMessage
	Unprotected    UnprotectedHeader
}

// EncodeProtected returns the encoded protected header, using RawProtected
// verbatim if set, otherwise marshaling Protected with the given mode.
func (h *Headers) EncodeProtected(enc cbor.EncMode) ([]byte, error) {
	if len(h.RawProtected) > 0 {
		return h.RawProtected, nil
	}
	return h.Protected.MarshalCBOR(enc)
}

// EncodeUnprotected returns the encoded unprotected header, using
// RawUnprotected verbatim if set, otherwise marshaling Unprotected.
func (h *Headers) EncodeUnprotected(enc cbor.EncMode) ([]byte, error) {
	if len(h.RawUnprotected) > 0 {
		return h.RawUnprotected, nil
	}
	return h.Unprotected.MarshalCBOR(enc)
}

// checkNoDuplicateAcrossBuckets enforces spec 3(b): a label cannot appear in
// both the protected and unprotected buckets of the same Headers.
func checkNoDuplicateAcrossBuckets(h *Headers) error {
	for label := range h.Protected {
		norm, ok := normalizeLabel(label)
		if !ok {
			continue
		}
		for other := range h.Unprotected {
			otherNorm, ok := normalizeLabel(other)
			if ok && otherNorm == norm {
				return fmt.Errorf("%w: label %v present in both buckets", ErrDuplicateParameter, norm)
			}
		}
	}
	return nil
}

// checkAlgorithmProtected enforces spec 3(c): if `alg` is present, it must
// live in the protected bucket.
func checkAlgorithmProtected(h *Headers) error {
	if _, ok := h.Unprotected[HeaderLabelAlgorithm]; ok {
		return ErrAlgorithmMustBeProtected
	}
	return nil
}

// checkCriticalProtectedOnly enforces that `crit`, if present at all, only
// ever appears in the protected bucket (spec 4.1).
func checkCriticalProtectedOnly(h *Headers) error {
	if _, ok := h.Unprotected[HeaderLabelCritical]; ok {
		return ErrCriticalNotProtected
	}
	return nil
}

// HeaderParameter is a single labeled value, as contributed by a Signer's
// header callback (spec C4) before it is merged into a message's headers.
type HeaderParameter struct {
	Label     any
	Value     any
	Protected bool
}

// mergeParameterList merges a small parameter list contributed by a
// signer's header callback into the body's headers, rejecting duplicates
// (spec 4.1 "Merging body-level and signer-level headers").
func mergeParameterList(body *Headers, contributed []HeaderParameter) error {
	for _, p := range contributed {
		if _, dup := body.Protected[p.Label]; dup {
			return fmt.Errorf("%w: %v", ErrDuplicateParameter, p.Label)
		}
		if _, dup := body.Unprotected[p.Label]; dup {
			return fmt.Errorf("%w: %v", ErrDuplicateParameter, p.Label)
		}
		if p.Protected {
			if body.Protected == nil {
				body.Protected = ProtectedHeader{}
			}
			body.Protected[p.Label] = p.Value
			continue
		}
		if body.Unprotected == nil {
			body.Unprotected = UnprotectedHeader{}
		}
		body.Unprotected[p.Label] = p.Value
	}
	return nil
}

// validateHeaderParameters validates that all header labels are int64/string,
// unique within the bucket, and that well-known labels carry values of the
// expected CBOR type.
func validateHeaderParameters(h map[any]any, protected bool) error {
	seen := make(map[any]struct{}, len(h))
	for label, value := range h {
		norm, ok := normalizeLabel(label)
		if !ok {
			return errors.New("header label: require int / tstr type")
		}
		if _, dup := seen[norm]; dup {
			return fmt.Errorf("%w: %v", ErrDuplicateParameter, norm)
		}
		seen[norm] = struct{}{}

		switch norm {
		case HeaderLabelAlgorithm:
			if _, isAlg := value.(Algorithm); !isAlg && !canInt(value) && !canTstr(value) {
				return fmt.Errorf("%w: alg: require int / tstr", ErrParameterType)
			}
		case HeaderLabelCritical:
			if !protected {
				return ErrCriticalNotProtected
			}
			labels, ok := value.([]any)
			if !ok || len(labels) == 0 {
				return fmt.Errorf("%w: crit: require non-empty array", ErrParameterType)
			}
			for _, l := range labels {
				if !canInt(l) && !canTstr(l) {
					return fmt.Errorf("%w: crit entry", ErrParameterType)
				}
				if _, present := h[l]; !present {
					return fmt.Errorf("%w: crit lists %v but it is absent", ErrUnknownCriticalParameter, l)
				}
			}
		case HeaderLabelContentType:
			if !canTstr(value) && !canUint(value) {
				return fmt.Errorf("%w: content type: require tstr / uint", ErrParameterType)
			}
			if s, isStr := value.(string); isStr {
				if len(s) == 0 || strings.Count(s, "/") != 1 {
					return fmt.Errorf("%w: content type: require type/subtype form", ErrParameterType)
				}
			}
		case HeaderLabelKeyID:
			if !canBstr(value) {
				return fmt.Errorf("%w: kid: require bstr", ErrParameterType)
			}
		case HeaderLabelIV:
			if !canBstr(value) {
				return fmt.Errorf("%w: IV: require bstr", ErrParameterType)
			}
		}
	}
	return nil
}

func canUint(v any) bool {
	switch t := v.(type) {
	case uint, uint8, uint16, uint32, uint64:
		return true
	case int:
		return t >= 0
	case int64:
		return t >= 0
	}
	return false
}

func canInt(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func canTstr(v any) bool {
	_, ok := v.(string)
	return ok
}

func canBstr(v any) bool {
	_, ok := v.([]byte)
	return ok
}

// normalizeLabel casts a label into int64 or string, the two types
// RFC 9052 1.4 permits, reporting (nil, false) for anything else.
func normalizeLabel(label any) (any, bool) {
	switch v := label.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case string:
		return v, true
	default:
		return nil, false
	}
}

// sortedLabels returns the labels of m ordered with integers ascending
// first, then strings ascending, per spec 3(e).
func sortedLabels(m map[any]any) []any {
	labels := make([]any, 0, len(m))
	for l := range m {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		li, _ := normalizeLabel(labels[i])
		lj, _ := normalizeLabel(labels[j])
		ii, iInt := li.(int64)
		ij, jInt := lj.(int64)
		switch {
		case iInt && jInt:
			return ii < ij
		case iInt && !jInt:
			return true
		case !iInt && jInt:
			return false
		default:
			return li.(string) < lj.(string)
		}
	})
	return labels
}

// headerLabelValidator rejects any CBOR map key that is not a COSE-legal
// label (int or tstr) while decoding.
type headerLabelValidator struct {
	value any
}

func (hlv headerLabelValidator) String() string {
	return fmt.Sprint(hlv.value)
}

func (hlv *headerLabelValidator) UnmarshalCBOR(data []byte) error {
	if len(data) == 0 {
		return errors.New("cbor: header label: missing type")
	}
	switch data[0] >> 5 {
	case 0, 1, 3:
		if err := decMode.Unmarshal(data, &hlv.value); err != nil {
			return err
		}
		if _, ok := hlv.value.(big.Int); ok {
			return errors.New("cbor: header label: int key must not exceed 1<<63 - 1")
		}
		return nil
	}
	return errors.New("cbor: header label: require int / tstr type")
}

type discardedCBORMessage struct{}

func (discardedCBORMessage) UnmarshalCBOR([]byte) error { return nil }

func validateHeaderLabelCBOR(data []byte) error {
	var header map[headerLabelValidator]discardedCBORMessage
	return decMode.Unmarshal(data, &header)
}
