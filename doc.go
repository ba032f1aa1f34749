// Package cose implements COSE_Sign1 and COSE_Sign (RFC 9052 §4) signing
// and verification: a crypto-agnostic engine driven by an EngineContext,
// pluggable key and algorithm dispatch via KeyIDResolver and CryptoAdapter,
// and an option-flag word controlling CBOR tagging, detached payloads, and
// encoding determinism.
package cose
