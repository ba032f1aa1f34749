package cose

import "github.com/pkg/errors"

// wrapDispatchFailure attaches a stack trace to a verifier-dispatch failure
// (no chain entry accepted the message's algorithm/kid). The core never
// logs; embedding services that surface this error to an operator get a
// trace pointing at the call into the engine rather than just the sentinel.
func wrapDispatchFailure(err error) error {
	return errors.WithStack(err)
}
