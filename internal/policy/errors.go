// Package policy holds the error classes shared by the session-key and
// multisig policy packages.
package policy

import "errors"

var (
	// ErrNotFound is wrapped by every lookup miss.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller may not perform the mutation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrExpired means the grant or proposal is past its time window.
	ErrExpired = errors.New("expired")

	// ErrCorruptRecord is returned at the storage boundary when a stored
	// record violates an invariant. It is never patched over.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrInvalidArgument wraps request-level validation failures.
	ErrInvalidArgument = errors.New("invalid argument")
)
