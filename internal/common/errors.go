// Package common defines sentinel errors and small helpers shared by the
// storage, service and CLI layers of tRusty. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Credential lifecycle errors.
	ErrNotInitialized     = errors.New("password has not been set up")
	ErrAlreadyInitialized = errors.New("password has already been set up")

	// ErrAuthenticationExhausted is returned when the password gate ran out of attempts.
	ErrAuthenticationExhausted = errors.New("authentication attempts exhausted")

	// ErrInvalidPasswordFormat marks a password rejected by the format policy.
	ErrInvalidPasswordFormat = errors.New("invalid password format")

	// ErrInvalidRecoveryCode is returned when a presented recovery code does not
	// match the stored fingerprint. No state is changed when it is returned.
	ErrInvalidRecoveryCode = errors.New("invalid recovery key")

	// ErrAttributeWrite wraps any failed key/value write during setup or rotation.
	ErrAttributeWrite = errors.New("attribute write failed")

	// Note protection policy outcomes. These are informational, not failures.
	ErrNoteAlreadyProtected = errors.New("note is already encrypted")
	ErrNoteNotProtected     = errors.New("note is not encrypted")
)
