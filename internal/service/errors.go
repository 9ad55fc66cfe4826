// Package service implements the auth and catalog operations on top of
// the stores. Domain outcomes match the sentinel errors below under
// errors.Is, so the HTTP layer can map them without looking at store
// internals. Anything else (a cancelled context, a signing failure) is
// internal and maps to a 500.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict means the email is already registered.
	ErrConflict = errors.New("conflict")
	// ErrNotFound means the identity or book does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredential means the password did not match.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrUnauthorized means the session token was absent or not valid.
	ErrUnauthorized = errors.New("access denied")
	// ErrInvalidField means a query named an unsupported lookup field.
	ErrInvalidField = errors.New("invalid lookup field")
	// ErrStoreFailure wraps any unexpected error from a store.
	ErrStoreFailure = errors.New("store failure")
)

func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}
