// Package repository defines error types that are reused across the
// credential and catalog stores. These sentinel values allow the service
// layer to distinguish between "not there" and genuine store failures.
package repository

import "errors"

// ErrEmailExists is returned when inserting a user whose email is
// already registered. The existing row is left untouched.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the lookup key.
var ErrUserNotFound = errors.New("user not found")

// ErrBookNotFound is returned when no book matches the given ISBN.
var ErrBookNotFound = errors.New("book not found")

// ErrUnknownField is returned when a query names a field that is not
// one of the supported lookup fields.
var ErrUnknownField = errors.New("unknown lookup field")
