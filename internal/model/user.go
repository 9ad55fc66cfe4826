package model

import "time"

// User represents an identity record as stored in the `users` table.
// The email column carries a unique index; a second registration with
// the same address is rejected by the store without modifying state.
//
// Fields:
//  ID           – opaque identifier assigned by the store (uuid string).
//  Name         – display name supplied at registration.
//  Email        – unique login key, compared exactly as stored.
//  PasswordHash – bcrypt hash of the password. Never serialized.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           string    `json:"id"`    // users.id
	Name         string    `json:"name"`  // users.name
	Email        string    `json:"email"` // users.email
	PasswordHash string    `json:"-"`     // users.password_hash
	CreatedAt    time.Time `json:"-"`     // users.created_at
}
