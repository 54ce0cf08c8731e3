// Package entity contains the core business objects of authsvc.
package entity

import "time"

// User is an account that can authenticate with email and password.
// Session state is encoded only in RefreshTokenHash: nil means logged out,
// otherwise it is the hash of the single refresh token currently honoured.
type User struct {
	ID               uint64  // Store-generated, immutable.
	Email            string  // Unique login identifier; no update path exists.
	PasswordHash     string  // Encoded Argon2id hash, set at signup.
	RefreshTokenHash *string // Encoded hash of the current refresh token, or nil.
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LoggedIn reports whether the user currently holds a refresh session.
func (u *User) LoggedIn() bool {
	return u.RefreshTokenHash != nil
}
