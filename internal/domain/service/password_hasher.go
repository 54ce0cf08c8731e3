// Package service defines interfaces for stateless domain logic that the
// use cases depend on without knowing the algorithms behind them.
package service

// PasswordHasher hashes and verifies secrets at rest. It is used for both
// account passwords and refresh tokens.
type PasswordHasher interface {
	// Hash returns a salted, self-describing encoded hash of plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches encodedHash.
	// A mismatch is (false, nil); only a malformed hash returns an error.
	Verify(encodedHash, plaintext string) (bool, error)
}
