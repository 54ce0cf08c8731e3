// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"authsvc/config"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash is returned by Verify for malformed or unsupported encoded hashes.
var ErrInvalidHash = errors.New("invalid argon2id hash")

// argon2Hasher implements service.PasswordHasher with Argon2id.
// Encoded form: $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<key_b64>
type argon2Hasher struct {
	params config.PasswordHashConfig
}

// NewArgon2Hasher returns a PasswordHasher using the given cost parameters.
func NewArgon2Hasher(params *config.PasswordHashConfig) service.PasswordHasher {
	if params == nil {
		params = config.DefaultPasswordHashConfig()
	}

	return &argon2Hasher{params: *params}
}

// Hash generates a salted Argon2id hash of plaintext.
func (h *argon2Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "failed to read salt")
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		h.params.Iterations,
		h.params.MemoryKiB,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	b64 := base64.RawStdEncoding

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Iterations,
		h.params.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Verify recomputes the key with the parameters embedded in encodedHash and
// compares in constant time.
func (h *argon2Hasher) Verify(encodedHash, plaintext string) (bool, error) {
	params, salt, expected, err := decodeArgon2Hash(encodedHash)
	if err != nil {
		return false, err
	}

	// Stored parameters far above our own settings are refused rather than
	// computed; a tampered row must not be able to pin the CPU or memory.
	if !withinBounds(params, h.params) {
		return false, errors.Wrap(ErrInvalidHash, "parameters out of bounds")
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		params.Iterations,
		params.MemoryKiB,
		params.Parallelism,
		uint32(len(expected)), // #nosec G115 -- bounded by withinBounds.
	)

	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

func withinBounds(got, limits config.PasswordHashConfig) bool {
	if got.MemoryKiB > limits.MemoryKiB*2 {
		return false
	}
	if got.Iterations > limits.Iterations*2 {
		return false
	}
	if int(got.Parallelism) > int(limits.Parallelism)*2 {
		return false
	}
	if got.SaltLength < config.MinSaltLength || got.SaltLength > config.MaxSaltLength {
		return false
	}

	return got.KeyLength >= config.MinKeyLength && got.KeyLength <= config.MaxKeyLength
}

func decodeArgon2Hash(encoded string) (config.PasswordHashConfig, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return config.PasswordHashConfig{}, nil, nil, ErrInvalidHash
	}

	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return config.PasswordHashConfig{}, nil, nil, errors.Wrap(ErrInvalidHash, "unsupported version")
	}

	var mem, iter, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iter, &par); err != nil {
		return config.PasswordHashConfig{}, nil, nil, errors.Wrap(ErrInvalidHash, "bad parameter block")
	}
	if mem == 0 || iter == 0 || par == 0 || par > 255 {
		return config.PasswordHashConfig{}, nil, nil, errors.Wrap(ErrInvalidHash, "bad parameter values")
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return config.PasswordHashConfig{}, nil, nil, errors.Wrap(ErrInvalidHash, "bad salt encoding")
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return config.PasswordHashConfig{}, nil, nil, errors.Wrap(ErrInvalidHash, "bad key encoding")
	}

	params := config.PasswordHashConfig{
		MemoryKiB:   mem,
		Iterations:  iter,
		Parallelism: uint8(par),        // #nosec G115 -- checked <= 255 above.
		SaltLength:  uint32(len(salt)), // #nosec G115 -- base64 segment of a bounded string.
		KeyLength:   uint32(len(key)),  // #nosec G115 -- base64 segment of a bounded string.
	}

	return params, salt, key, nil
}
