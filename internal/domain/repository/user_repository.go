// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the use case layer and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"authsvc/internal/domain/entity"
)

var (
	// ErrUserNotFound is returned when no user row matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrRefreshHashChanged is returned by RotateRefreshTokenHash when the
	// stored hash no longer equals the one the caller verified against.
	ErrRefreshHashChanged = errors.New("refresh token hash changed concurrently")
)

// UserRepository is the Credential Store: user rows plus the single stored
// refresh-token hash per user.
type UserRepository interface {
	// FindByID retrieves a single user by their store-generated ID.
	FindByID(ctx context.Context, id uint64) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create inserts a new user and fills in the generated ID and timestamps.
	// A duplicate email fails with domainerrors.ErrCredentialsTaken.
	Create(ctx context.Context, user *entity.User) error

	// SetRefreshTokenHash overwrites the stored refresh hash (last writer wins).
	// Returns ErrUserNotFound if the row does not exist.
	SetRefreshTokenHash(ctx context.Context, id uint64, hash string) error

	// RotateRefreshTokenHash replaces the stored hash with next only while it
	// still equals current, so a refresh token can be redeemed once even
	// under concurrent requests.
	RotateRefreshTokenHash(ctx context.Context, id uint64, current, next string) error

	// ClearRefreshTokenHash nulls the stored refresh hash if it is set.
	// Clearing an already-null hash, or an unknown id, is a no-op.
	ClearRefreshTokenHash(ctx context.Context, id uint64) error
}
