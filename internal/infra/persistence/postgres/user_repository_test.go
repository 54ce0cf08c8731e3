package postgres

import (
	"context"
	"testing"

	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"
	"authsvc/internal/errors"
	"authsvc/internal/infra/persistence/model"
	"authsvc/internal/infra/persistence/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createUser(t *testing.T, repo repository.UserRepository, email string) *entity.User {
	t.Helper()

	user := &entity.User{Email: email, PasswordHash: "$argon2id$stub"}
	require.NoError(t, repo.Create(context.Background(), user))

	return user
}

func loadRefreshHash(t *testing.T, db *gorm.DB, id uint64) *string {
	t.Helper()

	var userM model.UserModel
	require.NoError(t, db.First(&userM, id).Error)

	return userM.RefreshTokenHash
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	db := testdb.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, repo, "a@x.com")
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
	assert.Equal(t, "$argon2id$stub", byID.PasswordHash)
	assert.False(t, byID.LoggedIn())

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db := testdb.New(t)
	repo := NewUserRepository(db)

	createUser(t, repo, "dup@x.com")

	err := repo.Create(context.Background(), &entity.User{Email: "dup@x.com", PasswordHash: "h"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCredentialsTaken))
}

func TestUserRepository_FindMissing(t *testing.T) {
	repo := NewUserRepository(testdb.New(t))
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_RefreshTokenHashLifecycle(t *testing.T) {
	db := testdb.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, repo, "b@x.com")

	require.NoError(t, repo.SetRefreshTokenHash(ctx, user.ID, "h1"))
	require.NotNil(t, loadRefreshHash(t, db, user.ID))
	assert.Equal(t, "h1", *loadRefreshHash(t, db, user.ID))

	// Last writer wins.
	require.NoError(t, repo.SetRefreshTokenHash(ctx, user.ID, "h2"))
	assert.Equal(t, "h2", *loadRefreshHash(t, db, user.ID))

	require.NoError(t, repo.ClearRefreshTokenHash(ctx, user.ID))
	assert.Nil(t, loadRefreshHash(t, db, user.ID))

	// Clearing twice is a no-op.
	require.NoError(t, repo.ClearRefreshTokenHash(ctx, user.ID))
	assert.Nil(t, loadRefreshHash(t, db, user.ID))
}

func TestUserRepository_SetRefreshTokenHashUnknownUser(t *testing.T) {
	repo := NewUserRepository(testdb.New(t))

	err := repo.SetRefreshTokenHash(context.Background(), 999, "h")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_RotateRefreshTokenHash(t *testing.T) {
	db := testdb.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, repo, "r@x.com")
	require.NoError(t, repo.SetRefreshTokenHash(ctx, user.ID, "h1"))

	require.NoError(t, repo.RotateRefreshTokenHash(ctx, user.ID, "h1", "h2"))
	assert.Equal(t, "h2", *loadRefreshHash(t, db, user.ID))

	// A second rotation from the same starting hash loses the race.
	err := repo.RotateRefreshTokenHash(ctx, user.ID, "h1", "h3")
	require.ErrorIs(t, err, repository.ErrRefreshHashChanged)
	assert.Equal(t, "h2", *loadRefreshHash(t, db, user.ID))

	require.NoError(t, repo.ClearRefreshTokenHash(ctx, user.ID))
	err = repo.RotateRefreshTokenHash(ctx, user.ID, "h2", "h4")
	require.ErrorIs(t, err, repository.ErrRefreshHashChanged)
	assert.Nil(t, loadRefreshHash(t, db, user.ID))
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	db := testdb.New(t)
	txManager := NewTransactionManager(db)
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if err := factory.UserRepo().Create(ctx, &entity.User{Email: "c@x.com", PasswordHash: "h"}); err != nil {
			return err
		}

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = NewUserRepository(db).FindByEmail(ctx, "c@x.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestTransactionManager_Commits(t *testing.T) {
	db := testdb.New(t)
	txManager := NewTransactionManager(db)
	ctx := context.Background()

	var created *entity.User
	err := txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		created = &entity.User{Email: "d@x.com", PasswordHash: "h"}
		if err := factory.UserRepo().Create(ctx, created); err != nil {
			return err
		}

		return factory.UserRepo().SetRefreshTokenHash(ctx, created.ID, "rt")
	})
	require.NoError(t, err)

	found, err := NewUserRepository(db).FindByEmail(ctx, "d@x.com")
	require.NoError(t, err)
	assert.True(t, found.LoggedIn())
}

func TestIsUniqueConstraintViolation(t *testing.T) {
	assert.True(t, isUniqueConstraintViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueConstraintViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, isUniqueConstraintViolation(errors.New("connection refused")))
}
