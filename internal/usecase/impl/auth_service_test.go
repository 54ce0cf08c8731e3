package impl

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"
	mockRepo "authsvc/internal/mocks/repository"
	mockSvc "authsvc/internal/mocks/service"
	"authsvc/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service      usecase.AuthUsecase
	txManager    *mockRepo.MockTransactionManager
	userRepo     *mockRepo.MockUserRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	svc := NewAuthService(AuthServiceParams{
		TxManager:    txManager,
		UserRepo:     userRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return authServiceFixtures{
		service:      svc,
		txManager:    txManager,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
	}
}

// runInTx makes Execute invoke the callback with a factory handing out txRepo.
func (fx authServiceFixtures) runInTx(t *testing.T, ctx context.Context, txRepo *mockRepo.MockUserRepository) {
	factory := mockRepo.NewMockRepositoryFactory(t)
	factory.EXPECT().UserRepo().Return(txRepo)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(factory)
		})
}

func (fx authServiceFixtures) expectPair(identity entity.Identity, access, refresh string) {
	fx.tokenService.EXPECT().Sign(service.TokenKindAccess, identity).Return(access, nil)
	fx.tokenService.EXPECT().Sign(service.TokenKindRefresh, identity).Return(refresh, nil)
	fx.hasher.EXPECT().Hash(refresh).Return(refresh+"_hash", nil)
}

func stringPtr(s string) *string { return &s }

func assertAppError(t *testing.T, err error, want *domainerrors.BaseError) {
	t.Helper()

	require.Error(t, err)
	assert.True(t, errors.Is(err, want), "expected %s, got %v", want.ErrorCode(), err)
}

var credentials = usecase.CredentialsInput{Email: "a@x.com", Password: "p1"}

func TestAuthService_SignUp_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	txRepo := mockRepo.NewMockUserRepository(t)

	fx.hasher.EXPECT().Hash("p1").Return("p1_hash", nil)
	fx.runInTx(t, ctx, txRepo)
	txRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			assert.Equal(t, "a@x.com", user.Email)
			assert.Equal(t, "p1_hash", user.PasswordHash)
			assert.Nil(t, user.RefreshTokenHash)
			user.ID = 7
		}).
		Return(nil)
	fx.expectPair(entity.Identity{UserID: 7, Email: "a@x.com"}, "at", "rt")
	txRepo.EXPECT().SetRefreshTokenHash(ctx, uint64(7), "rt_hash").Return(nil)

	pair, err := fx.service.SignUp(ctx, credentials)

	require.NoError(t, err)
	assert.Equal(t, &entity.TokenPair{AccessToken: "at", RefreshToken: "rt"}, pair)
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	txRepo := mockRepo.NewMockUserRepository(t)

	fx.hasher.EXPECT().Hash("p1").Return("p1_hash", nil)
	fx.runInTx(t, ctx, txRepo)
	txRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Return(domainerrors.ErrCredentialsTaken.WrapMessage("email already exists"))

	pair, err := fx.service.SignUp(ctx, credentials)

	assert.Nil(t, pair)
	assertAppError(t, err, domainerrors.ErrCredentialsTaken)
}

func TestAuthService_SignUp_SigningFailureRollsBack(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	txRepo := mockRepo.NewMockUserRepository(t)
	errSign := errors.New("sign failed")
	identity := entity.Identity{UserID: 7, Email: "a@x.com"}

	fx.hasher.EXPECT().Hash("p1").Return("p1_hash", nil)
	fx.runInTx(t, ctx, txRepo)
	txRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) { user.ID = 7 }).
		Return(nil)
	fx.tokenService.EXPECT().Sign(service.TokenKindAccess, identity).Return("at", nil)
	fx.tokenService.EXPECT().Sign(service.TokenKindRefresh, identity).Return("", errSign)

	pair, err := fx.service.SignUp(ctx, credentials)

	assert.Nil(t, pair)
	assert.ErrorIs(t, err, errSign)
}

func TestAuthService_SignIn_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	user := &entity.User{ID: 7, Email: "a@x.com", PasswordHash: "p1_hash", RefreshTokenHash: stringPtr("old")}

	fx.userRepo.EXPECT().FindByEmail(ctx, "a@x.com").Return(user, nil)
	fx.hasher.EXPECT().Verify("p1_hash", "p1").Return(true, nil)
	fx.expectPair(entity.Identity{UserID: 7, Email: "a@x.com"}, "at", "rt")
	fx.userRepo.EXPECT().SetRefreshTokenHash(ctx, uint64(7), "rt_hash").Return(nil)

	pair, err := fx.service.SignIn(ctx, credentials)

	require.NoError(t, err)
	assert.Equal(t, "at", pair.AccessToken)
	assert.Equal(t, "rt", pair.RefreshToken)
}

func TestAuthService_SignIn_UserRemovedBeforeSessionStored(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	user := &entity.User{ID: 7, Email: "a@x.com", PasswordHash: "p1_hash"}

	fx.userRepo.EXPECT().FindByEmail(ctx, "a@x.com").Return(user, nil)
	fx.hasher.EXPECT().Verify("p1_hash", "p1").Return(true, nil)
	fx.expectPair(entity.Identity{UserID: 7, Email: "a@x.com"}, "at", "rt")
	fx.userRepo.EXPECT().SetRefreshTokenHash(ctx, uint64(7), "rt_hash").Return(repository.ErrUserNotFound)

	pair, err := fx.service.SignIn(ctx, credentials)

	assert.Nil(t, pair)
	assertAppError(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_SignIn_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()

	unknown := createTestAuthService(t)
	unknown.userRepo.EXPECT().FindByEmail(ctx, "a@x.com").Return(nil, repository.ErrUserNotFound)
	_, errUnknown := unknown.service.SignIn(ctx, credentials)

	wrong := createTestAuthService(t)
	wrong.userRepo.EXPECT().FindByEmail(ctx, "a@x.com").
		Return(&entity.User{ID: 7, Email: "a@x.com", PasswordHash: "p2_hash"}, nil)
	wrong.hasher.EXPECT().Verify("p2_hash", "p1").Return(false, nil)
	_, errWrong := wrong.service.SignIn(ctx, credentials)

	assertAppError(t, errUnknown, domainerrors.ErrInvalidCredentials)
	assertAppError(t, errWrong, domainerrors.ErrInvalidCredentials)

	var appUnknown, appWrong domainerrors.AppError
	require.True(t, errors.As(errUnknown, &appUnknown))
	require.True(t, errors.As(errWrong, &appWrong))
	assert.Equal(t, http.StatusForbidden, appUnknown.HTTPCode())
	assert.Equal(t, appUnknown.HTTPCode(), appWrong.HTTPCode())
	assert.Equal(t, appUnknown.ErrorCode(), appWrong.ErrorCode())
	assert.Equal(t, appUnknown.Message(), appWrong.Message())
}

func TestAuthService_SignIn_MalformedStoredHash(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByEmail(ctx, "a@x.com").
		Return(&entity.User{ID: 7, Email: "a@x.com", PasswordHash: "garbage"}, nil)
	fx.hasher.EXPECT().Verify("garbage", "p1").Return(false, errors.New("invalid hash"))

	_, err := fx.service.SignIn(ctx, credentials)

	assertAppError(t, err, domainerrors.ErrInternalError)
}

func TestAuthService_Logout(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().ClearRefreshTokenHash(ctx, uint64(7)).Return(nil).Twice()

	require.NoError(t, fx.service.Logout(ctx, 7))
	require.NoError(t, fx.service.Logout(ctx, 7))
}

func TestAuthService_Logout_PropagatesStoreError(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	storeErr := domainerrors.NewDatabaseExecuteError(errors.New("connection reset"), "failed to clear refresh token hash")

	fx.userRepo.EXPECT().ClearRefreshTokenHash(ctx, uint64(7)).Return(storeErr)

	err := fx.service.Logout(ctx, 7)

	require.Error(t, err)
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPCode())
}

func TestAuthService_RefreshTokens_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	identity := entity.Identity{UserID: 7, Email: "a@x.com"}

	fx.userRepo.EXPECT().FindByID(ctx, uint64(7)).
		Return(&entity.User{ID: 7, Email: "a@x.com", RefreshTokenHash: stringPtr("rt1_hash")}, nil)
	fx.hasher.EXPECT().Verify("rt1_hash", "rt1").Return(true, nil)
	fx.expectPair(identity, "at2", "rt2")
	fx.userRepo.EXPECT().RotateRefreshTokenHash(ctx, uint64(7), "rt1_hash", "rt2_hash").Return(nil)

	pair, err := fx.service.RefreshTokens(ctx, usecase.RefreshInput{Identity: identity, RefreshToken: "rt1"})

	require.NoError(t, err)
	assert.Equal(t, "at2", pair.AccessToken)
	assert.Equal(t, "rt2", pair.RefreshToken)
	assert.NotEqual(t, "rt1", pair.RefreshToken)
}

func TestAuthService_RefreshTokens_Denied(t *testing.T) {
	identity := entity.Identity{UserID: 7, Email: "a@x.com"}

	tests := []struct {
		name  string
		setup func(fx authServiceFixtures, ctx context.Context)
	}{
		{
			name: "user deleted",
			setup: func(fx authServiceFixtures, ctx context.Context) {
				fx.userRepo.EXPECT().FindByID(ctx, uint64(7)).Return(nil, repository.ErrUserNotFound)
			},
		},
		{
			name: "email mismatch",
			setup: func(fx authServiceFixtures, ctx context.Context) {
				fx.userRepo.EXPECT().FindByID(ctx, uint64(7)).
					Return(&entity.User{ID: 7, Email: "b@x.com", RefreshTokenHash: stringPtr("rt1_hash")}, nil)
			},
		},
		{
			name: "logged out",
			setup: func(fx authServiceFixtures, ctx context.Context) {
				fx.userRepo.EXPECT().FindByID(ctx, uint64(7)).
					Return(&entity.User{ID: 7, Email: "a@x.com"}, nil)
			},
		},
		{
			name: "token does not match stored hash",
			setup: func(fx authServiceFixtures, ctx context.Context) {
				fx.userRepo.EXPECT().FindByID(ctx, uint64(7)).
					Return(&entity.User{ID: 7, Email: "a@x.com", RefreshTokenHash: stringPtr("rt0_hash")}, nil)
				fx.hasher.EXPECT().Verify("rt0_hash", "rt1").Return(false, nil)
			},
		},
		{
			name: "rotated concurrently",
			setup: func(fx authServiceFixtures, ctx context.Context) {
				fx.userRepo.EXPECT().FindByID(ctx, uint64(7)).
					Return(&entity.User{ID: 7, Email: "a@x.com", RefreshTokenHash: stringPtr("rt1_hash")}, nil)
				fx.hasher.EXPECT().Verify("rt1_hash", "rt1").Return(true, nil)
				fx.expectPair(identity, "at2", "rt2")
				fx.userRepo.EXPECT().RotateRefreshTokenHash(ctx, uint64(7), "rt1_hash", "rt2_hash").
					Return(repository.ErrRefreshHashChanged)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthService(t)
			ctx := context.Background()
			tt.setup(fx, ctx)

			pair, err := fx.service.RefreshTokens(ctx, usecase.RefreshInput{Identity: identity, RefreshToken: "rt1"})

			assert.Nil(t, pair)
			assertAppError(t, err, domainerrors.ErrRefreshDenied)
		})
	}
}

func TestAuthService_SignUpAccessOnly_LeavesSessionUntouched(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.hasher.EXPECT().Hash("p1").Return("p1_hash", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) { user.ID = 9 }).
		Return(nil)
	fx.tokenService.EXPECT().Sign(service.TokenKindAccess, entity.Identity{UserID: 9, Email: "a@x.com"}).Return("at", nil)

	out, err := fx.service.SignUpAccessOnly(ctx, credentials)

	require.NoError(t, err)
	assert.Equal(t, "at", out.AccessToken)
	fx.userRepo.AssertNotCalled(t, "SetRefreshTokenHash", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_SignInAccessOnly(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByEmail(ctx, "a@x.com").
		Return(&entity.User{ID: 7, Email: "a@x.com", PasswordHash: "p1_hash", RefreshTokenHash: stringPtr("rt_hash")}, nil)
	fx.hasher.EXPECT().Verify("p1_hash", "p1").Return(true, nil)
	fx.tokenService.EXPECT().Sign(service.TokenKindAccess, entity.Identity{UserID: 7, Email: "a@x.com"}).Return("at", nil)

	out, err := fx.service.SignInAccessOnly(ctx, credentials)

	require.NoError(t, err)
	assert.Equal(t, "at", out.AccessToken)
}

func TestAuthService_CurrentUser(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByID(ctx, uint64(7)).Return(&entity.User{ID: 7, Email: "a@x.com"}, nil)
	fx.userRepo.EXPECT().FindByID(ctx, uint64(8)).Return(nil, repository.ErrUserNotFound)

	user, err := fx.service.CurrentUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = fx.service.CurrentUser(ctx, 8)
	assertAppError(t, err, domainerrors.ErrUserNotFound)
}
