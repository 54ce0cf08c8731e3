// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "authsvc/internal/delivery/context"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"
	"authsvc/internal/usecase"

	"golang.org/x/sync/errgroup"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AuthServiceParams holds the dependencies of the auth service.
type AuthServiceParams struct {
	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SignUp creates the user and opens a refresh session in one transaction.
func (srv *authService) SignUp(ctx context.Context, input usecase.CredentialsInput) (*entity.TokenPair, error) {
	srv.log(ctx).Info("Starting signup", slog.String("email", input.Email))

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password during signup")
	}

	var pair *entity.TokenPair
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user := &entity.User{Email: input.Email, PasswordHash: passwordHash}
		if err := userRepo.Create(ctx, user); err != nil {
			return errors.Wrap(err, "failed to create user during signup")
		}

		var issueErr error
		pair, issueErr = srv.issueSession(ctx, userRepo, user)

		return issueErr
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrCredentialsTaken) {
			srv.log(ctx).Warn("Signup rejected, email already registered", slog.String("email", input.Email))
		} else {
			srv.log(ctx).Error("Failed to execute signup transaction", slog.String("email", input.Email), slog.Any("error", err))
		}

		return nil, errors.Wrap(err, "failed to execute signup transaction")
	}

	return pair, nil
}

// SignIn authenticates the credentials and replaces any existing refresh session.
func (srv *authService) SignIn(ctx context.Context, input usecase.CredentialsInput) (*entity.TokenPair, error) {
	user, err := srv.authenticate(ctx, input)
	if err != nil {
		return nil, err
	}

	pair, err := srv.issueSession(ctx, srv.userRepo, user)
	if err != nil {
		srv.log(ctx).Error("Failed to open session", slog.Uint64("userID", user.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Signin completed", slog.Uint64("userID", user.ID))

	return pair, nil
}

// Logout clears the stored refresh hash. Calling it while logged out is a no-op.
func (srv *authService) Logout(ctx context.Context, userID uint64) error {
	if err := srv.userRepo.ClearRefreshTokenHash(ctx, userID); err != nil {
		srv.log(ctx).Error("Failed to clear refresh token hash", slog.Uint64("userID", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to logout")
	}

	srv.log(ctx).Debug("Logout completed", slog.Uint64("userID", userID))

	return nil
}

// RefreshTokens redeems a refresh token once and rotates the session to a new pair.
func (srv *authService) RefreshTokens(ctx context.Context, input usecase.RefreshInput) (*entity.TokenPair, error) {
	userID := input.Identity.UserID

	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Warn("Refresh denied, user no longer exists", slog.Uint64("userID", userID))

		return nil, domainerrors.ErrRefreshDenied.WrapMessage("user not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for refresh")
	}

	if user.Email != input.Identity.Email {
		srv.log(ctx).Warn("Refresh denied, email changed", slog.Uint64("userID", userID))

		return nil, domainerrors.ErrRefreshDenied.WrapMessage("token email does not match user")
	}

	if !user.LoggedIn() {
		srv.log(ctx).Warn("Refresh denied, no active session", slog.Uint64("userID", userID))

		return nil, domainerrors.ErrRefreshDenied.WrapMessage("no active session")
	}

	storedHash := *user.RefreshTokenHash
	ok, err := srv.hasher.Verify(storedHash, input.RefreshToken)
	if err != nil {
		srv.log(ctx).Error("Stored refresh token hash is unreadable", slog.Uint64("userID", userID), slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to verify refresh token")
	}
	if !ok {
		srv.log(ctx).Warn("Refresh denied, token does not match session", slog.Uint64("userID", userID))

		return nil, domainerrors.ErrRefreshDenied.WrapMessage("refresh token does not match stored hash")
	}

	pair, refreshHash, err := srv.mintSession(user)
	if err != nil {
		return nil, err
	}

	err = srv.userRepo.RotateRefreshTokenHash(ctx, user.ID, storedHash, refreshHash)
	if errors.Is(err, repository.ErrRefreshHashChanged) {
		srv.log(ctx).Warn("Refresh denied, session rotated concurrently", slog.Uint64("userID", userID))

		return nil, domainerrors.ErrRefreshDenied.WrapMessage("refresh token already used")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to rotate refresh token hash")
	}

	srv.log(ctx).Debug("Tokens refreshed", slog.Uint64("userID", userID))

	return pair, nil
}

// SignUpAccessOnly registers a user without opening a refresh session.
func (srv *authService) SignUpAccessOnly(ctx context.Context, input usecase.CredentialsInput) (*usecase.AccessTokenOutput, error) {
	srv.log(ctx).Info("Starting access-only signup", slog.String("email", input.Email))

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password during signup")
	}

	user := &entity.User{Email: input.Email, PasswordHash: passwordHash}
	if err := srv.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to create user during signup")
	}

	return srv.accessTokenFor(user)
}

// SignInAccessOnly authenticates the credentials and leaves any refresh session untouched.
func (srv *authService) SignInAccessOnly(ctx context.Context, input usecase.CredentialsInput) (*usecase.AccessTokenOutput, error) {
	user, err := srv.authenticate(ctx, input)
	if err != nil {
		return nil, err
	}

	return srv.accessTokenFor(user)
}

// CurrentUser loads the authenticated user's row.
func (srv *authService) CurrentUser(ctx context.Context, userID uint64) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound.WrapMessage("authenticated user no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load current user")
	}

	return user, nil
}

// authenticate resolves the user for a credentials pair. An unknown email
// and a wrong password fail identically.
func (srv *authService) authenticate(ctx context.Context, input usecase.CredentialsInput) (*entity.User, error) {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Warn("Signin failed, unknown email", slog.String("email", input.Email))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("unknown email")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by email")
	}

	ok, err := srv.hasher.Verify(user.PasswordHash, input.Password)
	if err != nil {
		srv.log(ctx).Error("Stored password hash is unreadable", slog.Uint64("userID", user.ID), slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to verify password")
	}
	if !ok {
		srv.log(ctx).Warn("Signin failed, password mismatch", slog.Uint64("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("password mismatch")
	}

	return user, nil
}

// issueSession mints a pair for user and stores the refresh hash through userRepo.
func (srv *authService) issueSession(ctx context.Context, userRepo repository.UserRepository, user *entity.User) (*entity.TokenPair, error) {
	pair, refreshHash, err := srv.mintSession(user)
	if err != nil {
		return nil, err
	}

	err = userRepo.SetRefreshTokenHash(ctx, user.ID, refreshHash)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Warn("Signin failed, user removed before session was stored", slog.Uint64("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("user no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to store refresh token hash")
	}

	return pair, nil
}

// mintSession signs both tokens concurrently and hashes the refresh token.
func (srv *authService) mintSession(user *entity.User) (*entity.TokenPair, string, error) {
	identity := entity.Identity{UserID: user.ID, Email: user.Email}

	var (
		pair entity.TokenPair
		g    errgroup.Group
	)
	g.Go(func() error {
		token, err := srv.tokenService.Sign(service.TokenKindAccess, identity)
		pair.AccessToken = token

		return errors.Wrap(err, "failed to sign access token")
	})
	g.Go(func() error {
		token, err := srv.tokenService.Sign(service.TokenKindRefresh, identity)
		pair.RefreshToken = token

		return errors.Wrap(err, "failed to sign refresh token")
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	refreshHash, err := srv.hasher.Hash(pair.RefreshToken)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to hash refresh token")
	}

	return &pair, refreshHash, nil
}

func (srv *authService) accessTokenFor(user *entity.User) (*usecase.AccessTokenOutput, error) {
	token, err := srv.tokenService.Sign(service.TokenKindAccess, entity.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign access token")
	}

	return &usecase.AccessTokenOutput{AccessToken: token}, nil
}
