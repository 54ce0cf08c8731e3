package main

import (
	"context"
	"log/slog"
	"os"

	"authsvc/config"
	"authsvc/internal/delivery"
	"authsvc/internal/delivery/api"
	apimiddleware "authsvc/internal/delivery/api/middleware"
	"authsvc/internal/delivery/api/router"
	"authsvc/internal/delivery/api/router/handler"
	"authsvc/internal/errors"
	"authsvc/internal/infra/auth"
	logs "authsvc/internal/infra/log"
	"authsvc/internal/infra/persistence/postgres"
	"authsvc/internal/usecase/impl"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// fx only runs the lifecycle; every dependency is built by hand in build.
func main() {
	fx.New(
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
		fx.Provide(
			context.Background,
			build,
		),
		fx.Invoke(startServer),
	).Run()
}

func build(lc fx.Lifecycle) (delivery.Delivery, *slog.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load config")
	}

	logger, err := logs.New(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create logger")
	}

	db, err := postgres.New(postgres.Params{Lifecycle: lc, Config: cfg, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get sql.DB")
	}

	tokenService, err := auth.NewJWTService(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create token service")
	}

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		TxManager:    postgres.NewTransactionManager(db),
		UserRepo:     postgres.NewUserRepository(db),
		Hasher:       auth.NewArgon2Hasher(cfg.PasswordHash),
		TokenService: tokenService,
		Logger:       logger,
	})

	r := router.NewRouter(router.RouterParams{
		AuthHandler:   handler.NewAuthHandler(authUC, logger),
		UserHandler:   handler.NewUserHandler(authUC),
		HealthHandler: handler.NewHealthHandler(sqlDB),
		Guard:         apimiddleware.NewGuard(tokenService),
	})

	server, err := api.NewServer(api.ServerParams{Lc: lc, Cfg: cfg, Logger: logger, Router: r})
	if err != nil {
		return nil, nil, err
	}

	return server, logger, nil
}

// startServer serves once every OnStart hook (DB ping, migrations) has run.
func startServer(lc fx.Lifecycle, ctx context.Context, server delivery.Delivery, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := server.Serve(ctx); err != nil {
					logger.Error("Failed to start server", slog.Any("error", err))
					os.Exit(1)
				}
			}()

			return nil
		},
	})
}
