package main

import (
	"context"
	"log/slog"
	"os"

	"chrono/config"
	"chrono/internal/delivery"
	"chrono/internal/delivery/http"
	"chrono/internal/delivery/http/middleware"
	"chrono/internal/delivery/http/router/handler"
	"chrono/internal/domain/service"
	"chrono/internal/infra/auth"
	"chrono/internal/infra/clock"
	logs "chrono/internal/infra/log"
	"chrono/internal/infra/persistence/postgres"
	"chrono/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newPasswordHasher,
			auth.NewRandomTokenSource,
			clock.NewSystemClock,
		),
	)
}

// newPasswordHasher creates a bcrypt hasher honoring the configured cost.
func newPasswordHasher(cfg *config.Config) service.PasswordHasher {
	if cfg.Auth == nil || cfg.Auth.BcryptCost == 0 {
		return auth.NewBcryptHasher()
	}

	return auth.NewBcryptHasherWithCost(cfg.Auth.BcryptCost)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewAppointmentService,
			impl.NewHistoryService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewSessionMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewAppointmentHandler,
			handler.NewHistoryHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
