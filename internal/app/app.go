package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-auth-api/internal/config"
	"go-auth-api/internal/database"
	"go-auth-api/internal/handler"
	"go-auth-api/internal/llm"
	"go-auth-api/internal/metrics"
	"go-auth-api/internal/middleware"
	"go-auth-api/internal/model"
	"go-auth-api/internal/repository"
	"go-auth-api/internal/router"
	"go-auth-api/internal/security"
	"go-auth-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.AutoMigrate {
		if err := Migrate(cfg.DatabaseURL, func(m *database.Migrator) error { return m.Up() }); err != nil {
			return nil, err
		}
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Pool)
	hasher := security.NewPasswordHasher(cfg.BcryptRounds)

	tokens, err := security.NewTokenCodec(security.TokenConfig{
		Secret:     cfg.SecretKey,
		Algorithm:  cfg.Algorithm,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		ResetTTL:   cfg.PasswordResetTTL,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	appMetrics := metrics.New()

	authService := service.NewAuthService(userRepo, hasher, tokens, service.LogResetNotifier{BaseURL: cfg.PasswordResetURL})
	userService := service.NewUserService(userRepo, hasher)

	providers := llm.NewProviders(llm.Config{
		OpenAIAPIKey:       cfg.OpenAIAPIKey,
		OpenAIModel:        cfg.OpenAIModel,
		OpenRouterAPIKey:   cfg.OpenRouterAPIKey,
		OpenRouterModel:    cfg.OpenRouterModel,
		OpenRouterBaseURL:  cfg.OpenRouterBaseURL,
		OpenRouterReferer:  cfg.OpenRouterReferer,
		OpenRouterAppTitle: cfg.OpenRouterAppTitle,
		HTTPClient:         &http.Client{Timeout: cfg.RequestTimeout},
	})

	appRouter := router.New(cfg, middleware.NewAuthGuard(tokens, userRepo), appMetrics, router.Handlers{
		Auth:   handler.NewAuthHandler(authService, appMetrics),
		Users:  handler.NewUserHandler(userService),
		Health: handler.NewHealthHandler(cfg.Version, cfg.Environment, cfg.APIPrefix, db),
		LLM: handler.NewLLMHandler(
			service.NewChatService(providers, appMetrics),
			service.NewBlogService(providers, appMetrics),
		),
		Docs: handler.NewDocsHandler("/openapi.yaml"),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			db.Close,
		},
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		a.cleanup()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, fn := range a.cleanupFuncs {
		fn()
	}
}

// Migrate opens a migrator for databaseURL, runs fn and closes it again.
func Migrate(databaseURL string, fn func(*database.Migrator) error) error {
	migrator, err := database.NewMigrator(databaseURL)
	if err != nil {
		return err
	}

	runErr := fn(migrator)
	if closeErr := migrator.Close(); closeErr != nil {
		slog.Warn("failed to close migrator", "error", closeErr)
	}
	return runErr
}

// CreateSuperuser inserts an active superuser account.
func CreateSuperuser(ctx context.Context, cfg *config.Config, in model.NewUser) (model.PublicUser, error) {
	db, err := database.New(ctx, cfg.DatabaseURL, 1, 0)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	users := service.NewUserService(repository.NewUserRepository(db.Pool), security.NewPasswordHasher(cfg.BcryptRounds))

	in.IsActive = true
	in.IsSuperuser = true
	return users.Create(ctx, in)
}
