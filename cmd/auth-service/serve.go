package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/r2r72/login-service/cmd/auth-service/handlers"
	"github.com/r2r72/login-service/internal/config"
	"github.com/r2r72/login-service/internal/logging"
	"github.com/r2r72/login-service/internal/metrics"
	"github.com/r2r72/login-service/internal/repository/pg"
	"github.com/r2r72/login-service/internal/service/auth"
	"github.com/r2r72/login-service/internal/service/token"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// === Инициализация зависимостей ===
	db, err := pg.NewDB(ctx, poolConfig(cfg))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	codec, err := token.NewCodec(token.Config{
		Secret:         []byte(cfg.JWTSecret),
		Algorithm:      cfg.JWTAlgorithm,
		Expiry:         cfg.JWTExpiresIn,
		ExtendedExpiry: cfg.JWTRememberMeExpiresIn,
	}, logger)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	repo := pg.NewAuthRepository(db, logger)
	m := metrics.New()
	svc := auth.NewAuthService(cfg.AccountID, repo, codec, logger, auth.WithObserver(m))

	api := handlers.NewAPI(handlers.Deps{
		Service:        svc,
		Verifier:       codec,
		DB:             repo,
		Metrics:        m.Handler(),
		Logger:         logger,
		TrustedProxies: cfg.TrustedProxies,
		Production:     cfg.IsProduction(),
	})

	// === Настройка HTTP-сервера ===
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("auth service started",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("env", cfg.Env),
			zap.Int64("account_id", cfg.AccountID),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// === Graceful shutdown ===
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("auth service stopped with error", zap.Error(err))
		return err
	}
	logger.Info("auth service stopped")
	return nil
}

func poolConfig(cfg *config.Config) pg.PoolConfig {
	return pg.PoolConfig{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		ConnectTimeout:  cfg.DBConnectTimeout,
	}
}
