package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/metrics"
	chiTransport "github.com/kailas-cloud/matchmaker/internal/transport/chi"
	"github.com/kailas-cloud/matchmaker/internal/version"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, root.env)
			if err != nil {
				return err
			}
			defer a.close()

			return serve(ctx, a)
		},
	}
}

func newRouter(a *app) http.Handler {
	server := chiTransport.NewServer(a.matching, a.entities, a.usage, a.health, a.logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(a.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(a.logger))
	r.Use(metrics.Middleware())
	return chiTransport.Handler(server, chiTransport.HandlerOptions{
		BaseRouter: r,
		Middlewares: []func(http.Handler) http.Handler{
			chiTransport.JWTAuthMiddleware(a.cfg.Auth.JWTSecret, a.cfg.Auth.Issuer),
		},
	})
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	if cfg.Auth.JWTSecret == "" {
		a.logger.Warn("auth.jwt_secret is empty, requests are anonymous and matching answers 401")
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(a),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server",
			zap.String("addr", addr),
			zap.String("version", version.Version),
			zap.String("commit", version.Commit),
			zap.String("env", a.env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	a.logger.Info("Server stopped gracefully")
	return nil
}
