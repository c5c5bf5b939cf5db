package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fkhayef/splitsettle/internal/config"
	mw "github.com/fkhayef/splitsettle/pkg/middleware"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openDatabase(ctx, cfg, migrate)
			if err != nil {
				return err
			}
			defer db.Close()

			a, err := newApp(ctx, cfg, db)
			if err != nil {
				return err
			}
			defer a.Close()

			auth := mw.NewAuthenticator(cfg.JWTSecret)
			if auth.DevMode() {
				slog.Warn("JWT_SECRET is not set; trusting the " + mw.DevUserHeader + " header")
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           a.router(auth),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("Server starting", "port", cfg.Port)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "create missing tables before serving")
	return cmd
}
