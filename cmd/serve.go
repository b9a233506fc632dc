package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bus-booking/handlers"
	"bus-booking/security"
	"bus-booking/utils"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the booking screen over HTTP",
	RunE:  withApp(runServe),
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string, a *app) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = a.cfg.ListenAddr
	}

	var guardStore redis.Cmdable
	var health func(ctx context.Context) error
	if a.redis != nil {
		guardStore = a.redis
		health = func(ctx context.Context) error { return utils.RedisHealthCheck(ctx, a.redis) }
	}

	e := echo.New()
	handlers.RegisterRoutes(e, handlers.RouteDeps{
		Session:     a.session,
		Settings:    handlers.NewSettingsHandler(a.client, a.prefs, a.logger),
		SubmitGuard: security.NewSubmitGuard(guardStore, a.cfg.SubmitGuardWindow, a.logger).Middleware(),
		Health:      health,
		Metrics:     a.cfg.EnableMetrics,
		Logger:      a.logger,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.WithFields(logrus.Fields{
			"addr":    addr,
			"api_url": a.client.BaseURL(),
		}).Info("booking screen listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutdown signal received, cleaning up...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
