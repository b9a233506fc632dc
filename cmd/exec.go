package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"bus-booking/config"
	"bus-booking/internal/api"
	"bus-booking/internal/auth"
	"bus-booking/internal/fare"
	"bus-booking/monitoring"
	"bus-booking/services"
	"bus-booking/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	redis     *redis.Client
	snapshots services.SnapshotStore
	prefs     services.PreferenceStore
	monitor   *monitoring.Monitor
	client    *api.Client
	session   *services.BookingSession
}

var rootCmd = &cobra.Command{
	Use:           "bus-booking",
	Short:         "Bus seat booking client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.LoadConfig()
	logger := newLogger(cfg)

	a := &app{cfg: cfg, logger: logger}
	if cfg.EnableMetrics {
		a.monitor = monitoring.NewMonitor()
	}

	if cfg.RedisURL != "" {
		redisClient, err := utils.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = redisClient
		a.snapshots = services.NewSnapshotService(redisClient, cfg.SnapshotTTL)
		a.prefs = services.NewPreferenceService(redisClient)
	} else {
		logger.Warn("REDIS_URL not set, cache and preferences live in memory only")
		mem := services.NewMemoryStore()
		a.snapshots = mem
		a.prefs = mem
	}

	baseURL := cfg.APIURL
	if stored, err := a.prefs.APIURL(ctx); err != nil {
		logger.WithError(err).Warn("failed to read stored api url")
	} else if stored != "" {
		baseURL = stored
	}

	breaker := utils.NewCircuitBreaker("booking-api",
		utils.WithMinRequests(uint32(max(cfg.BreakerMinRequests, 0))),
		utils.WithFailureRatio(cfg.BreakerFailureRatio),
		utils.WithCooldown(cfg.BreakerCooldown),
	)
	a.client = api.NewClient(baseURL, auth.NewTokenSource(a.prefs, cfg.AuthToken), api.Options{
		Timeout: cfg.RequestTimeout,
		Breaker: breaker,
		Monitor: a.monitor,
		Logger:  logger,
	})

	session, err := services.NewBookingSession(services.SessionDeps{
		API:       a.client,
		Snapshots: a.snapshots,
		Prefs:     a.prefs,
		Fare:      fare.NewEngine(cfg.PerSeatPrice, fare.DefaultCatalog()),
		Layout:    cfg.Layout,
		Logger:    logger,
		Monitor:   a.monitor,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.session = session

	logger.WithFields(logrus.Fields{
		"api_url": baseURL,
		"store":   storeName(a.redis),
	}).Debug("booking client ready")
	return a, nil
}

func storeName(r *redis.Client) string {
	if r == nil {
		return "memory"
	}
	return "redis"
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
}

// withApp builds the app for one command and closes it afterwards.
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}

func splitLabels(raw string) []string {
	var labels []string
	for _, l := range strings.Split(raw, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
