package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"bus-booking/models"

	"github.com/joho/godotenv"
)

const DefaultAPIURL = "http://localhost:5000/api"

type Config struct {
	Environment string
	LogLevel    string

	// Booking API
	APIURL         string
	AuthToken      string
	RequestTimeout time.Duration

	// Local store. An empty RedisURL keeps everything in memory.
	RedisURL    string
	SnapshotTTL time.Duration

	// Fare and seat map
	PerSeatPrice int64
	Layout       models.SeatLayoutConfig

	// Adapter server
	ListenAddr        string
	SubmitGuardWindow time.Duration

	// Circuit breaker around the booking API
	BreakerMinRequests  int
	BreakerFailureRatio float64
	BreakerCooldown     time.Duration

	// Monitoring
	EnableMetrics bool
}

// LoadConfig reads the environment, after loading .env when one exists.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Booking API
		APIURL:         strings.TrimRight(getEnv("API_URL", DefaultAPIURL), "/"),
		AuthToken:      getEnv("AUTH_TOKEN", ""),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", "10s"),

		// Store
		RedisURL:    getEnv("REDIS_URL", ""),
		SnapshotTTL: getEnvAsDuration("SNAPSHOT_TTL", "0s"),

		// Fare and seat map
		PerSeatPrice: int64(getEnvAsInt("PER_SEAT_PRICE", 100)),
		Layout: models.SeatLayoutConfig{
			Rows:          getEnvAsInt("SEAT_ROWS", models.DefaultSeatLayout.Rows),
			Left:          getEnvAsInt("SEAT_LEFT", models.DefaultSeatLayout.Left),
			Right:         getEnvAsInt("SEAT_RIGHT", models.DefaultSeatLayout.Right),
			BackRowSeats:  getEnvAsInt("SEAT_BACK_ROW", models.DefaultSeatLayout.BackRowSeats),
			FrontRowsMark: getEnvAsInt("SEAT_FRONT_MARK", models.DefaultSeatLayout.FrontRowsMark),
			BackRowsMark:  getEnvAsInt("SEAT_BACK_MARK", models.DefaultSeatLayout.BackRowsMark),
		},

		// Server
		ListenAddr:        getEnv("LISTEN_ADDR", ":8090"),
		SubmitGuardWindow: getEnvAsDuration("SUBMIT_GUARD_WINDOW", "5s"),

		// Breaker
		BreakerMinRequests:  getEnvAsInt("BREAKER_MIN_REQUESTS", 20),
		BreakerFailureRatio: getEnvAsFloat("BREAKER_FAILURE_RATIO", 0.6),
		BreakerCooldown:     getEnvAsDuration("BREAKER_COOLDOWN", "30s"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
