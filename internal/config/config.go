package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the reservation core needs at construction
// time. Components receive it explicitly; nothing reads the environment
// after Load returns.
type Config struct {
	PostgresDSN  string
	MongoURI     string
	RedisAddr    string
	RabbitURL    string
	OTLPEndpoint string
	OpsAddr      string

	ReservationTimeout time.Duration
	SeatLockTTL        time.Duration

	SweepInterval     time.Duration
	SweepBatchSize    int
	RetentionInterval time.Duration
	RetentionWindow   time.Duration
	ObserveInterval   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		MongoURI:     os.Getenv("MONGO_URI"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RabbitURL:    os.Getenv("RABBIT_URL"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OpsAddr:      envString("OPS_ADDR", ":8081"),

		ReservationTimeout: envDuration("RESERVATION_TIMEOUT", 30*time.Second),
		SeatLockTTL:        envDuration("SEAT_LOCK_TTL", 10*time.Second),

		SweepInterval:     envDuration("SWEEP_INTERVAL", 10*time.Second),
		SweepBatchSize:    envInt("SWEEP_BATCH_SIZE", 50),
		RetentionInterval: envDuration("RETENTION_INTERVAL", time.Hour),
		RetentionWindow:   envDuration("RETENTION_WINDOW", 30*24*time.Hour),
		ObserveInterval:   envDuration("OBSERVE_INTERVAL", 5*time.Minute),
	}, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
