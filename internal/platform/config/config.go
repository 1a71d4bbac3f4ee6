package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	// PostgresPingTimeout bounds the startup connectivity check.
	PostgresPingTimeout time.Duration

	// AdminAccount is the single identity allowed to assign voting power.
	// Fixed at startup; the engine never mutates it.
	AdminAccount string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

func Load() (Config, error) {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "ballotbox"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:         service,
		HTTPPort:            port,
		PostgresDSN:         os.Getenv("POSTGRES_DSN"),
		PostgresPingTimeout: envDuration("POSTGRES_PING_TIMEOUT", 5*time.Second),
		KafkaBrokers:        brokers,
		AdminAccount:        strings.TrimSpace(os.Getenv("ADMIN_ACCOUNT")),
		OutboxPollInterval:  envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:     envInt("OUTBOX_BATCH_SIZE", 100),
	}, nil
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
