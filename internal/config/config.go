package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"hub-ops-service/internal/domain"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Store       string
	DatabaseURL string
	Port        string

	Hub      domain.Coordinates
	Location *time.Location

	ReferenceTTL        time.Duration
	SuggestionLimit     int
	CoordinateSanitizer string

	// Optional integrations; empty disables them.
	RedisURL     string
	RabbitMQURL  string
	MQTTBroker   string
	MQTTClientID string
}

// LoadDotEnv reads .env into the process environment when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	return load(strings.ToLower(getEnv("STORE", StorePostgres)))
}

// LoadWithStore reads configuration like Load but ignores STORE, so a
// memory-backed tool does not need DATABASE_URL.
func LoadWithStore(store string) (*Config, error) {
	return load(store)
}

func load(store string) (*Config, error) {
	cfg := &Config{
		Store:               store,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Port:                getEnv("PORT", "8080"),
		CoordinateSanitizer: getEnv("COORDINATE_SANITIZER", "scaled"),
		RedisURL:            os.Getenv("REDIS_URL"),
		RabbitMQURL:         os.Getenv("RABBITMQ_URL"),
		MQTTBroker:          os.Getenv("MQTT_BROKER"),
		MQTTClientID:        getEnv("MQTT_CLIENT_ID", "hub-ops-service"),
	}

	var err error
	if cfg.Hub.Lat, err = getFloat("HUB_LAT", -8.791172513071563); err != nil {
		return nil, err
	}
	if cfg.Hub.Lon, err = getFloat("HUB_LON", -63.847713631142135); err != nil {
		return nil, err
	}
	if !cfg.Hub.Valid() {
		return nil, fmt.Errorf("config: HUB_LAT/HUB_LON out of range: %v,%v", cfg.Hub.Lat, cfg.Hub.Lon)
	}

	tz := getEnv("HUB_TIMEZONE", "America/Porto_Velho")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("config: HUB_TIMEZONE %q: %w", tz, err)
	}

	ttl := getEnv("REFERENCE_TTL", "600s")
	if cfg.ReferenceTTL, err = time.ParseDuration(ttl); err != nil {
		return nil, fmt.Errorf("config: REFERENCE_TTL %q: %w", ttl, err)
	}

	limit := getEnv("SUGGESTION_LIMIT", "3")
	if cfg.SuggestionLimit, err = strconv.Atoi(limit); err != nil || cfg.SuggestionLimit <= 0 {
		return nil, fmt.Errorf("config: SUGGESTION_LIMIT must be a positive integer, got %q", limit)
	}

	switch cfg.Store {
	case StorePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required when STORE=%s", StorePostgres)
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("config: unknown STORE %q", cfg.Store)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s %q: %w", key, v, err)
	}
	return f, nil
}
