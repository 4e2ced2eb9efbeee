package globals

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Context keys
type ContextKey string

const SessionKey ContextKey = "session"
const RequestIDKey ContextKey = "requestId"

var Ctx = context.Background()

// Config holds everything the dashboard reads from the environment.
type Config struct {
	Port          string
	APIBaseURL    string
	JwtSecret     []byte
	MongoURI      string
	MongoDB       string
	RedisURL      string
	RedisPassword string
	DashboardURL  string
	APIRPS        float64
	Debounce      time.Duration
	CatalogLimit  int
	CatalogTTL    time.Duration
	PreviewTTL    time.Duration
}

var ErrMissingAPIBase = errors.New("API_BASE_URL is not set")

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from any lookup function so tests do not touch the
// process environment.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:          getenv("PORT"),
		APIBaseURL:    strings.TrimRight(getenv("API_BASE_URL"), "/"),
		JwtSecret:     []byte(getenv("JWT_SECRET")),
		MongoURI:      getenv("MONGO_URI"),
		MongoDB:       getenv("MONGO_DB"),
		RedisURL:      getenv("REDIS_URL"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		DashboardURL:  strings.TrimRight(getenv("DASHBOARD_URL"), "/"),
		APIRPS:        parseFloat(getenv("API_RPS"), 10),
		Debounce:      time.Duration(parseInt(getenv("SEARCH_DEBOUNCE_MS"), 500)) * time.Millisecond,
		CatalogLimit:  parseInt(getenv("CATALOG_LIMIT"), 1000),
		CatalogTTL:    time.Duration(parseInt(getenv("CATALOG_TTL_SECONDS"), 300)) * time.Second,
		PreviewTTL:    time.Duration(parseInt(getenv("PREVIEW_TTL_MINUTES"), 60)) * time.Minute,
	}

	if cfg.Port == "" {
		cfg.Port = ":8080"
	} else if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "tripdesk"
	}
	if cfg.DashboardURL == "" {
		cfg.DashboardURL = "http://localhost" + cfg.Port
	}
	if cfg.APIBaseURL == "" {
		return cfg, ErrMissingAPIBase
	}
	return cfg, nil
}

func parseInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
