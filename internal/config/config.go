package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env  string
	Port int

	DataBackend string
	DBURL       string
	DBMaxConns  int

	SessionSecret   string
	SessionTTLHours int
	SessionStore    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminID       string
	AdminEmail    string
	AdminPassword string
	AdminName     string
	SeedDemo      bool

	CORSAllowedOrigins []string
	LoginRateLimit     int

	TracingEnabled   bool
	OTLPEndpoint     string
	TraceSampleRatio float64
}

func Load() Config {
	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DataBackend: getEnv("DATA_BACKEND", BackendMemory),
		DBURL:       getEnv("DATABASE_URL", buildDBURL()),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 5),

		SessionSecret:   getEnv("SESSION_SECRET", ""),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 168),
		SessionStore:    getEnv("SESSION_STORE", SessionStoreMemory),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AdminID:       getEnv("ADMIN_ID", "admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@empresa.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrador"),
		SeedDemo:      getEnvBool("SEED_DEMO", false),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		LoginRateLimit:     getEnvInt("LOGIN_RATE_LIMIT", 10),

		TracingEnabled:   getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TraceSampleRatio: getEnvFloat("TRACE_SAMPLE_RATIO", 1),
	}
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DBURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATA_BACKEND must be %q or %q, got %q", BackendMemory, BackendPostgres, c.DataBackend))
	}

	switch {
	case c.SessionSecret == "":
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	case c.IsProd() && len(c.SessionSecret) < 32:
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes in prod"))
	}

	if c.SessionTTLHours <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL_HOURS must be positive, got %d", c.SessionTTLHours))
	}

	if c.DBMaxConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns))
	}

	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis session store"))
		}
		if c.RedisDB < 0 {
			errs = append(errs, errors.New("REDIS_DB must be a non-negative integer"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.SessionStore))
	}

	if c.AdminID == "" {
		errs = append(errs, errors.New("ADMIN_ID must not be empty"))
	}
	// the memory store starts empty, so the primary admin must be seedable
	if c.DataBackend == BackendMemory && (c.AdminEmail == "" || c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required for the memory backend"))
	}
	if c.AdminPassword != "" && len(c.AdminPassword) < 6 {
		errs = append(errs, errors.New("ADMIN_PASSWORD must be at least 6 characters"))
	}

	if c.LoginRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_LIMIT must be positive, got %d", c.LoginRateLimit))
	}

	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		errs = append(errs, fmt.Errorf("TRACE_SAMPLE_RATIO must be between 0 and 1, got %g", c.TraceSampleRatio))
	}

	return errors.Join(errs...)
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "valehub")
	pass := getEnv("DB_PASSWORD", "valehub")
	name := getEnv("DB_NAME", "valehub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// getEnvInt returns -1 for values that do not parse so Validate can report them.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			return -1
		}
		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return -1
		}
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
