package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DBConfig holds the PostgreSQL connection and pool settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpen          int
	MinIdle          int
	IdleTimeout      time.Duration
	// StatementTimeout (DB_STATEMENT_TIMEOUT, formerly DB_ACQUIRE) covers
	// waiting for a connection and running the statement.
	StatementTimeout time.Duration
	MaxLifetime      time.Duration

	AutoMigrate bool
	LogLevel    string
}

// DSN returns the connection string in URL form so empty passwords survive.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type Config struct {
	Port string
	Env  string

	AllowedOrigins  []string
	RateLimit       int
	RateLimitWindow time.Duration
	BodyLimit       int64

	LogLevel string
	LogFile  string

	DB DBConfig
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads an optional .env file and then the process environment. It is
// meant to be called once at startup.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", getEnv("NODE_ENV", "development"))
	sslDefault := "disable"
	if env == "production" {
		sslDefault = "require"
	}

	return &Config{
		Port:            getEnv("PORT", "3000"),
		Env:             env,
		AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		RateLimit:       getEnvAsInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		BodyLimit:       int64(getEnvAsInt("BODY_LIMIT", 10<<20)),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
		DB: DBConfig{
			Host:             getEnv("DB_HOST", "localhost"),
			Port:             getEnv("DB_PORT", "5432"),
			User:             getEnv("DB_USER", "postgres"),
			Password:         getEnv("DB_PASSWORD", ""),
			Name:             getEnv("DB_NAME", "famlink"),
			SSLMode:          getEnv("DB_SSL_MODE", sslDefault),
			MaxOpen:          getEnvAsInt("DB_MAX", 10),
			MinIdle:          getEnvAsInt("DB_MIN", 0),
			IdleTimeout:      getEnvAsDuration("DB_IDLE", 10*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", getEnvAsDuration("DB_ACQUIRE", 30*time.Second)),
			MaxLifetime:      getEnvAsDuration("DB_EVICT", time.Hour),
			AutoMigrate:      getEnvAsBool("DB_AUTO_MIGRATE", true),
			LogLevel:         getEnv("DB_LOG_LEVEL", "warn"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("30s") or bare integers,
// which are read as milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
