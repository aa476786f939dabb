package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration values. It is built once in main
// and passed by value; nothing reads the environment after startup.
type Config struct {
	Env        string        // application environment (e.g. "development", "production")
	Port       string        // HTTP port to listen on
	DBUser     string        // database username
	DBPass     string        // database password (optional)
	DBHost     string        // database host address
	DBPort     string        // database port number
	DBName     string        // database name
	JWTSecret  string        // secret used to sign session tokens
	SessionTTL time.Duration // lifetime of a session token and its cookie
	BcryptCost int           // bcrypt cost for password hashing
	LogLevel   string        // zerolog level name
	LogFormat  string        // json or console
	Events     EventsConfig  // RabbitMQ user events
	Redis      RedisConfig   // response cache backend
	Cache      CacheConfig   // response cache behaviour
}

// EventsConfig controls the user.deleted publisher and consumer. An empty
// URL disables both.
type EventsConfig struct {
	URL                    string
	RevokeSessionsOnDelete bool // consumer deletes a soft-deleted user's sessions
}

// Enabled reports whether a broker URL was configured.
func (e EventsConfig) Enabled() bool { return e.URL != "" }

// IsProduction reports whether the service runs in production. Session
// cookies are marked Secure only there.
func (c Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "production", "prod":
		return true
	}
	return false
}

// Load reads configuration values from environment variables. Every
// missing or malformed required variable is reported in the returned error.
func Load() (Config, error) {
	l := &loader{lookup: os.LookupEnv}
	cfg := Config{
		Env:        l.must("APP_ENV"),
		Port:       l.must("APP_PORT"),
		DBUser:     l.must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     l.must("DB_HOST"),
		DBPort:     l.must("DB_PORT"),
		DBName:     l.must("DB_NAME"),
		JWTSecret:  l.must("JWT_SECRET"),
		SessionTTL: l.duration("SESSION_TTL", time.Hour),
		BcryptCost: l.mustInt("BCRYPT_COST"),
		LogLevel:   envStr("LOG_LEVEL", "info"),
		LogFormat:  envStr("LOG_FORMAT", "json"),
		Events: EventsConfig{
			URL:                    firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
			RevokeSessionsOnDelete: envBool("REVOKE_SESSIONS_ON_DELETE", false),
		},
		Redis: LoadRedisConfig(),
		Cache: LoadCacheConfig(),
	}
	if cfg.SessionTTL <= 0 {
		l.fail("SESSION_TTL must be positive")
	}
	if cfg.BcryptCost != 0 && (cfg.BcryptCost < 4 || cfg.BcryptCost > 31) {
		l.fail(fmt.Sprintf("BCRYPT_COST must be between 4 and 31 (got %d)", cfg.BcryptCost))
	}
	if len(l.errs) > 0 {
		return Config{}, errors.Join(l.errs...)
	}
	return cfg, nil
}

// LoadDatabase reads only the variables the maintenance commands need.
func LoadDatabase() (Config, error) {
	l := &loader{lookup: os.LookupEnv}
	cfg := Config{
		Env:        envStr("APP_ENV", "development"),
		DBUser:     l.must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     l.must("DB_HOST"),
		DBPort:     l.must("DB_PORT"),
		DBName:     l.must("DB_NAME"),
		BcryptCost: envInt("BCRYPT_COST", 12),
		LogLevel:   envStr("LOG_LEVEL", "info"),
		LogFormat:  envStr("LOG_FORMAT", "console"),
	}
	if len(l.errs) > 0 {
		return Config{}, errors.Join(l.errs...)
	}
	return cfg, nil
}

// loader collects errors instead of exiting on the first missing variable.
type loader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (l *loader) fail(msg string) { l.errs = append(l.errs, errors.New(msg)) }

// must retrieves the value of a required environment variable.
func (l *loader) must(key string) string {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		l.fail("missing required env var: " + key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func (l *loader) mustInt(key string) int {
	s := l.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.fail(fmt.Sprintf("invalid int for %s: %q", key, s))
	}
	return n
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.fail(fmt.Sprintf("invalid duration for %s: %q", key, v))
		return def
	}
	return d
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
