package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/iliyamo/event-enrollment-api/internal/database"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time‑to‑live in minutes
	RefreshTTLDays int    // refresh token time‑to‑live in days
	BcryptCost     int    // bcrypt cost for password hashing
	MigrateOnStart bool   // apply pending migrations before serving
	AMQPURL        string // RabbitMQ URL; empty disables enrollment notifications
	Logging        LoggingConfig
}

// LoggingConfig selects the zerolog level and output format.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// Database returns the connection settings for internal/database.
func (c Config) Database() database.Settings {
	return database.Settings{User: c.DBUser, Pass: c.DBPass, Host: c.DBHost, Port: c.DBPort, Name: c.DBName}
}

// Load reads an optional .env file and then the environment. Every
// missing or malformed variable is reported in a single error.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env is fine; real env vars win

	l := &loader{}
	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           l.must("APP_PORT"),
		DBUser:         l.must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         l.must("DB_HOST"),
		DBPort:         l.must("DB_PORT"),
		DBName:         l.must("DB_NAME"),
		JWTSecret:      l.must("JWT_SECRET"),
		AccessTTLMin:   l.intOr("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays: l.intOr("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     l.intOr("BCRYPT_COST", 10),
		MigrateOnStart: envBool("MIGRATE_ON_START", false),
		AMQPURL:        firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
		Logging: LoggingConfig{
			Level:  envStr("LOG_LEVEL", "info"),
			Format: envStr("LOG_FORMAT", "json"),
		},
	}
	if err := l.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type loader struct {
	problems []string
}

// must retrieves the value of a required environment variable.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		l.problems = append(l.problems, "missing required env var: "+key)
	}
	return v
}

// intOr parses an optional integer, recording malformed values.
func (l *loader) intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.problems = append(l.problems, fmt.Sprintf("invalid int for %s: %q", key, s))
		return def
	}
	return n
}

func (l *loader) err() error {
	if len(l.problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(l.problems, "; "))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
