package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config stores service settings.
type Config struct {
	Port       int
	DB         DB
	Storage    Storage
	Redis      Redis
	Kafka      Kafka
	Assignment Assignment
	Notifier   Notifier
	Auth       Auth
	RateLimit  RateLimit
	Log        Log
}

// DB stores PostgreSQL connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns a pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		d.User, d.Pass, net.JoinHostPort(d.Host, d.Port), d.Name)
}

// Storage selects the delivery store.
type Storage struct {
	Driver string
}

// Redis stores the location and rate limit backend address. Empty Addr disables both.
type Redis struct {
	Addr        string
	LocationTTL time.Duration
}

// Kafka stores broker settings. No brokers disables publishing and intake.
type Kafka struct {
	Brokers     []string
	EventsTopic string
	IntakeTopic string
	GroupID     string
}

// Assignment stores assignment manager settings.
type Assignment struct {
	MaxActiveLoad      int
	AutoAssignSchedule string
	OperationTimeout   time.Duration
}

// Notifier stores queue and retry settings of the event publisher.
type Notifier struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	QueueSize   int
	SendTimeout time.Duration
}

// Auth stores the token verification secret.
type Auth struct {
	JWTSecret string
}

// RateLimit stores per-caller request limits.
type RateLimit struct {
	Enabled bool
	Limit   int64
	Window  time.Duration
}

// Log stores logger settings.
type Log struct {
	Format string
	Level  string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := Default()
	e := envReader{}

	cfg.Port = e.int("PORT", cfg.Port)

	cfg.DB.Host = e.str("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = e.str("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = e.str("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = e.str("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = e.str("POSTGRES_DB", cfg.DB.Name)

	cfg.Storage.Driver = e.str("STORAGE_DRIVER", cfg.Storage.Driver)

	cfg.Redis.Addr = e.str("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.LocationTTL = e.duration("REDIS_LOCATION_TTL", cfg.Redis.LocationTTL)

	cfg.Kafka.Brokers = e.list("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.EventsTopic = e.str("KAFKA_EVENTS_TOPIC", cfg.Kafka.EventsTopic)
	cfg.Kafka.IntakeTopic = e.str("KAFKA_INTAKE_TOPIC", cfg.Kafka.IntakeTopic)
	cfg.Kafka.GroupID = e.str("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	cfg.Assignment.MaxActiveLoad = e.int("ASSIGNMENT_MAX_ACTIVE_LOAD", cfg.Assignment.MaxActiveLoad)
	cfg.Assignment.AutoAssignSchedule = e.str("ASSIGNMENT_AUTO_SCHEDULE", cfg.Assignment.AutoAssignSchedule)
	cfg.Assignment.OperationTimeout = e.duration("OPERATION_TIMEOUT", cfg.Assignment.OperationTimeout)

	cfg.Notifier.MaxAttempts = e.int("NOTIFIER_MAX_ATTEMPTS", cfg.Notifier.MaxAttempts)
	cfg.Notifier.BaseDelay = e.duration("NOTIFIER_BASE_DELAY", cfg.Notifier.BaseDelay)
	cfg.Notifier.MaxDelay = e.duration("NOTIFIER_MAX_DELAY", cfg.Notifier.MaxDelay)
	cfg.Notifier.QueueSize = e.int("NOTIFIER_QUEUE_SIZE", cfg.Notifier.QueueSize)
	cfg.Notifier.SendTimeout = e.duration("NOTIFIER_SEND_TIMEOUT", cfg.Notifier.SendTimeout)

	cfg.Auth.JWTSecret = e.str("JWT_SECRET", cfg.Auth.JWTSecret)

	cfg.RateLimit.Enabled = e.bool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.Limit = int64(e.int("RATE_LIMIT_LIMIT", int(cfg.RateLimit.Limit)))
	cfg.RateLimit.Window = e.duration("RATE_LIMIT_WINDOW", cfg.RateLimit.Window)

	cfg.Log.Format = e.str("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Level = e.str("LOG_LEVEL", cfg.Log.Level)

	if err := e.err(); err != nil {
		return nil, err
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.StringVar(&cfg.Storage.Driver, "storage", cfg.Storage.Driver, "delivery store: postgres|memory")
	pflag.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log encoder: json|zap")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if p, err := strconv.Atoi(c.DB.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid POSTGRES_PORT: %q", c.DB.Port)
	}
	switch c.Storage.Driver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("invalid storage driver: %q", c.Storage.Driver)
	}
	if c.Assignment.MaxActiveLoad < 0 {
		return fmt.Errorf("invalid max active load: %d", c.Assignment.MaxActiveLoad)
	}
	if c.Assignment.OperationTimeout <= 0 {
		return fmt.Errorf("invalid operation timeout: %s", c.Assignment.OperationTimeout)
	}
	if _, err := cron.ParseStandard(c.Assignment.AutoAssignSchedule); err != nil {
		return fmt.Errorf("invalid auto-assign schedule %q: %w", c.Assignment.AutoAssignSchedule, err)
	}
	if c.Notifier.MaxAttempts <= 0 {
		return fmt.Errorf("invalid notifier attempts: %d", c.Notifier.MaxAttempts)
	}
	if c.Notifier.QueueSize <= 0 || c.Notifier.SendTimeout <= 0 {
		return fmt.Errorf("invalid notifier queue: size %d, timeout %s", c.Notifier.QueueSize, c.Notifier.SendTimeout)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit: %d per %s", c.RateLimit.Limit, c.RateLimit.Window)
	}
	switch c.Log.Format {
	case "json", "zap":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}
	return nil
}

// envReader reads typed environment variables and remembers the first parse error.
type envReader struct {
	first error
}

func (r *envReader) fail(key, v string, err error) {
	if r.first == nil {
		r.first = fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
}

func (r *envReader) err() error { return r.first }

func (r *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *envReader) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *envReader) bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

func (r *envReader) list(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
