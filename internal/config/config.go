package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// PlaceholderAdminKey is only acceptable outside production.
const PlaceholderAdminKey = "dev-admin-key"

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Env      string `yaml:"env"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	StoreDriver string   `yaml:"storeDriver"`
	Postgres    Postgres `yaml:"postgres"`
	Mongo       Mongo    `yaml:"mongo"`

	AdminAPIKey string `yaml:"adminApiKey"`

	ReadyAttempts int           `yaml:"readyAttempts"`
	ReadyDelay    time.Duration `yaml:"readyDelay"`
	QueryTimeout  time.Duration `yaml:"queryTimeout"`

	CORSAllowedOrigins []string `yaml:"corsAllowedOrigins"`

	Notify Notify `yaml:"notify"`
}

type Postgres struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	SSLMode      string `yaml:"sslMode"`
	LogLevel     string `yaml:"logLevel"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
}

type Mongo struct {
	URI         string `yaml:"uri"`
	Database    string `yaml:"database"`
	MaxPoolSize uint64 `yaml:"maxPoolSize"`
}

// Notify configures e-mail delivery of new-feedback notices. Delivery is
// enabled only when both ResendAPIKey and To are set.
type Notify struct {
	ResendAPIKey string   `yaml:"resendApiKey"`
	From         string   `yaml:"from"`
	To           []string `yaml:"to"`
}

func (n Notify) Enabled() bool {
	return n.ResendAPIKey != "" && len(n.To) > 0
}

// Defaults returns the development configuration.
func Defaults() Config {
	return Config{
		Env:         "development",
		Port:        "8080",
		LogLevel:    "info",
		StoreDriver: DriverPostgres,
		Postgres: Postgres{
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Password:     "postgres",
			Name:         "postgres",
			SSLMode:      "disable",
			LogLevel:     "warn",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Mongo: Mongo{
			URI:      "mongodb://localhost:27017",
			Database: "feedback",
		},
		ReadyAttempts:      15,
		ReadyDelay:         time.Second,
		QueryTimeout:       5 * time.Second,
		CORSAllowedOrigins: []string{"*"},
		Notify: Notify{
			From: "Feedback <feedback@example.com>",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (if any), then the environment. A .env file in the working directory is
// loaded into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, relying on environment variables")
	}

	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read config file %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "could not parse config file %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.Env = getEnv("APP_ENV", c.Env)
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.StoreDriver = getEnv("STORE_DRIVER", c.StoreDriver)
	c.AdminAPIKey = getEnv("ADMIN_API_KEY", c.AdminAPIKey)

	c.Postgres.Host = getEnv("DB_HOST", c.Postgres.Host)
	c.Postgres.User = getEnv("DB_USER", c.Postgres.User)
	c.Postgres.Password = getEnv("DB_PASSWORD", c.Postgres.Password)
	c.Postgres.Name = getEnv("DB_NAME", c.Postgres.Name)
	c.Postgres.SSLMode = getEnv("DB_SSLMODE", c.Postgres.SSLMode)
	c.Postgres.LogLevel = getEnv("DB_LOG_LEVEL", c.Postgres.LogLevel)

	c.Mongo.URI = getEnv("MONGODB_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGODB_DATABASE", c.Mongo.Database)

	c.Notify.ResendAPIKey = getEnv("RESEND_API_KEY", c.Notify.ResendAPIKey)
	c.Notify.From = getEnv("FROM_EMAIL", c.Notify.From)
	c.Notify.To = getEnvAsList("NOTIFY_EMAIL", c.Notify.To)
	c.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)

	var err error
	if c.Postgres.Port, err = getEnvAsInt("DB_PORT", c.Postgres.Port); err != nil {
		return err
	}
	if c.Postgres.MaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", c.Postgres.MaxOpenConns); err != nil {
		return err
	}
	if c.Postgres.MaxIdleConns, err = getEnvAsInt("DB_MAX_IDLE_CONNS", c.Postgres.MaxIdleConns); err != nil {
		return err
	}
	if c.ReadyAttempts, err = getEnvAsInt("READY_ATTEMPTS", c.ReadyAttempts); err != nil {
		return err
	}
	if c.ReadyDelay, err = getEnvAsDuration("READY_DELAY", c.ReadyDelay); err != nil {
		return err
	}
	if c.QueryTimeout, err = getEnvAsDuration("QUERY_TIMEOUT", c.QueryTimeout); err != nil {
		return err
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate rejects configurations the service must not start with. Outside
// production a missing admin key falls back to PlaceholderAdminKey.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return errors.Errorf("unknown STORE_DRIVER %q (want postgres, mongo or memory)", c.StoreDriver)
	}

	if c.ReadyAttempts < 1 {
		return errors.Errorf("READY_ATTEMPTS must be at least 1, got %d", c.ReadyAttempts)
	}
	if c.ReadyDelay < 0 {
		return errors.Errorf("READY_DELAY must not be negative, got %s", c.ReadyDelay)
	}
	if c.QueryTimeout <= 0 {
		return errors.Errorf("QUERY_TIMEOUT must be positive, got %s", c.QueryTimeout)
	}

	if c.IsProduction() {
		if c.AdminAPIKey == "" || c.AdminAPIKey == PlaceholderAdminKey {
			return errors.New("ADMIN_API_KEY must be set explicitly in production")
		}
		if c.StoreDriver == DriverMemory {
			return errors.New("the memory store cannot be used in production")
		}
		return nil
	}

	if c.AdminAPIKey == "" {
		log.Warnf("ADMIN_API_KEY not set, using the development placeholder %q", PlaceholderAdminKey)
		c.AdminAPIKey = PlaceholderAdminKey
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return n, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return d, nil
}

func getEnvAsList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
