package config

import (
	"cmp"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Polling PollingConfig
	Admin   AdminConfig
	Email   EmailConfig
	CORS    CORSConfig
	Log     LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// StorageConfig selects the local data directory and the optional hosted tier.
type StorageConfig struct {
	LocalDir string
	Hosted   HostedConfig
}

// HostedConfig describes the hosted relational store. An empty DSN disables it.
type HostedConfig struct {
	Driver   string // "sqlite" or "postgres"
	DSN      string
	Postgres PostgresConfig
}

// PostgresConfig builds a lib/pq connection string from discrete settings.
type PostgresConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
	SSLMode  string
}

// PollingConfig controls the price-update loop.
type PollingConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Interval       time.Duration `yaml:"interval"`
	RequestDelay   time.Duration `yaml:"request_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PriceAPIURL    string        `yaml:"price_api_url"`
}

// AdminConfig holds the admin gate settings.
type AdminConfig struct {
	Password   string
	Email      string
	SessionTTL time.Duration
	SessionKey string // base64 fernet key; generated at startup when empty
}

// EmailConfig holds the simulated mail transport settings.
type EmailConfig struct {
	From              string        `yaml:"from"`
	SendDelay         time.Duration `yaml:"send_delay"`
	VerificationDelay time.Duration `yaml:"verification_delay"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string
}

// fileConfig is the subset of settings that may be overridden by a YAML file.
type fileConfig struct {
	Polling *PollingConfig `yaml:"polling"`
	Email   *EmailConfig   `yaml:"email"`
	CORS    *CORSConfig    `yaml:"cors"`
}

// Load reads configuration from environment variables and .env file,
// then applies the YAML file named by CONFIG_FILE if set.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5002"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Storage: StorageConfig{
			LocalDir: getEnv("LOCAL_DATA_DIR", "./data/local"),
			Hosted: HostedConfig{
				Driver: getEnv("HOSTED_DB_DRIVER", "sqlite"),
				DSN:    os.Getenv("HOSTED_DB_DSN"),
				Postgres: PostgresConfig{
					Host:     os.Getenv("POSTGRES_HOST"),
					Port:     os.Getenv("POSTGRES_PORT"),
					Username: os.Getenv("POSTGRES_USERNAME"),
					Password: os.Getenv("POSTGRES_PASSWORD"),
					DBName:   os.Getenv("POSTGRES_DB_NAME"),
					SSLMode:  os.Getenv("POSTGRES_SSL_MODE"),
				},
			},
		},
		Polling: PollingConfig{
			Enabled:        getEnvBool("POLLING_ENABLED", true),
			Interval:       getEnvDuration("POLLING_INTERVAL", 0),
			RequestDelay:   getEnvDuration("POLLING_REQUEST_DELAY", 0),
			RequestTimeout: getEnvDuration("PRICE_API_TIMEOUT", 0),
			PriceAPIURL:    os.Getenv("PRICE_API_URL"),
		},
		Admin: AdminConfig{
			Password:   getEnv("ADMIN_PASSWORD", "admin123"),
			Email:      getEnv("ADMIN_EMAIL", "admin@cryptoportfolio.com"),
			SessionTTL: getEnvDuration("ADMIN_SESSION_TTL", 24*time.Hour),
			SessionKey: os.Getenv("ADMIN_SESSION_KEY"),
		},
		Email: EmailConfig{
			From:              os.Getenv("EMAIL_FROM"),
			SendDelay:         getEnvDuration("EMAIL_SEND_DELAY", 100*time.Millisecond),
			VerificationDelay: getEnvDuration("EMAIL_VERIFICATION_DELAY", time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.applyFile(path); err != nil {
			return nil, err
		}
	}

	config.Setup()

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// Setup fills unset values with their defaults.
func (c *Config) Setup() *Config {
	const (
		defaultInterval       = 30 * time.Second
		defaultRequestDelay   = 100 * time.Millisecond
		defaultRequestTimeout = 10 * time.Second
		defaultPriceAPIURL    = "https://api.dexscreener.com"
		defaultFrom           = "alerts@cryptoportfolio.com"
	)

	c.Polling.Interval = cmp.Or(c.Polling.Interval, defaultInterval)
	c.Polling.RequestDelay = cmp.Or(c.Polling.RequestDelay, defaultRequestDelay)
	c.Polling.RequestTimeout = cmp.Or(c.Polling.RequestTimeout, defaultRequestTimeout)
	c.Polling.PriceAPIURL = strings.TrimRight(cmp.Or(c.Polling.PriceAPIURL, defaultPriceAPIURL), "/")
	c.Email.From = cmp.Or(c.Email.From, defaultFrom)
	c.Admin.SessionTTL = cmp.Or(c.Admin.SessionTTL, 24*time.Hour)
	if c.Storage.Hosted.Driver == "postgres" {
		c.Storage.Hosted.Postgres.Setup()
	}

	return c
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys absent from the file keep their env values.
	fc := fileConfig{
		Polling: &c.Polling,
		Email:   &c.Email,
		CORS:    &c.CORS,
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// HostedEnabled reports whether a hosted store is configured.
func (h HostedConfig) HostedEnabled() bool {
	return h.ConnectionString() != ""
}

// ConnectionString returns the DSN to open, preferring an explicit HOSTED_DB_DSN.
func (h HostedConfig) ConnectionString() string {
	if h.DSN != "" {
		return h.DSN
	}
	if h.Driver == "postgres" && h.Postgres.Host != "" {
		return h.Postgres.String()
	}
	return ""
}

func (c *PostgresConfig) Setup() *PostgresConfig {
	const (
		defaultPort     = "5432"
		defaultUsername = "postgres"
		defaultPassword = "postgres"
		defaultDBName   = "postgres"
		defaultSSLMode  = "disable"
	)

	c.Port = cmp.Or(c.Port, defaultPort)
	if _, err := strconv.Atoi(c.Port); err != nil {
		c.Port = defaultPort
	}
	c.Username = cmp.Or(c.Username, defaultUsername)
	c.Password = cmp.Or(c.Password, defaultPassword)
	c.DBName = cmp.Or(c.DBName, defaultDBName)
	c.SSLMode = cmp.Or(c.SSLMode, defaultSSLMode)

	return c
}

func (c PostgresConfig) String() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.DBName, c.Password, c.SSLMode,
	)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
