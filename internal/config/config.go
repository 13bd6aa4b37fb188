// Package config loads the application configuration from, in increasing
// precedence: built-in defaults, a yaml config file, a .env file, the
// process environment, then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"gleamform/survey-backend/internal/auth/oauthprovider"
	"gleamform/survey-backend/internal/invite"
)

const DefaultSecret = "default-secret"

var ErrDatabaseURLRequired = errors.New("database URL is required")

type GeneratorConfig struct {
	BaseURL string `yaml:"base_url" envconfig:"GENERATOR_BASE_URL"`
	APIKey  string `yaml:"api_key"  envconfig:"GENERATOR_API_KEY"`
	Model   string `yaml:"model"    envconfig:"GENERATOR_MODEL"`
}

type Config struct {
	Debug                  bool                      `yaml:"debug"                    envconfig:"DEBUG"`
	Dev                    bool                      `yaml:"dev"                      envconfig:"DEV"`
	Host                   string                    `yaml:"host"                     envconfig:"HOST"`
	Port                   string                    `yaml:"port"                     envconfig:"PORT"`
	BaseURL                string                    `yaml:"base_url"                 envconfig:"BASE_URL"`
	PublicBaseURL          string                    `yaml:"public_base_url"          envconfig:"PUBLIC_BASE_URL"`
	Secret                 string                    `yaml:"secret"                   envconfig:"SECRET"`
	DatabaseURL            string                    `yaml:"database_url"             envconfig:"DATABASE_URL"`
	MigrationSource        string                    `yaml:"migration_source"         envconfig:"MIGRATION_SOURCE"`
	OtelCollectorUrl       string                    `yaml:"otel_collector_url"       envconfig:"OTEL_COLLECTOR_URL"`
	AllowOrigins           []string                  `yaml:"allow_origins"            envconfig:"ALLOW_ORIGINS"`
	AccessTokenExpiration  time.Duration             `yaml:"access_token_expiration"  envconfig:"ACCESS_TOKEN_EXPIRATION"`
	RefreshTokenExpiration time.Duration             `yaml:"refresh_token_expiration" envconfig:"REFRESH_TOKEN_EXPIRATION"`
	GoogleOauth            oauthprovider.GoogleOauth `yaml:"google_oauth"`
	Generator              GeneratorConfig           `yaml:"generator"`
	SMTP                   invite.SMTPConfig         `yaml:"smtp"`
}

func defaultConfig() Config {
	return Config{
		Host:                   "localhost",
		Port:                   "8080",
		BaseURL:                "http://localhost:8080",
		PublicBaseURL:          "http://localhost:8080",
		Secret:                 DefaultSecret,
		MigrationSource:        "file://internal/database/migrations",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 30 * 24 * time.Hour,
	}
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}
	if c.AccessTokenExpiration <= 0 || c.RefreshTokenExpiration <= 0 {
		return fmt.Errorf("token expirations must be positive, got access=%s refresh=%s",
			c.AccessTokenExpiration, c.RefreshTokenExpiration)
	}
	return nil
}

// Log buffers messages produced while loading, before the real logger exists.
type Log struct {
	entries []entry
}

type entry struct {
	level   string
	message string
}

func (l *Log) info(message string) {
	l.entries = append(l.entries, entry{level: "info", message: message})
}

func (l *Log) warn(message string) {
	l.entries = append(l.entries, entry{level: "warn", message: message})
}

func (l *Log) FlushToZap(logger *zap.Logger) {
	for _, e := range l.entries {
		switch e.level {
		case "warn":
			logger.Warn(e.message)
		default:
			logger.Info(e.message)
		}
	}
	l.entries = nil
}

func Load() (Config, *Log) {
	cfgLog := &Log{}
	cfg := defaultConfig()

	configPath := flag.String("config", "", "path to yaml config file")
	databaseURL := flag.String("database_url", "", "database connection URL")
	host := flag.String("host", "", "server bind host")
	port := flag.String("port", "", "server bind port")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}
	cfg = loadFromFile(cfg, path, cfgLog)

	if err := godotenv.Load(); err != nil {
		cfgLog.info("No .env file found, relying on the process environment")
	} else {
		cfgLog.info("Loaded environment from .env")
	}
	cfg = loadFromEnv(cfg, cfgLog)

	if *databaseURL != "" {
		cfg.DatabaseURL = *databaseURL
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != "" {
		cfg.Port = *port
	}

	return cfg, cfgLog
}

func loadFromFile(cfg Config, path string, cfgLog *Log) Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		cfgLog.info(fmt.Sprintf("No config file at %s, skipping", path))
		return cfg
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		cfgLog.warn(fmt.Sprintf("Failed to parse config file %s: %v", path, err))
		return cfg
	}

	cfgLog.info(fmt.Sprintf("Loaded config file %s", path))
	return cfg
}

func loadFromEnv(cfg Config, cfgLog *Log) Config {
	setString(&cfg.Host, "HOST")
	setString(&cfg.Port, "PORT")
	setString(&cfg.BaseURL, "BASE_URL")
	setString(&cfg.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&cfg.Secret, "SECRET")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.MigrationSource, "MIGRATION_SOURCE")
	setString(&cfg.OtelCollectorUrl, "OTEL_COLLECTOR_URL")
	setBool(&cfg.Debug, "DEBUG", cfgLog)
	setBool(&cfg.Dev, "DEV", cfgLog)
	setDuration(&cfg.AccessTokenExpiration, "ACCESS_TOKEN_EXPIRATION", cfgLog)
	setDuration(&cfg.RefreshTokenExpiration, "REFRESH_TOKEN_EXPIRATION", cfgLog)

	if value := os.Getenv("ALLOW_ORIGINS"); value != "" {
		origins := strings.Split(value, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.AllowOrigins = origins
	}

	setString(&cfg.GoogleOauth.ClientID, "GOOGLE_OAUTH_CLIENT_ID")
	setString(&cfg.GoogleOauth.ClientSecret, "GOOGLE_OAUTH_CLIENT_SECRET")

	setString(&cfg.Generator.BaseURL, "GENERATOR_BASE_URL")
	setString(&cfg.Generator.APIKey, "GENERATOR_API_KEY")
	setString(&cfg.Generator.Model, "GENERATOR_MODEL")

	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setInt(&cfg.SMTP.Port, "SMTP_PORT", cfgLog)
	setString(&cfg.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.From, "SMTP_FROM")
	setBool(&cfg.SMTP.InsecureSkipVerify, "SMTP_INSECURE_SKIP_VERIFY", cfgLog)

	return cfg
}

func setString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setBool(target *bool, key string, cfgLog *Log) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		cfgLog.warn(fmt.Sprintf("Ignoring %s=%q: not a boolean", key, value))
		return
	}
	*target = parsed
}

func setInt(target *int, key string, cfgLog *Log) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		cfgLog.warn(fmt.Sprintf("Ignoring %s=%q: not an integer", key, value))
		return
	}
	*target = parsed
}

func setDuration(target *time.Duration, key string, cfgLog *Log) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		cfgLog.warn(fmt.Sprintf("Ignoring %s=%q: not a duration", key, value))
		return
	}
	*target = parsed
}
