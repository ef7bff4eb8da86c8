package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "botbot.yaml"

// DefaultEnvFile is loaded into the process environment when present.
const DefaultEnvFile = ".env"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML and .env files are optional; missing files are not an error.
func Load() (*Config, error) {
	if err := loadDotEnv(DefaultEnvFile); err != nil {
		return nil, fmt.Errorf("config env file: %w", err)
	}
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv exports KEY=VALUE pairs from path. Variables already set in the
// environment are not overridden.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "BOTBOT_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "BOTBOT_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.ConnectTimeout, "BOTBOT_PG_CONNECT_TIMEOUT")
	setInt(&cfg.Postgres.ConnectRetries, "BOTBOT_PG_CONNECT_RETRIES")
	setDuration(&cfg.Postgres.RetryDelay, "BOTBOT_PG_RETRY_DELAY")

	setString(&cfg.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	setInt(&cfg.Telegram.PollTimeout, "BOTBOT_POLL_TIMEOUT")
	setInt64(&cfg.Telegram.Workers, "BOTBOT_WORKERS")
	setBool(&cfg.Telegram.DropPending, "BOTBOT_DROP_PENDING")

	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")
	setString(&cfg.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")

	// Account service
	setString(&cfg.Account.RegisterURL, "ACCOUNT_REGISTER_URL")
	setString(&cfg.Account.LoginURL, "ACCOUNT_LOGIN_URL")
	setString(&cfg.Account.SiteCode, "ACCOUNT_SITE_CODE")
	setString(&cfg.Account.APIKey, "ACCOUNT_API_KEY")
	setString(&cfg.Account.Secret, "ACCOUNT_API_SECRET")
	setString(&cfg.Account.ProxyURL, "PROXY_URL")
	setDuration(&cfg.Account.Timeout, "ACCOUNT_TIMEOUT")
	setString(&cfg.Account.Currency, "ACCOUNT_CURRENCY")

	setString(&cfg.Lobby.URL, "LOBBY_URL")
	setDuration(&cfg.Broadcast.Delay, "BOTBOT_BROADCAST_DELAY")

	setInt64(&cfg.Cache.MaxCost, "BOTBOT_CACHE_MAX_COST")
	setDuration(&cfg.Cache.PostTTL, "BOTBOT_CACHE_POST_TTL")

	setString(&cfg.Logging.Level, "BOTBOT_LOG_LEVEL")
	setString(&cfg.Logging.Service, "BOTBOT_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "BOTBOT_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "BOTBOT_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "BOTBOT_BREAKER_TIMEOUT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return errors.New("telegram.token is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Account.Secret == "" {
		return errors.New("account.secret is required")
	}
	if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		return errors.New("admin.password or admin.password_hash is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Postgres.ConnectRetries < 1 {
		return errors.New("postgres.connect_retries must be >= 1")
	}
	if cfg.Telegram.Workers < 1 {
		return errors.New("telegram.workers must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
