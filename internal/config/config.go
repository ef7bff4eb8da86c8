// Package config provides hierarchical configuration loading for the bot.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for one tenant process.
type Config struct {
	Server    Server    `yaml:"server"`
	Postgres  Postgres  `yaml:"postgres"`
	Telegram  Telegram  `yaml:"telegram"`
	Admin     Admin     `yaml:"admin"`
	Account   Account   `yaml:"account"`
	Lobby     Lobby     `yaml:"lobby"`
	Broadcast Broadcast `yaml:"broadcast"`
	Cache     Cache     `yaml:"cache"`
	Logging   Logging   `yaml:"logging"`
	Breaker   Breaker   `yaml:"breaker"`
}

// Server holds the health-check HTTP server configuration.
type Server struct {
	Port string `yaml:"port"`
}

// Postgres holds PostgreSQL connection configuration.
type Postgres struct {
	DSN            string        `yaml:"dsn"`
	MaxConns       int32         `yaml:"max_conns"`
	MinConns       int32         `yaml:"min_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // per attempt
	ConnectRetries int           `yaml:"connect_retries"` // attempts before giving up
	RetryDelay     time.Duration `yaml:"retry_delay"`     // fixed pause between attempts
}

// Telegram holds the chat transport configuration.
type Telegram struct {
	Token       string `yaml:"token"`
	PollTimeout int    `yaml:"poll_timeout"` // long-poll seconds
	Workers     int64  `yaml:"workers"`      // updates handled concurrently
	DropPending bool   `yaml:"drop_pending"`
}

// Admin holds the operator login. PasswordHash (bcrypt) wins over Password.
type Admin struct {
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
}

// Account holds the external account service configuration.
type Account struct {
	RegisterURL string        `yaml:"register_url"`
	LoginURL    string        `yaml:"login_url"`
	SiteCode    string        `yaml:"site_code"`
	APIKey      string        `yaml:"api_key"`
	Secret      string        `yaml:"secret"`
	ProxyURL    string        `yaml:"proxy_url"`
	Timeout     time.Duration `yaml:"timeout"`
	Currency    string        `yaml:"currency"`
}

// Lobby holds the game entry point linked from rendered posts.
type Lobby struct {
	URL string `yaml:"url"`
}

// Broadcast holds fan-out throttling.
type Broadcast struct {
	Delay time.Duration `yaml:"delay"` // pause between two sends
}

// Cache holds the in-process post cache configuration.
type Cache struct {
	MaxCost int64         `yaml:"max_cost"` // approximate bytes
	PostTTL time.Duration `yaml:"post_ttl"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds circuit breaker configuration for the account service.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: Server{
			Port: "5000",
		},
		Postgres: Postgres{
			MaxConns:       10,
			MinConns:       0,
			ConnectTimeout: 10 * time.Second,
			ConnectRetries: 3,
			RetryDelay:     2 * time.Second,
		},
		Telegram: Telegram{
			PollTimeout: 60,
			Workers:     16,
			DropPending: true,
		},
		Account: Account{
			RegisterURL: "https://ytaztiuu.wgopenapi.com/home/openapiRegister",
			LoginURL:    "https://ytaztiuu.wgopenapi.com/home/openapiLogin",
			Timeout:     20 * time.Second,
			Currency:    "USDT",
		},
		Lobby: Lobby{
			URL: "https://u70.vip",
		},
		Broadcast: Broadcast{
			Delay: 50 * time.Millisecond,
		},
		Cache: Cache{
			MaxCost: 8 << 20,
			PostTTL: 5 * time.Minute,
		},
		Logging: Logging{
			Level:   "info",
			Service: "botbot",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
	}
}
