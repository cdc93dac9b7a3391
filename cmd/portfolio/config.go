package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/portfolio/internal/logger"
)

const (
	defaultListenAddr   = "localhost:3000"
	defaultDatabaseDSN  = "sqlite://portfolio.db"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultTokenTTL     = 24 * time.Hour
	defaultCORSOrigin   = "*"
	defaultBodyLimit    = "50MB"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the portfolio service will be run
	ListenAddr string

	// Database to connect to: 'postgres://...' or 'sqlite://path'
	DatabaseDSN string

	// Secret key to sign access tokens
	SecretKey string

	// Access token lifetime
	TokenTTL time.Duration

	// Environment
	Environment string

	// Origin allowed to call the API from browser
	CORSOrigin string

	// Max request body size in bytes
	BodyLimit int64
}

func NewConfig() *Config {
	limit, _ := units.RAMInBytes(defaultBodyLimit)

	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		DatabaseDSN: defaultDatabaseDSN,
		TokenTTL:    defaultTokenTTL,
		Environment: defaultEnvironment,
		CORSOrigin:  defaultCORSOrigin,
		BodyLimit:   limit,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := parseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setBytes := func(o *int64) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			size, err := units.RAMInBytes(value)
			if err != nil {
				return err
			}
			*o = size
			return nil
		}
	}
	setPort := func(value string) error {
		if value != "" {
			c.ListenAddr = ":" + value
		}
		return nil
	}

	// Order matters: RUN_ADDRESS wins over PORT
	envs := []struct {
		key     string
		parseFn func(string) error
	}{
		{"PORT", setPort},
		{"RUN_ADDRESS", setString(&c.ListenAddr)},
		{"DATABASE_URI", setString(&c.DatabaseDSN)},
		{"JWT_SECRET", setString(&c.SecretKey)},
		{"JWT_EXPIRES_IN", setDuration(&c.TokenTTL)},
		{"LOG_LEVEL", setString(&c.LogLevel)},
		{"ENVIRONMENT", setString(&c.Environment)},
		{"CORS_ORIGIN", setString(&c.CORSOrigin)},
		{"BODY_LIMIT", setBytes(&c.BodyLimit)},
	}

	for _, env := range envs {
		if err := env.parseFn(getenv(env.key)); err != nil {
			return fmt.Errorf("invalid %s: %w", env.key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("portfolio", pflag.ContinueOnError)

	var (
		tokenTTL  = c.TokenTTL.String()
		bodyLimit = strconv.FormatInt(c.BodyLimit, 10)
	)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string (postgres://... or sqlite://path)")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key to sign access tokens")
	fs.StringVarP(&tokenTTL, "token-ttl", "t", tokenTTL, "Access token lifetime (like 90m, 12h or 7d)")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.CORSOrigin, "cors-origin", c.CORSOrigin, "Allowed CORS origin")
	fs.StringVar(&bodyLimit, "body-limit", bodyLimit, "Max request body size (like 512KB or 50MB)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.Changed("token-ttl") {
		d, err := parseDuration(tokenTTL)
		if err != nil {
			return fmt.Errorf("invalid token-ttl: %w", err)
		}
		c.TokenTTL = d
	}

	if fs.Changed("body-limit") {
		size, err := units.RAMInBytes(bodyLimit)
		if err != nil {
			return fmt.Errorf("invalid body-limit: %w", err)
		}
		c.BodyLimit = size
	}

	return nil
}

// Validate checks options the server can't start without
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must be set (JWT_SECRET or --secret-key)"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetime must be positive"))
	}
	if c.BodyLimit <= 0 {
		errs = append(errs, errors.New("body limit must be positive"))
	}

	return errors.Join(errs...)
}

// parseDuration accepts Go durations and whole days like '7d'
func parseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
