/* Copyright 2026 gtrack Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config builds the server configuration from flags, the environment
// and an optional dotenv file
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gtrack/gtrack/pkg/dirs"
	"github.com/gtrack/gtrack/pkg/server/log"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// AppEnvTest represents an app environment for tests.
	AppEnvTest string = "TEST"
	// DefaultDBDir is the default directory name for the server data
	DefaultDBDir = "gtrack"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultEnvFile is the dotenv file read when no other is given
	DefaultEnvFile = ".env"
	// DefaultSessionTTL is how long a session stays valid after it is issued
	DefaultSessionTTL = 365 * 24 * time.Hour
	// DefaultRateLimit is the number of requests per second accepted per IP
	DefaultRateLimit = 50
	// DefaultRateLimitBurst is the burst capacity of the per IP limiter
	DefaultRateLimitBurst = 100
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrLogLevelInvalid is an error for an unknown log level
	ErrLogLevelInvalid = errors.New("Invalid log level")
	// ErrSessionTTLInvalid is an error for a non-positive session lifetime
	ErrSessionTTLInvalid = errors.New("Invalid session TTL")
	// ErrRateLimitInvalid is an error for a negative rate limit
	ErrRateLimitInvalid = errors.New("Invalid rate limit")
)

// Config is an application configuration
type Config struct {
	AppEnv     string
	Port       string
	DBPath     string
	LogLevel   string
	SessionTTL time.Duration
	// RateLimit is the number of requests per second accepted per IP. Zero
	// disables rate limiting.
	RateLimit      int
	RateLimitBurst int
}

// Params are the configuration parameters for creating a new Config.
// Zero values fall back to the environment, then to the dotenv file, then to
// the defaults.
type Params struct {
	AppEnv     string
	Port       string
	DBPath     string
	LogLevel   string
	SessionTTL string
	RateLimit  string
	// EnvFile is the path to a dotenv file. It is an error for an explicitly
	// given file to be missing.
	EnvFile string
}

// loadEnvFile populates the environment from a dotenv file without overriding
// variables that are already set
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	log.WithFields(log.Fields{
		"path": path,
	}).Debug("loaded env file")

	return nil
}

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

func defaultDBPath() (string, error) {
	paths, err := dirs.Resolve()
	if err != nil {
		return "", errors.Wrap(err, "resolving the base directories")
	}

	return filepath.Join(paths.Data, DefaultDBDir, DefaultDBFilename), nil
}

// New constructs and returns a new validated config.
func New(p Params) (Config, error) {
	if err := loadEnvFile(p.EnvFile); err != nil {
		return Config{}, err
	}

	dbPath := getOrEnv(p.DBPath, "DBPath", "")
	if dbPath == "" {
		var err error
		if dbPath, err = defaultDBPath(); err != nil {
			return Config{}, err
		}
	}

	ttlStr := getOrEnv(p.SessionTTL, "SESSION_TTL", DefaultSessionTTL.String())
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return Config{}, errors.Wrapf(ErrSessionTTLInvalid, "'%s'", ttlStr)
	}

	rateStr := getOrEnv(p.RateLimit, "RATE_LIMIT", strconv.Itoa(DefaultRateLimit))
	rate, err := strconv.Atoi(rateStr)
	if err != nil {
		return Config{}, errors.Wrapf(ErrRateLimitInvalid, "'%s'", rateStr)
	}

	c := Config{
		AppEnv:         getOrEnv(p.AppEnv, "APP_ENV", AppEnvProduction),
		Port:           getOrEnv(p.Port, "PORT", "3001"),
		DBPath:         dbPath,
		LogLevel:       getOrEnv(p.LogLevel, "LOG_LEVEL", log.LevelInfo),
		SessionTTL:     ttl,
		RateLimit:      rate,
		RateLimitBurst: DefaultRateLimitBurst,
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

func validate(c Config) error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return errors.Wrapf(ErrPortInvalid, "'%s'", c.Port)
	}
	if c.DBPath == "" {
		return ErrDBMissingPath
	}
	if !log.ValidLevel(c.LogLevel) {
		return errors.Wrapf(ErrLogLevelInvalid, "'%s'", c.LogLevel)
	}
	if c.SessionTTL <= 0 {
		return ErrSessionTTLInvalid
	}
	if c.RateLimit < 0 {
		return ErrRateLimitInvalid
	}

	return nil
}
