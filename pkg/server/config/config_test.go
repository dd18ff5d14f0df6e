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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gtrack/gtrack/pkg/assert"
	"github.com/pkg/errors"
)

func validConfig() Config {
	return Config{
		DBPath:     "test.db",
		Port:       "3000",
		LogLevel:   "info",
		SessionTTL: time.Hour,
		RateLimit:  10,
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		mutate      func(c *Config)
		expectedErr error
	}{
		{
			mutate:      func(c *Config) {},
			expectedErr: nil,
		},
		{
			mutate:      func(c *Config) { c.DBPath = "" },
			expectedErr: ErrDBMissingPath,
		},
		{
			mutate:      func(c *Config) { c.Port = "" },
			expectedErr: ErrPortInvalid,
		},
		{
			mutate:      func(c *Config) { c.Port = "70000" },
			expectedErr: ErrPortInvalid,
		},
		{
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			expectedErr: ErrLogLevelInvalid,
		},
		{
			mutate:      func(c *Config) { c.SessionTTL = 0 },
			expectedErr: ErrSessionTTLInvalid,
		},
		{
			mutate:      func(c *Config) { c.RateLimit = -1 },
			expectedErr: ErrRateLimitInvalid,
		},
		{
			mutate:      func(c *Config) { c.RateLimit = 0 },
			expectedErr: nil,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			c := validConfig()
			tc.mutate(&c)

			err := validate(c)

			assert.Equal(t, errors.Cause(err), tc.expectedErr, "error mismatch")
		})
	}
}

func clearEnv(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "DBPath", "LOG_LEVEL", "SESSION_TTL", "RATE_LIMIT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestNew_precedence(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	envFile := filepath.Join(dir, "server.env")
	content := "PORT=4000\nLOG_LEVEL=debug\nSESSION_TTL=2h\nDBPath=/from/dotenv.db\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LOG_LEVEL", "warn")

	c, err := New(Params{
		DBPath:  "/from/flag.db",
		EnvFile: envFile,
	})
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, c.DBPath, "/from/flag.db", "flag should win over the dotenv file")
	assert.Equal(t, c.LogLevel, "warn", "environment should win over the dotenv file")
	assert.Equal(t, c.Port, "4000", "dotenv file should win over the default")
	assert.Equal(t, c.SessionTTL, 2*time.Hour, "session ttl mismatch")
	assert.Equal(t, c.AppEnv, AppEnvProduction, "default app env mismatch")
	assert.Equal(t, c.RateLimit, DefaultRateLimit, "default rate limit mismatch")
	assert.Equal(t, c.IsProd(), true, "should be production")
}

func TestNew_defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Chdir(t.TempDir())

	c, err := New(Params{})
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, c.Port, "3001", "port mismatch")
	assert.Equal(t, c.DBPath, "/tmp/xdg-data/gtrack/server.db", "db path mismatch")
	assert.Equal(t, c.LogLevel, "info", "log level mismatch")
	assert.Equal(t, c.SessionTTL, DefaultSessionTTL, "session ttl mismatch")
}

func TestNew_missingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := New(Params{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.NotEqual(t, err, nil, "an explicit missing env file should be an error")
}

func TestNew_invalid(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := New(Params{DBPath: "x.db", SessionTTL: "forever"})
	assert.Equal(t, errors.Cause(err), ErrSessionTTLInvalid, "session ttl error mismatch")

	_, err = New(Params{DBPath: "x.db", RateLimit: "many"})
	assert.Equal(t, errors.Cause(err), ErrRateLimitInvalid, "rate limit error mismatch")
}
