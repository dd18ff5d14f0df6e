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
	"os"
	"path/filepath"
	"time"

	"github.com/gtrack/gtrack/pkg/cli/consts"
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultPushDebounce is the default quiet period before an automatic push
	DefaultPushDebounce = "1000ms"
	// DefaultPushTimeout is the default bound of a push request
	DefaultPushTimeout = "15s"
	// DefaultPullTimeout is the default bound of a pull request
	DefaultPullTimeout = "15s"
	// DefaultPullSchedule is the default cron spec of the periodic pull of the watch daemon
	DefaultPullSchedule = "@every 5m"
)

// Config holds gtrack configuration
type Config struct {
	APIEndpoint  string `yaml:"apiEndpoint"`
	CatalogPath  string `yaml:"catalogPath,omitempty"`
	PushDebounce string `yaml:"pushDebounce"`
	PushTimeout  string `yaml:"pushTimeout"`
	PullTimeout  string `yaml:"pullTimeout"`
	PullSchedule string `yaml:"pullSchedule"`
}

// Default returns the configuration with default values for the given endpoint
func Default(apiEndpoint string) Config {
	return Config{
		APIEndpoint:  apiEndpoint,
		PushDebounce: DefaultPushDebounce,
		PushTimeout:  DefaultPushTimeout,
		PullTimeout:  DefaultPullTimeout,
		PullSchedule: DefaultPullSchedule,
	}
}

// GetPath returns the path to the gtrack config file
func GetPath(ctx context.GtrackCtx) string {
	return filepath.Join(ctx.Paths.Config, consts.GtrackDirName, consts.ConfigFilename)
}

// Read reads the config file
func Read(ctx context.GtrackCtx) (Config, error) {
	var ret Config

	configPath := GetPath(ctx)
	b, err := os.ReadFile(configPath)
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(b, &ret)
	if err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

// Write writes the config to the config file
func Write(ctx context.GtrackCtx, cf Config) error {
	path := GetPath(ctx)

	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	if err := utils.WriteFileAtomic(path, b, 0644); err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}

// parseDuration parses the value, using def if the value is empty
func parseDuration(name, value, def string) (time.Duration, error) {
	if value == "" {
		value = def
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", name)
	}
	if d <= 0 {
		return 0, errors.Errorf("%s must be positive", name)
	}

	return d, nil
}

// Durations holds the parsed durations of the configuration
type Durations struct {
	PushDebounce time.Duration
	PushTimeout  time.Duration
	PullTimeout  time.Duration
}

// ParseDurations parses the duration settings. Empty settings take their defaults.
func (c Config) ParseDurations() (Durations, error) {
	var ret Durations
	var err error

	if ret.PushDebounce, err = parseDuration("pushDebounce", c.PushDebounce, DefaultPushDebounce); err != nil {
		return ret, err
	}
	if ret.PushTimeout, err = parseDuration("pushTimeout", c.PushTimeout, DefaultPushTimeout); err != nil {
		return ret, err
	}
	if ret.PullTimeout, err = parseDuration("pullTimeout", c.PullTimeout, DefaultPullTimeout); err != nil {
		return ret, err
	}

	return ret, nil
}
