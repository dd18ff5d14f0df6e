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

// Package dirs resolves the base directories for user-specific files
// following the XDG base directory specification
package dirs

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/pkg/errors"
)

// The environment variable names for the XDG base directory specification
const (
	envConfigHome = "XDG_CONFIG_HOME"
	envDataHome   = "XDG_DATA_HOME"
	envCacheHome  = "XDG_CACHE_HOME"
)

// Paths holds the base directories
type Paths struct {
	// Home is the home directory of the user
	Home string
	// Config is the directory in which user-specific configurations are written
	Config string
	// Data is the directory in which user-specific data files are written
	Data string
	// Cache is the directory in which non-essential cached data is written
	Cache string
}

// Resolve returns the base directories for the current user. Environment
// variables take precedence over the defaults derived from the home directory.
func Resolve() (Paths, error) {
	usr, err := user.Current()
	if err != nil {
		return Paths{}, errors.Wrap(err, "getting the current user")
	}

	return ResolveFrom(usr.HomeDir), nil
}

// ResolveFrom returns the base directories relative to the given home directory
func ResolveFrom(home string) Paths {
	return Paths{
		Home:   home,
		Config: readPath(envConfigHome, filepath.Join(home, ".config")),
		Data:   readPath(envDataHome, filepath.Join(home, ".local", "share")),
		Cache:  readPath(envCacheHome, filepath.Join(home, ".cache")),
	}
}

func readPath(envName, defaultPath string) string {
	if dir := os.Getenv(envName); dir != "" {
		return dir
	}

	return defaultPath
}
