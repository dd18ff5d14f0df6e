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

package context

import (
	"path/filepath"

	"github.com/gtrack/gtrack/pkg/cli/consts"
	"github.com/gtrack/gtrack/pkg/cli/utils"
	"github.com/gtrack/gtrack/pkg/dirs"
	"github.com/pkg/errors"
)

// InitGtrackDirs creates the gtrack directories if they don't already exist.
func InitGtrackDirs(paths dirs.Paths) error {
	if paths.Config != "" {
		configDir := filepath.Join(paths.Config, consts.GtrackDirName)
		if err := utils.EnsureDir(configDir); err != nil {
			return errors.Wrap(err, "initializing config dir")
		}
	}
	if paths.Data != "" {
		dataDir := filepath.Join(paths.Data, consts.GtrackDirName)
		if err := utils.EnsureDir(dataDir); err != nil {
			return errors.Wrap(err, "initializing data dir")
		}
	}
	if paths.Cache != "" {
		cacheDir := filepath.Join(paths.Cache, consts.GtrackDirName)
		if err := utils.EnsureDir(cacheDir); err != nil {
			return errors.Wrap(err, "initializing cache dir")
		}
	}

	return nil
}

// DBPath returns the path to the database file
func DBPath(paths dirs.Paths) string {
	return filepath.Join(paths.Data, consts.GtrackDirName, consts.GtrackDBFileName)
}

// DefaultCatalogPath returns the path to the catalog file used when none is configured
func DefaultCatalogPath(paths dirs.Paths) string {
	return filepath.Join(paths.Config, consts.GtrackDirName, consts.CatalogFilename)
}
