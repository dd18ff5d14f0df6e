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

package dirs

import (
	"path/filepath"
	"testing"

	"github.com/gtrack/gtrack/pkg/assert"
)

func TestResolveFrom(t *testing.T) {
	t.Setenv(envConfigHome, "")
	t.Setenv(envDataHome, "")
	t.Setenv(envCacheHome, "")

	home := "/home/alice"
	p := ResolveFrom(home)

	assert.Equal(t, p.Home, home, "home mismatch")
	assert.Equal(t, p.Config, filepath.Join(home, ".config"), "config mismatch")
	assert.Equal(t, p.Data, filepath.Join(home, ".local", "share"), "data mismatch")
	assert.Equal(t, p.Cache, filepath.Join(home, ".cache"), "cache mismatch")
}

func TestResolveFromEnv(t *testing.T) {
	t.Setenv(envConfigHome, "/custom/config")
	t.Setenv(envDataHome, "/custom/data")
	t.Setenv(envCacheHome, "/custom/cache")

	p := ResolveFrom("/home/alice")

	assert.Equal(t, p.Config, "/custom/config", "config mismatch")
	assert.Equal(t, p.Data, "/custom/data", "data mismatch")
	assert.Equal(t, p.Cache, "/custom/cache", "cache mismatch")
}
