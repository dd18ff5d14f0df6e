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

// Package sync holds the end to end tests of the CLI against the server
package sync

import (
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gtrack/gtrack/pkg/cli/consts"
	cliDatabase "github.com/gtrack/gtrack/pkg/cli/database"
	clitest "github.com/gtrack/gtrack/pkg/cli/testutils"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
	"github.com/gtrack/gtrack/pkg/server/app"
	"github.com/gtrack/gtrack/pkg/server/controllers"
	"github.com/gtrack/gtrack/pkg/server/database"
	apitest "github.com/gtrack/gtrack/pkg/server/testutils"
	"github.com/pkg/errors"
)

// cliBinaryName is the path to the CLI binary built by TestMain
var cliBinaryName string

// testCatalog is the catalog given to the CLI in every test
const testCatalog = `items:
  - brand: Porsche
    model: 911 GT3 RS
    maxStars: 6
  - brand: Bmw
    model: M3
    maxStars: 4
  - brand: Aston Martin
    model: Valhalla
    maxStars: 5
    keyItem: true
`

// testEnv holds the test environment for a single test
type testEnv struct {
	TmpDir  string
	CmdOpts clitest.RunGtrackCmdOptions
	Server  *httptest.Server
	App     *app.App
	User    database.User
	Session database.Session
}

// setupTestEnv creates an isolated test environment with its own server,
// local database and catalog
func setupTestEnv(t *testing.T) testEnv {
	tmpDir := t.TempDir()

	configDir := filepath.Join(tmpDir, consts.GtrackDirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(errors.Wrap(err, "creating config directory"))
	}
	if err := os.WriteFile(filepath.Join(configDir, consts.CatalogFilename), []byte(testCatalog), 0644); err != nil {
		t.Fatal(errors.Wrap(err, "writing catalog"))
	}

	serverDB := apitest.InitMemoryDB(t)
	a := app.NewTest(serverDB)
	server := controllers.MustNewServer(t, &a)

	user := apitest.SetupUserData(t, serverDB, "alice")
	session := apitest.SetupSession(t, serverDB, user)

	return testEnv{
		TmpDir: tmpDir,
		CmdOpts: clitest.RunGtrackCmdOptions{
			Env: []string{
				fmt.Sprintf("XDG_CONFIG_HOME=%s", tmpDir),
				fmt.Sprintf("XDG_DATA_HOME=%s", tmpDir),
				fmt.Sprintf("XDG_CACHE_HOME=%s", tmpDir),
			},
		},
		Server:  server,
		App:     &a,
		User:    user,
		Session: session,
	}
}

// run runs the CLI against the server of the environment
func (env testEnv) run(t *testing.T, args ...string) string {
	args = append(args, "--apiEndpoint", env.Server.URL)

	return clitest.RunGtrackCmd(t, env.CmdOpts, cliBinaryName, args...)
}

// login stores the session of the environment in the CLI
func (env testEnv) login(t *testing.T) {
	env.run(t, "login", "--token", env.Session.Key)
}

// dbPath returns the path to the local database of the CLI
func (env testEnv) dbPath() string {
	return filepath.Join(env.TmpDir, consts.GtrackDirName, consts.GtrackDBFileName)
}

// localState reads the records and the aggregate of the local database
func (env testEnv) localState(t *testing.T) (map[string]tracking.Record, tracking.Aggregate) {
	db := clitest.MustOpenDatabase(t, env.dbPath())
	s := tracking.New(db)

	records, err := s.GetAll()
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading local records"))
	}
	agg, err := s.Aggregate()
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading local aggregate"))
	}

	return records, agg
}

// remoteProgress reads the progress stored by the server
func (env testEnv) remoteProgress(t *testing.T) *app.Progress {
	p, err := env.App.GetProgress(env.User.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading server progress"))
	}

	return p
}

// setRemoteProgress replaces the progress stored by the server
func (env testEnv) setRemoteProgress(t *testing.T, p app.Progress) {
	if err := env.App.SaveProgress(env.User.ID, p); err != nil {
		t.Fatal(errors.Wrap(err, "saving server progress"))
	}
}

// mustLocalDB opens the local database of the CLI
func (env testEnv) mustLocalDB(t *testing.T) *cliDatabase.DB {
	return clitest.MustOpenDatabase(t, env.dbPath())
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}
