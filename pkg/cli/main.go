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

package main

import (
	"os"
	"strings"

	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	// commands
	"github.com/gtrack/gtrack/pkg/cli/cmd/clear"
	"github.com/gtrack/gtrack/pkg/cli/cmd/level"
	"github.com/gtrack/gtrack/pkg/cli/cmd/login"
	"github.com/gtrack/gtrack/pkg/cli/cmd/logout"
	"github.com/gtrack/gtrack/pkg/cli/cmd/pull"
	"github.com/gtrack/gtrack/pkg/cli/cmd/push"
	"github.com/gtrack/gtrack/pkg/cli/cmd/root"
	"github.com/gtrack/gtrack/pkg/cli/cmd/set"
	"github.com/gtrack/gtrack/pkg/cli/cmd/sync"
	"github.com/gtrack/gtrack/pkg/cli/cmd/unset"
	"github.com/gtrack/gtrack/pkg/cli/cmd/version"
	"github.com/gtrack/gtrack/pkg/cli/cmd/view"
	"github.com/gtrack/gtrack/pkg/cli/cmd/watch"
)

// apiEndpoint and versionTag are populated during link time
var apiEndpoint string
var versionTag = "master"

// parseFlag extracts the value of a persistent flag from command line arguments
// regardless of where it appears (before or after subcommand).
// Returns empty string if not found.
func parseFlag(args []string, name string) string {
	prefix := "--" + name
	for i, arg := range args {
		if strings.HasPrefix(arg, prefix+"=") {
			return strings.TrimPrefix(arg, prefix+"=")
		}
		if arg == prefix && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func main() {
	// The database and the endpoint are needed to build the context before
	// cobra parses the flags, which it only does for the subcommand.
	dbPath := parseFlag(os.Args[1:], "dbPath")
	endpoint := parseFlag(os.Args[1:], "apiEndpoint")
	if endpoint == "" {
		endpoint = apiEndpoint
	}

	ctx, err := infra.Init(versionTag, endpoint, dbPath)
	if err != nil {
		panic(errors.Wrap(err, "initializing context"))
	}
	defer ctx.DB.Close()

	root.Register(set.NewCmd(*ctx))
	root.Register(unset.NewCmd(*ctx))
	root.Register(view.NewCmd(*ctx))
	root.Register(level.NewCmd(*ctx))
	root.Register(clear.NewCmd(*ctx))
	root.Register(push.NewCmd(*ctx))
	root.Register(pull.NewCmd(*ctx))
	root.Register(sync.NewCmd(*ctx))
	root.Register(login.NewCmd(*ctx))
	root.Register(logout.NewCmd(*ctx))
	root.Register(watch.NewCmd(*ctx))
	root.Register(version.NewCmd(*ctx))

	if err := root.Execute(); err != nil {
		log.Errorf("%s\n", err.Error())
		ctx.DB.Close()
		os.Exit(1)
	}
}
