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

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/gtrack/gtrack/pkg/server/app"
	"github.com/gtrack/gtrack/pkg/server/log"
	"github.com/pkg/errors"
)

const dbPathUsage = "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/gtrack/server.db)"
const envFileUsage = "Path to a dotenv file (default: .env)"

// createUser creates a user and a session, and prints the session token for
// the client to log in with
func createUser(a *app.App, name string, w io.Writer) error {
	user, err := a.CreateUser(name)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	session, err := a.CreateSession(user.ID)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}

	fmt.Fprintf(w, "User created successfully\n")
	fmt.Fprintf(w, "Name: %s\n", user.Name)
	fmt.Fprintf(w, "Token: %s\n", session.Key)
	fmt.Fprintf(w, "Expires: %s\n", session.ExpiresAt.Format("2006-01-02"))

	return nil
}

// issueToken prints a new session token for an existing user. If revoke is
// set, the existing sessions of the user are deleted first.
func issueToken(a *app.App, name string, revoke bool, w io.Writer) error {
	user, err := a.GetUserByName(name)
	if err != nil {
		return errors.Wrapf(err, "finding user %s", name)
	}

	if revoke {
		if err := a.DeleteUserSessions(user.ID); err != nil {
			return err
		}
	}

	session, err := a.CreateSession(user.ID)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}

	fmt.Fprintf(w, "Token: %s\n", session.Key)
	fmt.Fprintf(w, "Expires: %s\n", session.ExpiresAt.Format("2006-01-02"))

	return nil
}

func userCreateCmd(args []string, w io.Writer) {
	fs := setupFlagSet("create", "gtrack-server user create")

	name := fs.String("name", "", "User name (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)
	envFile := fs.String("envFile", "", envFileUsage)

	fs.Parse(args)

	requireString(fs, *name, "name")

	a, cleanup := setupAppWithDB(fs, *dbPath, *envFile)
	defer cleanup()

	if err := createUser(a, *name, w); err != nil {
		if errors.Is(err, app.ErrDuplicateName) {
			fmt.Printf("Error: user %s already exists\n", *name)
		} else {
			log.ErrorWrap(err, "creating user")
		}
		cleanup()
		os.Exit(1)
	}
}

func userTokenCmd(args []string, w io.Writer) {
	fs := setupFlagSet("token", "gtrack-server user token")

	name := fs.String("name", "", "User name (required)")
	revoke := fs.Bool("revoke", false, "Revoke the existing sessions of the user")
	dbPath := fs.String("dbPath", "", dbPathUsage)
	envFile := fs.String("envFile", "", envFileUsage)

	fs.Parse(args)

	requireString(fs, *name, "name")

	a, cleanup := setupAppWithDB(fs, *dbPath, *envFile)
	defer cleanup()

	if err := issueToken(a, *name, *revoke, w); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			fmt.Printf("Error: user %s not found\n", *name)
		} else {
			log.ErrorWrap(err, "issuing token")
		}
		cleanup()
		os.Exit(1)
	}
}

const userUsage = `Usage:
  gtrack-server user [command]

Available commands:
  create: Create a new user and print a session token
  token: Print a new session token for an existing user`

func userCmd(args []string) {
	if len(args) < 1 {
		fmt.Println(userUsage)
		os.Exit(1)
	}

	subcommand := args[0]
	subArgs := args[1:]

	switch subcommand {
	case "create":
		userCreateCmd(subArgs, os.Stdout)
	case "token":
		userTokenCmd(subArgs, os.Stdout)
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", subcommand)
		fmt.Println(userUsage)
		os.Exit(1)
	}
}
