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

// Package logout implements the command that signs out of the account service
package logout

import (
	stdctx "context"

	"github.com/gtrack/gtrack/pkg/cli/client"
	"github.com/gtrack/gtrack/pkg/cli/consts"
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrNotLoggedIn is an error for logging out when not logged in
var ErrNotLoggedIn = errors.New("not logged in")

var example = `
  gtrack logout`

// NewCmd returns a new logout command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "Sign out of the account service",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

// Do performs logout. A session the server no longer knows is removed locally.
func Do(ctx context.GtrackCtx) error {
	var token string
	if err := database.GetSystem(ctx.DB, consts.SystemSessionKey, &token); err != nil {
		return errors.Wrap(err, "getting session token")
	}
	if token == "" {
		return ErrNotLoggedIn
	}

	err := infra.NewClient(ctx).Signout(stdctx.Background(), token)

	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.IsUnauthorized() {
		log.Debug("session was already expired on the server\n")
	} else if err != nil {
		return errors.Wrap(err, "requesting logout")
	}

	if err := database.DeleteSystem(ctx.DB, consts.SystemSessionKey); err != nil {
		return errors.Wrap(err, "deleting session token")
	}

	return nil
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		err := Do(ctx)
		if err == ErrNotLoggedIn {
			log.Error("not logged in\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging out")
		}

		log.Success("logged out\n")

		return nil
	}
}
