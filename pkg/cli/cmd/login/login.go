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

// Package login implements the command that signs in to the account service
package login

import (
	stdctx "context"
	"fmt"
	"net/url"

	"github.com/gtrack/gtrack/pkg/cli/client"
	"github.com/gtrack/gtrack/pkg/cli/consts"
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrInvalidToken is an error for a session token rejected by the server
var ErrInvalidToken = errors.New("the session token was rejected by the server")

var example = `
 * Prompt for the session token
 gtrack login

 * Provide the session token directly
 gtrack login --token 0ab1c2`

var tokenFlag string

// NewCmd returns a new login command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Sign in to the account service",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&tokenFlag, "token", "", "the session token issued by the server")

	return cmd
}

// Do verifies the token against the server and saves it as the session
func Do(ctx context.GtrackCtx, token string) error {
	if token == "" {
		return errors.New("empty session token")
	}

	c := infra.NewClient(ctx)
	_, err := c.GetProgress(stdctx.Background(), token)

	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.IsUnauthorized() {
		return ErrInvalidToken
	} else if err != nil {
		return errors.Wrap(err, "verifying the session token")
	}

	if err := database.UpsertSystem(ctx.DB, consts.SystemSessionKey, token); err != nil {
		return errors.Wrap(err, "saving session token")
	}

	return nil
}

func getServerDisplayURL(ctx context.GtrackCtx) string {
	u, err := url.Parse(ctx.APIEndpoint)
	if err != nil {
		return ""
	}
	if u.Scheme == "" || u.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s://%s", u.Scheme, u.Host)
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		token := tokenFlag
		if token == "" {
			message := "session token"
			if server := getServerDisplayURL(ctx); server != "" {
				message = fmt.Sprintf("session token for %s", server)
			}

			if err := ui.PromptSecret(message, &token); err != nil {
				return errors.Wrap(err, "getting session token input")
			}
		}

		if err := Do(ctx, token); err != nil {
			return errors.Wrap(err, "logging in")
		}

		log.Success("logged in. Run 'gtrack sync' to reconcile your progress\n")

		return nil
	}
}
