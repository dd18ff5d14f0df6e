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

// Package sync implements the command that starts a sync session
package sync

import (
	stdctx "context"

	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/sync"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  gtrack sync`

// NewCmd returns a new sync command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Short:   "Reconcile the local progress with the server",
		Long:    "Reconcile the local progress with the server. Progress made before signing in is promoted to a fresh account. Otherwise the server wins.",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

// Do bootstraps the session and records the times of the pull and the push
func Do(ctx context.GtrackCtx) (sync.BootstrapResult, error) {
	if err := infra.RequireSession(ctx); err != nil {
		return sync.BootstrapResult{}, err
	}

	cat, err := infra.LoadCatalog(ctx)
	if err != nil {
		return sync.BootstrapResult{}, err
	}

	e := infra.NewEngine(ctx, cat)
	res, err := e.Bootstrap(stdctx.Background(), ctx.SessionToken)
	if err != nil {
		return res, err
	}

	if res.Migrated {
		if err := infra.TouchLastPushAt(ctx); err != nil {
			return res, err
		}
	}
	if err := infra.TouchLastPullAt(ctx); err != nil {
		return res, err
	}

	return res, nil
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		res, err := Do(ctx)
		if err != nil {
			return errors.Wrap(err, "syncing")
		}

		if res.Migrated {
			log.Success("promoted the local progress to the server\n")
		} else if res.Pull.NoProgress {
			log.Info("the server has no progress yet\n")
		} else {
			log.Successf("pulled %d items, removed %d\n", res.Pull.Applied, res.Pull.Pruned)
		}

		return nil
	}
}
