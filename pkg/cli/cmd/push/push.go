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

// Package push implements the command that sends the local progress to the server
package push

import (
	stdctx "context"

	"github.com/gtrack/gtrack/pkg/cli/client"
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/sync"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  gtrack push`

// NewCmd returns a new push command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "push",
		Short:   "Send the local progress to the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

// Do pushes the local progress and records the time of the push
func Do(ctx context.GtrackCtx) (sync.PushResult, error) {
	if err := infra.RequireSession(ctx); err != nil {
		return sync.PushResult{}, err
	}

	cat, err := infra.LoadCatalog(ctx)
	if err != nil {
		return sync.PushResult{}, err
	}

	e := infra.NewEngine(ctx, cat)
	res, err := e.Push(stdctx.Background(), ctx.SessionToken)
	if err != nil {
		return res, err
	}

	if res.Pushed {
		if err := infra.TouchLastPushAt(ctx); err != nil {
			return res, err
		}
	}

	return res, nil
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		res, err := Do(ctx)
		if err != nil {
			return errors.Wrap(err, "pushing")
		}

		if res.Skipped {
			log.Info("nothing to push\n")
			return nil
		}

		log.Successf("pushed %d items\n", itemCount(res.Payload))

		return nil
	}
}

// itemCount returns the number of distinct items in the payload
func itemCount(p client.Progress) int {
	seen := map[string]bool{}
	for label := range p.CarStars {
		seen[label] = true
	}
	for _, list := range [][]string{p.OwnedCars, p.GoldMaxedCars, p.KeyCarsOwned} {
		for _, label := range list {
			seen[label] = true
		}
	}
	for label := range p.BlueprintsByCar {
		seen[label] = true
	}

	return len(seen)
}
