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

// Package unset implements the command that resets the progress of an item
package unset

import (
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/keycodec"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Forget all progress of an item
 gtrack unset Porsche "911 GT3 RS"

 * Clear the ownership of an item but keep its star rank
 gtrack unset Porsche "911 GT3 RS" --ownership`

var ownershipFlag bool

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new unset command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "unset <brand> <model>",
		Short:   "Reset the progress of an item",
		Aliases: []string{"u"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&ownershipFlag, "ownership", false, "only clear the ownership, the gold-maxed state and the key")

	return cmd
}

// Do resets the item. If ownershipOnly is set, the star rank and the
// blueprints are kept.
func Do(ctx context.GtrackCtx, brand, model string, ownershipOnly bool) error {
	if err := validate.ItemName(brand, model); err != nil {
		return errors.Wrap(err, "invalid item")
	}

	key := keycodec.FromParts(brand, model)
	store := infra.Store(ctx)

	if ownershipOnly {
		if err := store.ClearOwnership(key); err != nil {
			return errors.Wrap(err, "clearing ownership")
		}

		return nil
	}

	if err := store.Delete(key); err != nil {
		return errors.Wrap(err, "removing the item")
	}

	return nil
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := Do(ctx, args[0], args[1], ownershipFlag); err != nil {
			return err
		}

		log.Successf("reset %s %s\n", args[0], args[1])

		return nil
	}
}
