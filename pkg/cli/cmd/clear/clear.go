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

// Package clear implements the command that removes every tracked item
package clear

import (
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Remove the progress of every item
 gtrack clear

 * Skip the confirmation
 gtrack clear --yes`

var yesFlag bool

// NewCmd returns a new clear command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clear",
		Short:   "Remove the progress of every item",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&yesFlag, "yes", "y", false, "assume yes to the prompt and run in non-interactive mode")

	return cmd
}

// Do removes every tracked item and returns how many were removed. The
// garage level and the xp are kept.
func Do(ctx context.GtrackCtx) (int, error) {
	store := infra.Store(ctx)

	keys, err := store.Keys()
	if err != nil {
		return 0, errors.Wrap(err, "listing items")
	}

	if err := store.ClearAll(); err != nil {
		return 0, errors.Wrap(err, "clearing items")
	}

	return len(keys), nil
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if !yesFlag {
			ok, err := ui.Confirm("remove the progress of every item?", false)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				log.Warnf("aborted by user\n")
				return nil
			}
		}

		n, err := Do(ctx)
		if err != nil {
			return err
		}

		log.Successf("removed %d items\n", n)

		return nil
	}
}
