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

// Package level implements the command that updates the aggregate progress
package level

import (
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/output"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
	"github.com/gtrack/gtrack/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Show the garage level
 gtrack level

 * Set the garage level and the xp
 gtrack level --level 5 --xp 1200`

var xpFlag int
var levelFlag int
var levelXPFlag int
var modeFlag string

// NewCmd returns a new level command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "level",
		Short:   "Show or update the garage level and the xp",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.IntVar(&xpFlag, "xp", 0, "the total xp")
	f.IntVar(&levelFlag, "level", 1, "the current garage level")
	f.IntVar(&levelXPFlag, "levelXP", 0, "the xp earned in the current garage level")
	f.StringVar(&modeFlag, "mode", tracking.DefaultLevelMode, "the level tracker mode")

	return cmd
}

// Update is a partial update of the aggregate. A nil field is left untouched.
type Update struct {
	XP      *int
	Level   *int
	LevelXP *int
	Mode    *string
}

// Do applies the update to the aggregate and returns the result
func Do(ctx context.GtrackCtx, u Update) (tracking.Aggregate, error) {
	if u.XP != nil {
		if err := validate.XP(*u.XP); err != nil {
			return tracking.Aggregate{}, err
		}
	}
	if u.Level != nil {
		if err := validate.Level(*u.Level); err != nil {
			return tracking.Aggregate{}, err
		}
	}
	if u.LevelXP != nil {
		if err := validate.XP(*u.LevelXP); err != nil {
			return tracking.Aggregate{}, errors.Wrap(err, "invalid level xp")
		}
	}
	if u.Mode != nil {
		if err := validate.LevelMode(*u.Mode); err != nil {
			return tracking.Aggregate{}, err
		}
	}

	store := infra.Store(ctx)
	agg, err := store.Aggregate()
	if err != nil {
		return tracking.Aggregate{}, errors.Wrap(err, "reading aggregate")
	}

	if u.XP != nil {
		agg.XP = *u.XP
	}
	if u.Level != nil {
		agg.CurrentLevel = *u.Level
	}
	if u.LevelXP != nil {
		agg.LevelXP = *u.LevelXP
	}
	if u.Mode != nil {
		agg.LevelMode = *u.Mode
	}

	if err := store.SetAggregate(agg); err != nil {
		return tracking.Aggregate{}, errors.Wrap(err, "saving aggregate")
	}

	return agg.Normalize(), nil
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		var u Update
		var changed bool

		f := cmd.Flags()
		if f.Changed("xp") {
			u.XP = &xpFlag
			changed = true
		}
		if f.Changed("level") {
			u.Level = &levelFlag
			changed = true
		}
		if f.Changed("levelXP") {
			u.LevelXP = &levelXPFlag
			changed = true
		}
		if f.Changed("mode") {
			u.Mode = &modeFlag
			changed = true
		}

		if !changed {
			agg, err := infra.Store(ctx).Aggregate()
			if err != nil {
				return errors.Wrap(err, "reading aggregate")
			}

			output.AggregateInfo(agg)
			return nil
		}

		agg, err := Do(ctx, u)
		if err != nil {
			return err
		}

		log.Success("updated the garage level\n")
		output.AggregateInfo(agg)

		return nil
	}
}
