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

// Package set implements the command that updates the progress of an item
package set

import (
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/keycodec"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/output"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
	"github.com/gtrack/gtrack/pkg/cli/utils"
	"github.com/gtrack/gtrack/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Set the star rank of an item
 gtrack set Porsche "911 GT3 RS" --stars 4

 * Mark an item as owned and gold-maxed
 gtrack set Porsche "911 GT3 RS" --owned --gold

 * Record the key item and the blueprints owned per star
 gtrack set Citroën "DS 21 Pallas" --key --blueprint 1=3 --blueprint 2=1`

var starsFlag int
var ownedFlag bool
var goldFlag bool
var keyFlag bool
var blueprintFlags []string

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new set command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set <brand> <model>",
		Short:   "Update the progress of an item",
		Aliases: []string{"s"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.IntVar(&starsFlag, "stars", 0, "the star rank of the item. 0 clears it")
	f.BoolVar(&ownedFlag, "owned", false, "whether the item is owned. --owned=false also clears the gold-maxed state and the key")
	f.BoolVar(&goldFlag, "gold", false, "whether the item is gold-maxed")
	f.BoolVar(&keyFlag, "key", false, "whether the key item was obtained")
	f.StringSliceVar(&blueprintFlags, "blueprint", nil, "blueprints owned at a star rank, in the form star=count. A count of 0 removes the entry")

	return cmd
}

// Options is the set of changes to apply to an item. A nil field is left untouched.
type Options struct {
	Stars      *int
	Owned      *bool
	Gold       *bool
	Key        *bool
	Blueprints map[int]int
}

func (o Options) isEmpty() bool {
	return o.Stars == nil && o.Owned == nil && o.Gold == nil && o.Key == nil && o.Blueprints == nil
}

func parseBlueprints(pairs []string) (map[int]int, error) {
	counts, err := utils.ParseCounts(pairs)
	if err != nil {
		return nil, err
	}

	for star := range counts {
		if star < tracking.MinStars || star > tracking.MaxStars {
			return nil, errors.Errorf("invalid blueprint star %d. It must be between %d and %d", star, tracking.MinStars, tracking.MaxStars)
		}
	}

	return counts, nil
}

func mergeBlueprints(existing *tracking.Blueprints, counts map[int]int) *tracking.Blueprints {
	ret := &tracking.Blueprints{OwnedByStar: map[int]int{}}
	if existing != nil {
		for star, count := range existing.OwnedByStar {
			ret.OwnedByStar[star] = count
		}
	}
	for star, count := range counts {
		if count == 0 {
			delete(ret.OwnedByStar, star)
			continue
		}

		ret.OwnedByStar[star] = count
	}

	return ret
}

// Do applies the options to the item and returns its key
func Do(ctx context.GtrackCtx, brand, model string, opts Options) (string, error) {
	if err := validate.ItemName(brand, model); err != nil {
		return "", errors.Wrap(err, "invalid item")
	}
	if opts.isEmpty() {
		return "", errors.New("nothing to update. Please provide at least one flag")
	}
	if opts.Stars != nil {
		if err := validate.Stars(*opts.Stars); err != nil {
			return "", err
		}
	}

	cat, err := infra.LoadCatalog(ctx)
	if err != nil {
		return "", err
	}

	key := keycodec.FromParts(brand, model)
	maxStars := tracking.MaxStars
	if item, ok := cat.Find(key); ok {
		maxStars = item.MaxStars
	} else if cat.Len() > 0 {
		log.Warnf("%s %s is not in the catalog\n", brand, model)
	}

	err = infra.Store(ctx).Batch(func(tx *tracking.Store) error {
		var p tracking.Patch

		if opts.Stars != nil {
			p.Stars = tracking.Int(*opts.Stars)
			if *opts.Stars != maxStars {
				p.GoldMaxed = tracking.Bool(false)
			}
		}
		if opts.Owned != nil && *opts.Owned {
			p.Owned = tracking.Bool(true)
		}
		if opts.Blueprints != nil {
			p.Blueprints = mergeBlueprints(tx.Get(key).Blueprints, opts.Blueprints)
		}

		if err := tx.Merge(key, p); err != nil {
			return err
		}

		if opts.Owned != nil && !*opts.Owned {
			if err := tx.ClearOwnership(key); err != nil {
				return err
			}
		}
		if opts.Key != nil {
			if err := tx.SetKeyObtained(key, *opts.Key); err != nil {
				return err
			}
		}
		if opts.Gold != nil {
			if err := tx.SetGoldMaxed(key, *opts.Gold, maxStars); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "updating the item")
	}

	return key, nil
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		var opts Options

		f := cmd.Flags()
		if f.Changed("stars") {
			opts.Stars = tracking.Int(starsFlag)
		}
		if f.Changed("owned") {
			opts.Owned = tracking.Bool(ownedFlag)
		}
		if f.Changed("gold") {
			opts.Gold = tracking.Bool(goldFlag)
		}
		if f.Changed("key") {
			opts.Key = tracking.Bool(keyFlag)
		}
		if f.Changed("blueprint") {
			counts, err := parseBlueprints(blueprintFlags)
			if err != nil {
				return errors.Wrap(err, "parsing blueprints")
			}
			opts.Blueprints = counts
		}

		key, err := Do(ctx, args[0], args[1], opts)
		if err != nil {
			return err
		}

		log.Successf("updated %s %s\n", args[0], args[1])
		output.RecordInfo(key, args[0]+" "+args[1], infra.Store(ctx).Get(key))

		return nil
	}
}
