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

// Package view implements the command that prints the tracked progress
package view

import (
	"fmt"

	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/keycodec"
	"github.com/gtrack/gtrack/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * View the progress of all items
 gtrack view

 * View the progress of an item
 gtrack view Porsche "911 GT3 RS"`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new view command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "view <brand?> <model?>",
		Aliases: []string{"v", "ls"},
		Short:   "Show the tracked progress",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	return cmd
}

func viewItem(ctx context.GtrackCtx, brand, model string, labels keycodec.Labels) error {
	key := keycodec.FromParts(brand, model)
	if key == "" {
		return errors.New("invalid item")
	}

	r := infra.Store(ctx).Get(key)
	label, ok := labels.Label(key)
	if !ok {
		label = brand + " " + model
	}

	output.RecordInfo(key, label, r)

	return nil
}

func viewAll(ctx context.GtrackCtx, labels keycodec.Labels) error {
	store := infra.Store(ctx)

	records, err := store.GetAll()
	if err != nil {
		return errors.Wrap(err, "reading records")
	}
	agg, err := store.Aggregate()
	if err != nil {
		return errors.Wrap(err, "reading aggregate")
	}
	lastPullAt, lastPushAt, err := infra.GetSyncTimes(ctx)
	if err != nil {
		return err
	}

	output.AggregateInfo(agg)
	output.SyncInfo(lastPullAt, lastPushAt)
	fmt.Println("")
	fmt.Print(output.FormatSnapshot(records, agg, labels))

	return nil
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		cat, err := infra.LoadCatalog(ctx)
		if err != nil {
			return err
		}

		if len(args) == 2 {
			return viewItem(ctx, args[0], args[1], cat.Labels())
		}

		return viewAll(ctx, cat.Labels())
	}
}
