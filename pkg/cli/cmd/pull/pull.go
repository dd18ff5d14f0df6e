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

// Package pull implements the command that replaces the local progress with the one on the server
package pull

import (
	stdctx "context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gtrack/gtrack/pkg/cli/catalog"
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/output"
	"github.com/gtrack/gtrack/pkg/cli/sync"
	"github.com/gtrack/gtrack/pkg/cli/utils/diff"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Replace the local progress with the one on the server
 gtrack pull

 * Show what a pull would change without applying it
 gtrack pull --dry-run`

var dryRunFlag bool

// NewCmd returns a new pull command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pull",
		Short:   "Replace the local progress with the one on the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&dryRunFlag, "dry-run", false, "print the changes a pull would make without applying them")

	return cmd
}

// Do pulls the remote progress into the local store and records the time of the pull
func Do(ctx context.GtrackCtx, cat *catalog.Catalog) (sync.PullResult, error) {
	if err := infra.RequireSession(ctx); err != nil {
		return sync.PullResult{}, err
	}

	e := infra.NewEngine(ctx, cat)
	res, err := e.Pull(stdctx.Background(), ctx.SessionToken)
	if err != nil {
		return res, err
	}

	if err := infra.TouchLastPullAt(ctx); err != nil {
		return res, err
	}

	return res, nil
}

// Preview returns the line diff between the local progress and the progress
// after a pull
func Preview(ctx context.GtrackCtx, cat *catalog.Catalog) ([]diff.Line, error) {
	if err := infra.RequireSession(ctx); err != nil {
		return nil, err
	}

	store := infra.Store(ctx)
	records, err := store.GetAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading records")
	}
	agg, err := store.Aggregate()
	if err != nil {
		return nil, errors.Wrap(err, "reading aggregate")
	}

	e := infra.NewEngine(ctx, cat)
	nextRecords, nextAgg, err := e.Preview(stdctx.Background(), ctx.SessionToken)
	if err != nil {
		return nil, err
	}

	labels := cat.Labels()
	before := output.FormatSnapshot(records, agg, labels)
	after := output.FormatSnapshot(nextRecords, nextAgg, labels)

	return diff.Lines(before, after), nil
}

func printDiff(lines []diff.Line) {
	for _, l := range lines {
		switch l.Type {
		case diff.DiffInsert:
			fmt.Println(color.GreenString("+ %s", l.Text))
		case diff.DiffDelete:
			fmt.Println(color.RedString("- %s", l.Text))
		default:
			fmt.Printf("  %s\n", l.Text)
		}
	}
}

func printResult(res sync.PullResult) {
	if res.NoProgress {
		log.Info("the server has no progress yet\n")
		return
	}

	for _, d := range res.Discrepancies {
		if d.CatalogLabel == "" {
			log.Warnf("'%s' is not in the catalog\n", d.RemoteLabel)
		} else {
			log.Warnf("'%s' is named '%s' in the catalog\n", d.RemoteLabel, d.CatalogLabel)
		}
	}

	log.Successf("pulled %d items, removed %d\n", res.Applied, res.Pruned)
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		cat, err := infra.LoadCatalog(ctx)
		if err != nil {
			return err
		}

		if dryRunFlag {
			lines, err := Preview(ctx, cat)
			if err != nil {
				return errors.Wrap(err, "previewing pull")
			}
			if !diff.Changed(lines) {
				log.Info("already up to date\n")
				return nil
			}

			printDiff(lines)
			return nil
		}

		res, err := Do(ctx, cat)
		if err != nil {
			return errors.Wrap(err, "pulling")
		}

		printResult(res)

		return nil
	}
}
