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

// Package watch implements the command that keeps the local progress in sync
// with the server while it runs
package watch

import (
	stdctx "context"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"
	"time"

	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

const pollInterval = 250 * time.Millisecond

var example = `
 * Keep the progress in sync while tracking it from other terminals
 gtrack watch

 * Write the output to a rotating log file
 gtrack watch --logFile ~/.local/state/gtrack/watch.log`

var logFileFlag string

// NewCmd returns a new watch command
func NewCmd(ctx context.GtrackCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Push local changes and pull the server periodically until interrupted",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&logFileFlag, "logFile", "", "write the output to a rotating log file")

	return cmd
}

func newLogFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// newWatcher returns a watcher for the database file and its journal files
func newWatcher(dbPath string) (*watcher.Watcher, error) {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create)

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(dbPath))
	w.AddFilterHook(watcher.RegexFilterHook(pattern, true))

	if err := w.Add(filepath.Dir(dbPath)); err != nil {
		return nil, errors.Wrapf(err, "watching %s", dbPath)
	}

	return w, nil
}

func (d *daemon) watch(w *watcher.Watcher) {
	for {
		select {
		case event := <-w.Event:
			log.Debug("database changed: %s\n", event.Path)
			d.onChange()
		case err := <-w.Error:
			log.Errorf("watching the database: %s\n", err.Error())
		case <-w.Closed:
			return
		}
	}
}

func newRun(ctx context.GtrackCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if logFileFlag != "" {
			lf := newLogFile(logFileFlag)
			defer lf.Close()
			log.SetOutput(lf)
		}

		if err := infra.RequireSession(ctx); err != nil {
			return err
		}
		if ctx.DBPath == "" {
			return errors.New("the database path is unknown")
		}

		cat, err := infra.LoadCatalog(ctx)
		if err != nil {
			return err
		}

		d := newDaemon(ctx, infra.NewEngine(ctx, cat))
		defer d.stop()

		bg := stdctx.Background()
		if err := d.bootstrap(bg); err != nil {
			log.Errorf("%s. Retrying on schedule '%s'\n", err.Error(), ctx.PullSchedule)
		}

		c := cron.New()
		if err := c.AddFunc(ctx.PullSchedule, func() { d.tick(bg) }); err != nil {
			return errors.Wrapf(err, "scheduling pulls with '%s'", ctx.PullSchedule)
		}
		c.Start()
		defer c.Stop()

		w, err := newWatcher(ctx.DBPath)
		if err != nil {
			return err
		}
		go d.watch(w)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			log.Info("stopping\n")
			w.Close()
		}()

		log.Infof("watching %s\n", ctx.DBPath)
		if err := w.Start(pollInterval); err != nil {
			return errors.Wrap(err, "watching the database")
		}

		return nil
	}
}
