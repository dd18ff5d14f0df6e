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

package watch

import (
	stdctx "context"
	gosync "sync"

	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/infra"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/sync"
	"github.com/pkg/errors"
)

// daemon owns the sync session of a watch process. Local changes reach the
// server through the debounced trigger once the session has been bootstrapped.
type daemon struct {
	ctx     context.GtrackCtx
	engine  *sync.Engine
	gate    *sync.Gate
	trigger *sync.Trigger

	// mu serializes the bootstrap, the pulls and the pushes
	mu gosync.Mutex
}

func newDaemon(ctx context.GtrackCtx, e *sync.Engine) *daemon {
	d := &daemon{
		ctx:    ctx,
		engine: e,
		gate:   sync.NewGate(ctx.SessionToken),
	}
	d.trigger = sync.NewTrigger(ctx.Clock, ctx.PushDebounce, d)
	d.trigger.OnPush = d.onPush

	return d
}

// Push pushes the local store. It never runs concurrently with a pull.
func (d *daemon) Push(c stdctx.Context, token string) (sync.PushResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.engine.Push(c, token)
}

func (d *daemon) values() ([]interface{}, error) {
	records, err := d.engine.Store.GetAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading records")
	}
	agg, err := d.engine.Store.Aggregate()
	if err != nil {
		return nil, errors.Wrap(err, "reading aggregate")
	}

	return []interface{}{records, agg}, nil
}

// prime marks the current local state as in sync with the server
func (d *daemon) prime() {
	values, err := d.values()
	if err != nil {
		log.Errorf("reading local progress: %s\n", err.Error())
		return
	}

	d.trigger.Prime(d.gate.Session(), values...)
}

// bootstrap reconciles the session with the server and opens the gate. It
// does nothing once the gate is open.
func (d *daemon) bootstrap(c stdctx.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.gate.IsOpen() {
		return nil
	}

	res, err := d.engine.Bootstrap(c, d.gate.Session().Token)
	if err != nil {
		return errors.Wrap(err, "bootstrapping session")
	}

	if res.Migrated {
		log.Success("promoted the local progress to the server\n")
		if err := infra.TouchLastPushAt(d.ctx); err != nil {
			log.Errorf("%s\n", err.Error())
		}
	}
	if err := infra.TouchLastPullAt(d.ctx); err != nil {
		log.Errorf("%s\n", err.Error())
	}

	d.gate.Open()
	d.prime()

	log.Info("session ready\n")

	return nil
}

// onChange reports the local state to the trigger. It returns true if a push was scheduled.
func (d *daemon) onChange() bool {
	values, err := d.values()
	if err != nil {
		log.Errorf("reading local progress: %s\n", err.Error())
		return false
	}

	return d.trigger.Notify(d.gate.Session(), values...)
}

// tick runs on the pull schedule. It retries a failed bootstrap or pulls the
// remote progress. A pull never runs while local changes have not reached the
// remote: a failed push is retried first and the pull waits for its success.
func (d *daemon) tick(c stdctx.Context) {
	if !d.gate.IsOpen() {
		if err := d.bootstrap(c); err != nil {
			log.Errorf("%s\n", err.Error())
		}
		return
	}

	// report writes the file watcher has not seen yet
	d.onChange()

	if !d.trigger.Flush() {
		log.Debug("postponing pull until local changes are pushed\n")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.engine.PullUnless(c, d.gate.Session().Token, func() bool {
		d.onChange()
		return d.trigger.Dirty()
	})
	if err != nil {
		log.Errorf("%s\n", err.Error())
		return
	}
	if res.Discarded {
		log.Debug("postponing pull until local changes are pushed\n")
		return
	}
	if err := infra.TouchLastPullAt(d.ctx); err != nil {
		log.Errorf("%s\n", err.Error())
	}

	d.prime()

	log.Debug("pulled %d items, removed %d\n", res.Applied, res.Pruned)
}

func (d *daemon) onPush(res sync.PushResult, err error) {
	if err != nil {
		log.Errorf("%s\n", err.Error())
		return
	}
	if !res.Pushed {
		return
	}

	if err := infra.TouchLastPushAt(d.ctx); err != nil {
		log.Errorf("%s\n", err.Error())
	}
	log.Debug("pushed local changes\n")
}

func (d *daemon) stop() {
	d.trigger.Stop()
}
