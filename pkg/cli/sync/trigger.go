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

package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/clock"
)

// DefaultDebounce is the quiet period after the last change before a push
const DefaultDebounce = 1000 * time.Millisecond

// Pusher pushes the local store
type Pusher interface {
	Push(ctx context.Context, token string) (PushResult, error)
}

// Trigger collapses bursts of local changes into a single push
type Trigger struct {
	pusher    Pusher
	scheduler *Scheduler

	// OnPush, if set, is called after every push with its outcome
	OnPush func(PushResult, error)

	mu        gosync.Mutex
	signature string
	session   Session
	inFlight  bool
	rerun     bool
	// dirty is set from a change until a push of that change succeeds
	dirty bool
}

// NewTrigger returns a trigger that pushes once the changes have been quiet for delay
func NewTrigger(c clock.Clock, delay time.Duration, p Pusher) *Trigger {
	if delay <= 0 {
		delay = DefaultDebounce
	}

	t := &Trigger{pusher: p}
	t.scheduler = NewScheduler(c, delay, t.fire)

	return t
}

// sessionSignature is the signature of the values and the identity of the session
func sessionSignature(s Session, values []interface{}) string {
	v := make([]interface{}, 0, len(values)+1)
	v = append(v, values...)
	v = append(v, s.Token)

	return Signature(v...)
}

// Notify reports the current values of interest. A push is scheduled if they
// differ from the last reported ones and the session can sync. It returns true
// if a push was scheduled.
func (t *Trigger) Notify(s Session, values ...interface{}) bool {
	if !s.CanSync() {
		return false
	}

	sig := sessionSignature(s, values)

	t.mu.Lock()
	if sig == t.signature {
		t.mu.Unlock()
		return false
	}
	t.signature = sig
	t.session = s
	t.dirty = true
	t.mu.Unlock()

	t.scheduler.Schedule(sig)
	return true
}

// Prime records the values as already pushed without scheduling a push
func (t *Trigger) Prime(s Session, values ...interface{}) {
	sig := sessionSignature(s, values)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.signature = sig
	t.session = s
	t.dirty = false
}

// Pending returns true if a push is scheduled
func (t *Trigger) Pending() bool {
	return t.scheduler.Pending()
}

// Dirty returns true if reported changes have not reached the remote yet:
// their push is scheduled, in flight, or failed.
func (t *Trigger) Dirty() bool {
	if t.scheduler.Pending() {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.dirty || t.inFlight
}

// Flush pushes right away the changes whose last push failed. It does not
// wait for a scheduled or in flight push. It returns true if nothing is left
// to push.
func (t *Trigger) Flush() bool {
	if t.scheduler.Pending() {
		return false
	}

	t.mu.Lock()
	if !t.dirty {
		t.mu.Unlock()
		return true
	}
	if t.inFlight {
		t.mu.Unlock()
		return false
	}
	sig := t.signature
	t.mu.Unlock()

	t.fire(sig)

	return !t.Dirty()
}

// Stop cancels the pending push
func (t *Trigger) Stop() {
	t.scheduler.Cancel()
}

func (t *Trigger) fire(signature string) {
	t.mu.Lock()
	if t.inFlight {
		t.rerun = true
		t.mu.Unlock()
		return
	}
	t.inFlight = true
	t.mu.Unlock()

	for {
		t.mu.Lock()
		session := t.session
		sig := t.signature
		t.mu.Unlock()

		err := t.push(session)

		t.mu.Lock()
		if err == nil && sig == t.signature {
			t.dirty = false
		}
		if !t.rerun {
			t.inFlight = false
			t.mu.Unlock()
			return
		}
		t.rerun = false
		t.mu.Unlock()
	}
}

func (t *Trigger) push(s Session) error {
	res, err := t.pusher.Push(context.Background(), s.Token)
	if err != nil {
		log.Debug("push failed: %s\n", err.Error())
	} else if res.Skipped {
		log.Debug("push skipped\n")
	}

	if t.OnPush != nil {
		t.OnPush(res, err)
	}

	return err
}
