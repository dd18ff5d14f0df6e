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
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"github.com/gtrack/gtrack/pkg/assert"
	"github.com/gtrack/gtrack/pkg/clock"
	"github.com/pkg/errors"
)

type countingPusher struct {
	mu     gosync.Mutex
	tokens []string
	err    error
	// during, if set, runs inside the first push
	during func()
}

func (p *countingPusher) Push(ctx context.Context, token string) (PushResult, error) {
	p.mu.Lock()
	p.tokens = append(p.tokens, token)
	during := p.during
	p.during = nil
	p.mu.Unlock()

	if during != nil {
		during()
	}

	if p.err != nil {
		return PushResult{}, p.err
	}

	return PushResult{Pushed: true}, nil
}

func (p *countingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.tokens)
}

var readySession = Session{Token: "token", Ready: true}

func TestTriggerCoalescesBursts(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{}
	tr := NewTrigger(c, time.Second, p)

	for i := 0; i < 10; i++ {
		scheduled := tr.Notify(readySession, "acura_nsx", i)
		assert.Equal(t, scheduled, true, fmt.Sprintf("change %d should schedule a push", i))
		c.Advance(100 * time.Millisecond)
	}

	assert.Equal(t, p.count(), 0, "no push should happen during the burst")
	assert.Equal(t, c.PendingTimers(), 1, "exactly one push should be pending")

	c.Advance(time.Second)
	assert.Equal(t, p.count(), 1, "burst should produce exactly one push")
	assert.Equal(t, tr.Pending(), false, "nothing should be pending after the push")
}

func TestTriggerSpacedChanges(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{}
	tr := NewTrigger(c, time.Second, p)

	for i := 0; i < 5; i++ {
		tr.Notify(readySession, "acura_nsx", i)
		c.Advance(1500 * time.Millisecond)
	}

	assert.Equal(t, p.count(), 5, "spaced changes should each produce a push")
}

func TestTriggerRequiresReadySession(t *testing.T) {
	testCases := []struct {
		session  Session
		expected bool
	}{
		{Session{Token: "", Ready: true}, false},
		{Session{Token: "token", Ready: false}, false},
		{Session{Token: "", Ready: false}, false},
		{Session{Token: "token", Ready: true}, true},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("case %d", idx), func(t *testing.T) {
			c := clock.NewMock()
			p := &countingPusher{}
			tr := NewTrigger(c, time.Second, p)

			scheduled := tr.Notify(tc.session, "acura_nsx", 3)
			c.Advance(2 * time.Second)

			assert.Equal(t, scheduled, tc.expected, "scheduled mismatch")
			if tc.expected {
				assert.Equal(t, p.count(), 1, "push count mismatch")
			} else {
				assert.Equal(t, p.count(), 0, "push count mismatch")
			}
		})
	}
}

func TestTriggerIgnoresUnchangedSignature(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{}
	tr := NewTrigger(c, time.Second, p)

	assert.Equal(t, tr.Notify(readySession, map[string]int{"a": 1, "b": 2}), true, "first change should schedule")
	c.Advance(600 * time.Millisecond)
	assert.Equal(t, tr.Notify(readySession, map[string]int{"b": 2, "a": 1}), false, "same values should not reschedule")

	c.Advance(400 * time.Millisecond)
	assert.Equal(t, p.count(), 1, "push should fire after the original quiet period")
}

func TestTriggerPrime(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{}
	tr := NewTrigger(c, time.Second, p)

	tr.Prime(readySession, "acura_nsx", 3)
	assert.Equal(t, tr.Notify(readySession, "acura_nsx", 3), false, "primed values should not schedule")
	assert.Equal(t, tr.Notify(readySession, "acura_nsx", 4), true, "changed values should schedule")
}

func TestTriggerSwallowsErrors(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{err: errors.New("server down")}
	tr := NewTrigger(c, time.Second, p)

	var gotErr error
	tr.OnPush = func(res PushResult, err error) {
		gotErr = err
	}

	tr.Notify(readySession, 1)
	c.Advance(time.Second)
	tr.Notify(readySession, 2)
	c.Advance(time.Second)

	assert.Equal(t, p.count(), 2, "failed pushes should not stop later ones")
	assert.NotEqual(t, gotErr, nil, "error should be reported to the hook")
}

func TestTriggerStop(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{}
	tr := NewTrigger(c, time.Second, p)

	tr.Notify(readySession, 1)
	tr.Stop()
	c.Advance(time.Minute)

	assert.Equal(t, p.count(), 0, "stopped trigger should not push")
}

func TestTriggerRerunsAfterInFlightPush(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{}
	tr := NewTrigger(c, time.Second, p)

	p.during = func() {
		tr.Notify(Session{Token: "token-2", Ready: true}, 2)
		c.Advance(time.Second)
	}

	tr.Notify(readySession, 1)
	c.Advance(time.Second)

	assert.DeepEqual(t, p.tokens, []string{"token", "token-2"}, "a change during a push should push again after it")
	assert.Equal(t, tr.Pending(), false, "nothing should be pending")
}

func TestScheduler(t *testing.T) {
	c := clock.NewMock()

	var fired []string
	s := NewScheduler(c, time.Second, func(sig string) {
		fired = append(fired, sig)
	})

	s.Schedule("a")
	c.Advance(500 * time.Millisecond)
	s.Schedule("b")
	assert.Equal(t, s.Pending(), true, "a run should be pending")

	c.Advance(500 * time.Millisecond)
	assert.Equal(t, len(fired), 0, "rescheduling should restart the quiet period")

	c.Advance(500 * time.Millisecond)
	assert.DeepEqual(t, fired, []string{"b"}, "only the latest schedule should fire")

	s.Schedule("c")
	s.Cancel()
	c.Advance(time.Minute)
	assert.DeepEqual(t, fired, []string{"b"}, "a canceled run should not fire")
	assert.Equal(t, s.Pending(), false, "nothing should be pending")
}

func TestSignature(t *testing.T) {
	ch := make(chan int)

	s1 := Signature(map[string]int{"a": 1, "b": 2}, "token")
	s2 := Signature(map[string]int{"b": 2, "a": 1}, "token")
	assert.Equal(t, s1, s2, "map order should not matter")

	assert.NotEqual(t, Signature(1, 2), Signature(2, 1), "order of values should matter")
	assert.NotEqual(t, Signature("ab"), Signature("a", "b"), "value boundaries should matter")

	f1 := Signature(func() {}, 1)
	f2 := Signature(ch, 1)
	f3 := Signature(complex(1, 2), 1)
	assert.Equal(t, f1, f2, "opaque values should share a marker")
	assert.Equal(t, f1, f3, "unserializable values should share a marker")

	assert.Equal(t, len(Signature()), 64, "signature length mismatch")
	assert.Equal(t, len(Signature(struct{ A []int }{A: make([]int, 1000)})), 64, "signature length mismatch")
}

func TestGate(t *testing.T) {
	g := NewGate("token")
	assert.Equal(t, g.Session().CanSync(), false, "closed gate should not sync")

	g.Open()
	assert.Equal(t, g.IsOpen(), true, "gate should be open")
	assert.Equal(t, g.Session(), Session{Token: "token", Ready: true}, "session mismatch")

	g.Reset("other")
	assert.Equal(t, g.Session(), Session{Token: "other", Ready: false}, "reset should close the gate")
}

func TestTriggerDirtyUntilPushSucceeds(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{err: errors.New("network down")}
	tr := NewTrigger(c, time.Second, p)

	assert.Equal(t, tr.Dirty(), false, "a new trigger should be clean")

	tr.Notify(readySession, "acura_nsx", 1)
	assert.Equal(t, tr.Dirty(), true, "a scheduled push should be dirty")

	c.Advance(time.Second)
	assert.Equal(t, p.count(), 1, "push count mismatch")
	assert.Equal(t, tr.Pending(), false, "nothing should be scheduled after the push")
	assert.Equal(t, tr.Dirty(), true, "a failed push should leave the trigger dirty")

	assert.Equal(t, tr.Flush(), false, "flush should report the failed retry")
	assert.Equal(t, p.count(), 2, "flush should retry the push")
	assert.Equal(t, tr.Dirty(), true, "trigger should stay dirty")

	p.mu.Lock()
	p.err = nil
	p.mu.Unlock()

	assert.Equal(t, tr.Flush(), true, "flush should succeed")
	assert.Equal(t, p.count(), 3, "push count mismatch")
	assert.Equal(t, tr.Dirty(), false, "a successful push should clean the trigger")

	assert.Equal(t, tr.Flush(), true, "flush of a clean trigger should succeed")
	assert.Equal(t, p.count(), 3, "a clean trigger should not push")
}

func TestTriggerDirtyWhileInFlight(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{}
	tr := NewTrigger(c, time.Second, p)

	var dirtyDuring, flushDuring bool
	p.during = func() {
		dirtyDuring = tr.Dirty()
		flushDuring = tr.Flush()
	}

	tr.Notify(readySession, "acura_nsx", 1)
	c.Advance(time.Second)

	assert.Equal(t, dirtyDuring, true, "an in flight push should be dirty")
	assert.Equal(t, flushDuring, false, "flush should not wait for an in flight push")
	assert.Equal(t, p.count(), 1, "flush should not start a second push")
	assert.Equal(t, tr.Dirty(), false, "trigger should be clean once the push succeeded")
}

func TestTriggerChangeDuringPushStaysDirty(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{}
	tr := NewTrigger(c, time.Second, p)

	p.during = func() {
		tr.Notify(readySession, "acura_nsx", 2)
	}

	tr.Notify(readySession, "acura_nsx", 1)
	c.Advance(time.Second)

	assert.Equal(t, p.count(), 1, "push count mismatch")
	assert.Equal(t, tr.Dirty(), true, "a change made during the push should stay dirty")

	c.Advance(time.Second)
	assert.Equal(t, p.count(), 2, "the change should be pushed")
	assert.Equal(t, tr.Dirty(), false, "trigger should be clean")
}

func TestTriggerPrimeCleans(t *testing.T) {
	c := clock.NewMock()
	p := &countingPusher{err: errors.New("network down")}
	tr := NewTrigger(c, time.Second, p)

	tr.Notify(readySession, "acura_nsx", 1)
	c.Advance(time.Second)
	assert.Equal(t, tr.Dirty(), true, "trigger should be dirty")

	tr.Prime(readySession, "acura_nsx", 1)
	assert.Equal(t, tr.Dirty(), false, "prime should clean the trigger")
}
