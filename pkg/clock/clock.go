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

// Package clock provides an abstract layer over the standard time package
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock is an interface to the standard library time.
// It is used to implement a real or a mock clock. The latter is used in tests.
type Clock interface {
	Now() time.Time
	// AfterFunc waits for the duration to elapse and then calls f in its own goroutine.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a function scheduled with AfterFunc
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// has already fired or been stopped.
	Stop() bool
}

type clock struct{}

func (c *clock) Now() time.Time {
	return time.Now()
}

func (c *clock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// New returns an instance of a real clock
func New() Clock {
	return &clock{}
}

// Mock is a mock instance of clock. Timers scheduled on a mock clock only
// fire when the clock is moved forward with Advance.
type Mock struct {
	mu          sync.RWMutex
	currentTime time.Time
	timers      []*mockTimer
}

type mockTimer struct {
	mock    *Mock
	fireAt  time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *mockTimer) Stop() bool {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true

	return true
}

// SetNow sets the current time for the mock clock
func (c *Mock) SetNow(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// Now returns the current time
func (c *Mock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

// AfterFunc schedules f to run once the mock time reaches now+d
func (c *Mock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &mockTimer{
		mock:   c,
		fireAt: c.currentTime.Add(d),
		f:      f,
	}
	c.timers = append(c.timers, t)

	return t
}

// Advance moves the mock time forward and synchronously runs, in order of
// their deadlines, the functions of the timers that became due.
func (c *Mock) Advance(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	now := c.currentTime

	var due []*mockTimer
	var pending []*mockTimer
	for _, t := range c.timers {
		if t.stopped || t.fired {
			continue
		}
		if !t.fireAt.After(now) {
			t.fired = true
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].fireAt.Before(due[j].fireAt)
	})

	for _, t := range due {
		t.f()
	}
}

// PendingTimers returns the number of timers that have neither fired nor been stopped
func (c *Mock) PendingTimers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}

	return n
}

// NewMock returns an instance of a mock clock
func NewMock() *Mock {
	return &Mock{
		currentTime: time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC),
	}
}
