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
	gosync "sync"
	"time"

	"github.com/gtrack/gtrack/pkg/clock"
)

// Scheduler runs a function once a quiet period has elapsed since the last call
// to Schedule. At most one run is pending at any time.
type Scheduler struct {
	clock clock.Clock
	delay time.Duration
	fire  func(signature string)

	mu    gosync.Mutex
	timer clock.Timer
	// generation identifies the latest schedule. A timer of an older
	// generation does nothing when it fires.
	generation uint64
}

// NewScheduler returns a scheduler that calls fire after delay
func NewScheduler(c clock.Clock, delay time.Duration, fire func(signature string)) *Scheduler {
	return &Scheduler{
		clock: c,
		delay: delay,
		fire:  fire,
	}
}

// Schedule cancels the pending run, if any, and schedules a new one
func (s *Scheduler) Schedule(signature string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	s.generation++
	gen := s.generation

	s.timer = s.clock.AfterFunc(s.delay, func() {
		s.run(gen, signature)
	})
}

func (s *Scheduler) run(gen uint64, signature string) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	s.fire(signature)
}

// Cancel cancels the pending run, if any
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

// Pending returns true if a run is scheduled
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.timer != nil
}
