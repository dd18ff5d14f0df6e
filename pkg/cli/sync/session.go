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
)

// Session is the state of the signed in user as seen by the sync engine
type Session struct {
	Token string
	// Ready is true once the initial pull of the session has completed
	Ready bool
}

// CanSync returns true if a push may be issued on behalf of the session
func (s Session) CanSync() bool {
	return s.Token != "" && s.Ready
}

// Gate holds the session token and the sync-ready flag. The flag is raised
// once the bootstrap of the session succeeds.
type Gate struct {
	mu    gosync.RWMutex
	token string
	ready bool
}

// NewGate returns a closed gate for the token
func NewGate(token string) *Gate {
	return &Gate{token: token}
}

// Open marks the session as ready
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ready = true
}

// Reset replaces the token and closes the gate
func (g *Gate) Reset(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.token = token
	g.ready = false
}

// IsOpen returns true if the gate was opened
func (g *Gate) IsOpen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.ready
}

// Session returns a snapshot of the session
func (g *Gate) Session() Session {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Session{Token: g.token, Ready: g.ready}
}
