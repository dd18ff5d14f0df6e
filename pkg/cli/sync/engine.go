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

// Package sync reconciles the local tracking store with the account service
package sync

import (
	"context"
	"time"

	"github.com/gtrack/gtrack/pkg/cli/client"
	"github.com/gtrack/gtrack/pkg/cli/keycodec"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
	"github.com/pkg/errors"
)

const (
	// DefaultPushTimeout is the bound of a push request
	DefaultPushTimeout = 15 * time.Second
	// DefaultPullTimeout is the bound of a pull request
	DefaultPullTimeout = 15 * time.Second
)

// Remote is the account service
type Remote interface {
	SaveProgress(ctx context.Context, token string, p client.Progress) error
	GetProgress(ctx context.Context, token string) (client.GetProgressResp, error)
}

// Engine pushes the local store to the remote and pulls it back
type Engine struct {
	Store  *tracking.Store
	Remote Remote
	// Labels maps keys to the exact labels sent to the remote
	Labels      keycodec.Labels
	PushTimeout time.Duration
	PullTimeout time.Duration
}

// NewEngine returns an engine with the default timeouts
func NewEngine(store *tracking.Store, remote Remote, labels keycodec.Labels) *Engine {
	return &Engine{
		Store:       store,
		Remote:      remote,
		Labels:      labels,
		PushTimeout: DefaultPushTimeout,
		PullTimeout: DefaultPullTimeout,
	}
}

func timeoutOrDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}

	return d
}

func (e *Engine) save(ctx context.Context, token string, p client.Progress) error {
	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(e.PushTimeout, DefaultPushTimeout))
	defer cancel()

	return e.Remote.SaveProgress(ctx, token, p)
}

func (e *Engine) fetch(ctx context.Context, token string) (*client.Progress, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(e.PullTimeout, DefaultPullTimeout))
	defer cancel()

	resp, err := e.Remote.GetProgress(ctx, token)
	if err != nil {
		return nil, err
	}

	return resp.Progress, nil
}

// snapshot reads all records and the aggregate of the store
func snapshot(s *tracking.Store) (map[string]tracking.Record, tracking.Aggregate, error) {
	records, err := s.GetAll()
	if err != nil {
		return nil, tracking.Aggregate{}, errors.Wrap(err, "reading records")
	}

	agg, err := s.Aggregate()
	if err != nil {
		return nil, tracking.Aggregate{}, errors.Wrap(err, "reading aggregate")
	}

	return records, agg, nil
}
