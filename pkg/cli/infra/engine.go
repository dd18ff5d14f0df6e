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

package infra

import (
	"strconv"

	"github.com/gtrack/gtrack/pkg/cli/catalog"
	"github.com/gtrack/gtrack/pkg/cli/client"
	"github.com/gtrack/gtrack/pkg/cli/consts"
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/gtrack/gtrack/pkg/cli/sync"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
	"github.com/pkg/errors"
)

// ErrNotLoggedIn is an error for running a sync operation without a session
var ErrNotLoggedIn = errors.New("not logged in. Please run 'gtrack login' first")

// Store returns the tracking store backed by the local database
func Store(ctx context.GtrackCtx) *tracking.Store {
	return tracking.New(ctx.DB)
}

// LoadCatalog reads the catalog configured for the context. A missing catalog
// file yields an empty catalog.
func LoadCatalog(ctx context.GtrackCtx) (*catalog.Catalog, error) {
	c, err := catalog.Load(ctx.CatalogPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading catalog")
	}

	return c, nil
}

// NewClient returns a client for the account service configured for the context
func NewClient(ctx context.GtrackCtx) *client.Client {
	c := client.New(ctx.APIEndpoint, ctx.Version, ctx.DeviceID)
	if ctx.HTTPClient != nil {
		c.HTTPClient = ctx.HTTPClient
	}

	return c
}

// NewEngine returns a sync engine over the local store and the account service
func NewEngine(ctx context.GtrackCtx, cat *catalog.Catalog) *sync.Engine {
	e := sync.NewEngine(Store(ctx), NewClient(ctx), cat.Labels())
	if ctx.PushTimeout > 0 {
		e.PushTimeout = ctx.PushTimeout
	}
	if ctx.PullTimeout > 0 {
		e.PullTimeout = ctx.PullTimeout
	}

	return e
}

// RequireSession returns ErrNotLoggedIn if the context has no session token
func RequireSession(ctx context.GtrackCtx) error {
	if ctx.SessionToken == "" {
		return ErrNotLoggedIn
	}

	return nil
}

// TouchLastPullAt records the time of a successful pull
func TouchLastPullAt(ctx context.GtrackCtx) error {
	return touch(ctx, consts.SystemLastPullAt)
}

// TouchLastPushAt records the time of a successful push
func TouchLastPushAt(ctx context.GtrackCtx) error {
	return touch(ctx, consts.SystemLastPushAt)
}

func touch(ctx context.GtrackCtx, key string) error {
	now := ctx.Clock.Now().Unix()
	if err := database.UpsertSystem(ctx.DB, key, strconv.FormatInt(now, 10)); err != nil {
		return errors.Wrapf(err, "updating %s", key)
	}

	return nil
}

// GetSyncTimes returns the times of the last pull and the last push in unix seconds
func GetSyncTimes(ctx context.GtrackCtx) (int64, int64, error) {
	var lastPullAt, lastPushAt int64
	if err := database.GetSystem(ctx.DB, consts.SystemLastPullAt, &lastPullAt); err != nil {
		return 0, 0, errors.Wrap(err, "reading last pull time")
	}
	if err := database.GetSystem(ctx.DB, consts.SystemLastPushAt, &lastPushAt); err != nil {
		return 0, 0, errors.Wrap(err, "reading last push time")
	}

	return lastPullAt, lastPushAt, nil
}
