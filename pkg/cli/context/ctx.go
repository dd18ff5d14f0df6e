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

// Package context defines gtrack context
package context

import (
	"net/http"
	"time"

	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/gtrack/gtrack/pkg/clock"
	"github.com/gtrack/gtrack/pkg/dirs"
)

// GtrackCtx is a context holding the information of the current runtime
type GtrackCtx struct {
	Paths        dirs.Paths
	APIEndpoint  string
	Version      string
	DB           *database.DB
	DBPath       string
	SessionToken string
	DeviceID     string
	CatalogPath  string
	PushDebounce time.Duration
	PushTimeout  time.Duration
	PullTimeout  time.Duration
	PullSchedule string
	Clock        clock.Clock
	HTTPClient   *http.Client
}

// Redact replaces private information from the context with a set of
// placeholder values.
func Redact(ctx GtrackCtx) GtrackCtx {
	var sessionToken string
	if ctx.SessionToken != "" {
		sessionToken = "1"
	} else {
		sessionToken = "0"
	}
	ctx.SessionToken = sessionToken

	return ctx
}
