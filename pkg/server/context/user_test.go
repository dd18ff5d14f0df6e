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

package context

import (
	"context"
	"testing"

	"github.com/gtrack/gtrack/pkg/assert"
	"github.com/gtrack/gtrack/pkg/server/database"
)

func TestUser(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, User(ctx) == nil, true, "user should be absent")
	assert.Equal(t, SessionKey(ctx), "", "session key should be absent")

	u := &database.User{Name: "alice"}
	ctx = WithSessionKey(WithUser(ctx, u), "key")

	assert.Equal(t, User(ctx), u, "user mismatch")
	assert.Equal(t, SessionKey(ctx), "key", "session key mismatch")
}
