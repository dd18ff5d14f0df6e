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

package logout

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gtrack/gtrack/pkg/assert"
	"github.com/gtrack/gtrack/pkg/cli/consts"
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/pkg/errors"
)

func setup(t *testing.T, status int) (context.GtrackCtx, *int) {
	var calls int

	mux := http.NewServeMux()
	mux.HandleFunc("/signout", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = ts.URL

	return ctx, &calls
}

func getSession(t *testing.T, ctx context.GtrackCtx) string {
	var token string
	if err := database.GetSystem(ctx.DB, consts.SystemSessionKey, &token); err != nil {
		t.Fatal(errors.Wrap(err, "reading session"))
	}

	return token
}

func TestDo(t *testing.T) {
	testCases := []struct {
		name   string
		status int
	}{
		{name: "ok", status: http.StatusOK},
		{name: "expired on the server", status: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, calls := setup(t, tc.status)
			database.MustExec(t, "inserting session", ctx.DB, "INSERT INTO system (key, value) VALUES (?, ?)", consts.SystemSessionKey, "someToken")

			if err := Do(ctx); err != nil {
				t.Fatal(errors.Wrap(err, "logging out"))
			}

			assert.Equal(t, *calls, 1, "signout call count mismatch")
			assert.Equal(t, getSession(t, ctx), "", "session should be removed")
		})
	}
}

func TestDo_serverError(t *testing.T) {
	ctx, _ := setup(t, http.StatusInternalServerError)
	database.MustExec(t, "inserting session", ctx.DB, "INSERT INTO system (key, value) VALUES (?, ?)", consts.SystemSessionKey, "someToken")

	err := Do(ctx)
	assert.NotEqual(t, err, nil, "error should be returned")
	assert.Equal(t, getSession(t, ctx), "someToken", "session should be kept")
}

func TestDo_notLoggedIn(t *testing.T) {
	ctx, calls := setup(t, http.StatusOK)

	err := Do(ctx)
	assert.Equal(t, err, ErrNotLoggedIn, "error mismatch")
	assert.Equal(t, *calls, 0, "server should not be called")
}
