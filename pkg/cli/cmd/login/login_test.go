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

package login

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gtrack/gtrack/pkg/assert"
	"github.com/gtrack/gtrack/pkg/cli/consts"
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/pkg/errors"
)

func TestGetServerDisplayURL(t *testing.T) {
	testCases := []struct {
		apiEndpoint string
		expected    string
	}{
		{
			apiEndpoint: "https://gtrack.mydomain.com/api",
			expected:    "https://gtrack.mydomain.com",
		},
		{
			apiEndpoint: "https://mysubdomain.mydomain.com/gtrack/api",
			expected:    "https://mysubdomain.mydomain.com",
		},
		{
			apiEndpoint: "http://localhost:3001",
			expected:    "http://localhost:3001",
		},
		{
			apiEndpoint: "some-string",
			expected:    "",
		},
		{
			apiEndpoint: "",
			expected:    "",
		},
		{
			apiEndpoint: "https://",
			expected:    "",
		},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("for input %s", tc.apiEndpoint), func(t *testing.T) {
			got := getServerDisplayURL(context.GtrackCtx{APIEndpoint: tc.apiEndpoint})
			assert.Equal(t, got, tc.expected, "result mismatch")
		})
	}
}

func newServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/get-progress", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer goodToken" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"unauthorized"}`))
			return
		}

		w.Write([]byte(`{}`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts
}

func TestDo(t *testing.T) {
	ts := newServer(t)
	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = ts.URL

	if err := Do(ctx, "goodToken"); err != nil {
		t.Fatal(errors.Wrap(err, "logging in"))
	}

	var token string
	if err := database.GetSystem(ctx.DB, consts.SystemSessionKey, &token); err != nil {
		t.Fatal(errors.Wrap(err, "reading session"))
	}
	assert.Equal(t, token, "goodToken", "session token mismatch")
}

func TestDo_invalidToken(t *testing.T) {
	ts := newServer(t)
	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = ts.URL

	err := Do(ctx, "badToken")
	assert.Equal(t, err, ErrInvalidToken, "error mismatch")

	var token string
	if err := database.GetSystem(ctx.DB, consts.SystemSessionKey, &token); err != nil {
		t.Fatal(errors.Wrap(err, "reading session"))
	}
	assert.Equal(t, token, "", "session should not be saved")
}
