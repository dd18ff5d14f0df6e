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

package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gtrack/gtrack/pkg/assert"
	"github.com/gtrack/gtrack/pkg/server/app"
	"github.com/gtrack/gtrack/pkg/server/database"
	"github.com/gtrack/gtrack/pkg/server/testutils"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

func readBody(t *testing.T, res *http.Response) string {
	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading body"))
	}

	return string(b)
}

func authReq(t *testing.T, server string, session database.Session, method, path, body string) *http.Request {
	req := testutils.MakeReq(server, method, path, body)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))

	return req
}

func TestSaveAndGetProgress(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(db)
	server := MustNewServer(t, &a)

	user := testutils.SetupUserData(t, db, "alice")
	session := testutils.SetupSession(t, db, user)

	// before any save
	res := testutils.HTTPDo(t, authReq(t, server.URL, session, "GET", "/users/get-progress", ""))
	assert.StatusCodeEquals(t, res, http.StatusOK, "")
	assert.Equal(t, res.Header.Get("Content-Type"), "application/json", "content type mismatch")
	assert.EqualJSON(t, readBody(t, res), `{}`, "empty progress mismatch")

	payload := `{
		"carStars": {"Porsche 911 GT3 RS": 5},
		"ownedCars": ["Porsche 911 GT3 RS", "Porsche 911 GT3 RS"],
		"goldMaxedCars": [],
		"keyCarsOwned": ["Porsche 911 GT3 RS"],
		"xp": 1200,
		"currentGarageLevel": 5,
		"blueprintsByCar": {"Porsche 911 GT3 RS": {"ownedByStar": {"1": 4}}}
	}`
	res = testutils.HTTPDo(t, authReq(t, server.URL, session, "POST", "/users/save-progress", payload))
	assert.StatusCodeEquals(t, res, http.StatusOK, "")
	assert.EqualJSON(t, readBody(t, res), `{"success":true}`, "save response mismatch")

	res = testutils.HTTPDo(t, authReq(t, server.URL, session, "GET", "/users/get-progress", ""))
	assert.StatusCodeEquals(t, res, http.StatusOK, "")
	assert.EqualJSON(t, readBody(t, res), `{
		"progress": {
			"carStars": {"Porsche 911 GT3 RS": 5},
			"ownedCars": ["Porsche 911 GT3 RS"],
			"goldMaxedCars": [],
			"keyCarsOwned": ["Porsche 911 GT3 RS"],
			"xp": 1200,
			"currentGarageLevel": 5,
			"blueprintsByCar": {"Porsche 911 GT3 RS": {"ownedByStar": {"1": 4}}}
		}
	}`, "progress mismatch")
}

func TestSaveProgress_gzip(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(db)
	server := MustNewServer(t, &a)

	user := testutils.SetupUserData(t, db, "alice")
	session := testutils.SetupSession(t, db, user)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(`{"xp": 42, "ownedCars": ["Bmw M3"]}`)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	req := authReq(t, server.URL, session, "POST", "/users/save-progress", buf.String())
	req.Header.Set("Content-Encoding", "gzip")
	res := testutils.HTTPDo(t, req)
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	p, err := a.GetProgress(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, p.XP, 42, "xp mismatch")
	assert.DeepEqual(t, p.OwnedCars, []string{"Bmw M3"}, "owned mismatch")
}

func TestSaveProgress_rejected(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(db)
	server := MustNewServer(t, &a)

	user := testutils.SetupUserData(t, db, "alice")
	session := testutils.SetupSession(t, db, user)

	testCases := []struct {
		name       string
		payload    string
		statusCode int
	}{
		{
			name:       "malformed json",
			payload:    `{"xp":`,
			statusCode: http.StatusBadRequest,
		},
		{
			name:       "negative xp",
			payload:    `{"xp": -1}`,
			statusCode: http.StatusBadRequest,
		},
		{
			name:       "stars out of range",
			payload:    `{"carStars": {"Bmw M3": 9}}`,
			statusCode: http.StatusBadRequest,
		},
		{
			name:       "blueprint rank out of range",
			payload:    `{"blueprintsByCar": {"Bmw M3": {"ownedByStar": {"7": 2}}}}`,
			statusCode: http.StatusBadRequest,
		},
		{
			name:       "negative blueprint count",
			payload:    `{"blueprintsByCar": {"Bmw M3": {"ownedByStar": {"2": -1}}}}`,
			statusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := testutils.HTTPDo(t, authReq(t, server.URL, session, "POST", "/users/save-progress", tc.payload))

			assert.StatusCodeEquals(t, res, tc.statusCode, "")
			assert.Equal(t, strings.Contains(readBody(t, res), `"message"`), true, "error body should carry a message")
		})
	}

	p, err := a.GetProgress(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, p == nil, true, "rejected payloads should not be stored")
}

func TestProgress_unauthorized(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(db)
	server := MustNewServer(t, &a)

	for _, path := range []string{"/users/get-progress", "/users/save-progress", "/signout"} {
		method := "POST"
		if path == "/users/get-progress" {
			method = "GET"
		}

		req := testutils.MakeReq(server.URL, method, path, `{}`)
		req.Header.Set("Authorization", "Bearer unknown")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusUnauthorized, path)
	}
}

func TestSignout(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(db)
	server := MustNewServer(t, &a)

	user := testutils.SetupUserData(t, db, "alice")
	session := testutils.SetupSession(t, db, user)
	other := testutils.SetupSession(t, db, user)

	res := testutils.HTTPDo(t, authReq(t, server.URL, session, "POST", "/signout", ""))
	assert.StatusCodeEquals(t, res, http.StatusOK, "")
	assert.EqualJSON(t, readBody(t, res), `{"success":true}`, "signout response mismatch")

	res = testutils.HTTPDo(t, authReq(t, server.URL, session, "GET", "/users/get-progress", ""))
	assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "signed out session should be rejected")

	res = testutils.HTTPDo(t, authReq(t, server.URL, other, "GET", "/users/get-progress", ""))
	assert.StatusCodeEquals(t, res, http.StatusOK, "other sessions should survive")
}

func TestProgressIsolatedPerUser(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(db)
	server := MustNewServer(t, &a)

	alice := testutils.SetupUserData(t, db, "alice")
	bob := testutils.SetupUserData(t, db, "bob")

	res := testutils.HTTPAuthDo(t, db, testutils.MakeReq(server.URL, "POST", "/users/save-progress", `{"xp": 7}`), alice)
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	res = testutils.HTTPAuthDo(t, db, testutils.MakeReq(server.URL, "GET", "/users/get-progress", ""), bob)
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var resp GetProgressResp
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, resp.Progress == nil, true, "bob should not see alice's progress")
}
