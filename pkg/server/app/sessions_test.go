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

package app

import (
	"testing"
	"time"

	"github.com/gtrack/gtrack/pkg/assert"
	"github.com/gtrack/gtrack/pkg/clock"
	"github.com/gtrack/gtrack/pkg/server/database"
	"github.com/gtrack/gtrack/pkg/server/testutils"
)

func TestCreateSessionAndAuthenticate(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(db)
	user := testutils.SetupUserData(t, db, "alice")

	session, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, session.ExpiresAt.Sub(a.Clock.Now()), a.SessionTTL, "expiry mismatch")
	assert.NotEqual(t, session.Key, "", "key should be set")

	other, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEqual(t, other.Key, session.Key, "keys should be unique")

	got, ok, err := a.Authenticate(session.Key)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ok, true, "should authenticate")
	assert.Equal(t, got.ID, user.ID, "user mismatch")
}

func TestAuthenticate_rejected(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(db)
	user := testutils.SetupUserData(t, db, "alice")

	session, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "unknown", key: "not-a-session"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok, err := a.Authenticate(tc.key)
			assert.Equal(t, err, nil, "error mismatch")
			assert.Equal(t, ok, false, "should not authenticate")
		})
	}

	t.Run("expired", func(t *testing.T) {
		a.Clock.(*clock.Mock).Advance(a.SessionTTL + time.Second)

		_, ok, err := a.Authenticate(session.Key)
		assert.Equal(t, err, nil, "error mismatch")
		assert.Equal(t, ok, false, "expired session should not authenticate")
	})
}

func TestDeleteSession(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(db)
	user := testutils.SetupUserData(t, db, "alice")

	s1, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.DeleteSession(s1.Key); err != nil {
		t.Fatal(err)
	}

	_, ok, _ := a.Authenticate(s1.Key)
	assert.Equal(t, ok, false, "deleted session should not authenticate")
	_, ok, _ = a.Authenticate(s2.Key)
	assert.Equal(t, ok, true, "other session should survive")

	if err := a.DeleteUserSessions(user.ID); err != nil {
		t.Fatal(err)
	}

	var count int64
	testutils.MustExec(t, db.Model(&database.Session{}).Count(&count), "counting sessions")
	assert.Equal(t, count, int64(0), "session count mismatch")
}
