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
	"crypto/rand"
	"encoding/base64"

	"github.com/gtrack/gtrack/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionKeyLength is the number of random bytes in a session key
const sessionKeyLength = 32

func genSessionKey() (string, error) {
	b := make([]byte, sessionKeyLength)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateSession returns a new session for the user of the given id
func (a *App) CreateSession(userID int) (database.Session, error) {
	key, err := genSessionKey()
	if err != nil {
		return database.Session{}, errors.Wrap(err, "generating key")
	}

	now := a.Clock.Now()
	session := database.Session{
		UserID:     userID,
		Key:        key,
		LastUsedAt: now,
		ExpiresAt:  now.Add(a.SessionTTL),
	}

	if err := a.DB.Create(&session).Error; err != nil {
		return database.Session{}, errors.Wrap(err, "saving session")
	}

	return session, nil
}

// Authenticate returns the user of the session with the given key. It returns
// false if the session does not exist or has expired.
func (a *App) Authenticate(sessionKey string) (database.User, bool, error) {
	var user database.User
	if sessionKey == "" {
		return user, false, nil
	}

	var session database.Session
	err := a.DB.Where("key = ?", sessionKey).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, false, nil
	} else if err != nil {
		return user, false, errors.Wrap(err, "finding session")
	}

	now := a.Clock.Now()
	if !session.ExpiresAt.After(now) {
		return user, false, nil
	}

	err = a.DB.Where("id = ?", session.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, false, nil
	} else if err != nil {
		return user, false, errors.Wrap(err, "finding user from session")
	}

	if err := a.DB.Model(&session).Update("last_used_at", now).Error; err != nil {
		return user, false, errors.Wrap(err, "touching session")
	}

	return user, true, nil
}

// DeleteUserSessions deletes all existing sessions for the given user. It effectively
// invalidates all existing sessions.
func (a *App) DeleteUserSessions(userID int) error {
	if err := a.DB.Where("user_id = ?", userID).Delete(&database.Session{}).Error; err != nil {
		return errors.Wrap(err, "deleting sessions")
	}

	return nil
}

// DeleteSession deletes the session that match the given info
func (a *App) DeleteSession(sessionKey string) error {
	if err := a.DB.Where("key = ?", sessionKey).Delete(&database.Session{}).Error; err != nil {
		return errors.Wrap(err, "deleting the session")
	}

	return nil
}
