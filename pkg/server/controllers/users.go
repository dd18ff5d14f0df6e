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
	"encoding/json"
	"net/http"

	"github.com/gtrack/gtrack/pkg/server/app"
	"github.com/gtrack/gtrack/pkg/server/context"
	"github.com/gtrack/gtrack/pkg/server/log"
	mw "github.com/gtrack/gtrack/pkg/server/middleware"
	"github.com/pkg/errors"
)

// NewUsers creates a new Users controller.
func NewUsers(app *app.App) *Users {
	return &Users{app: app}
}

// Users is a user controller.
type Users struct {
	app *app.App
}

// SaveProgressResp is the response of the save progress endpoint
type SaveProgressResp struct {
	Success bool `json:"success"`
}

// GetProgressResp is the response of the get progress endpoint. Progress is
// omitted if the user has never saved one.
type GetProgressResp struct {
	Progress *app.Progress `json:"progress,omitempty"`
}

// SignoutResp is the response of the signout endpoint
type SignoutResp struct {
	Success bool `json:"success"`
}

func parseProgress(r *http.Request) (app.Progress, int, error) {
	var p app.Progress
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return p, http.StatusRequestEntityTooLarge, errors.Wrap(err, "reading payload")
		}

		return p, http.StatusBadRequest, errors.Wrap(err, "decoding payload")
	}

	return p, 0, nil
}

// SaveProgress handles POST /users/save-progress. The payload replaces the
// stored progress of the user.
func (u *Users) SaveProgress(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	p, status, err := parseProgress(r)
	if err != nil {
		mw.DoError(w, "parsing progress", err, status)
		return
	}

	if err := u.app.SaveProgress(user.ID, p); err != nil {
		if errors.Is(err, app.ErrInvalidProgress) {
			mw.DoError(w, "saving progress", err, http.StatusBadRequest)
			return
		}

		mw.DoError(w, "saving progress", err, http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{
		"user":     user.UUID,
		"clientID": r.Header.Get("Client-ID"),
	}).Debug("progress saved")

	mw.RespondJSON(w, http.StatusOK, SaveProgressResp{Success: true})
}

// GetProgress handles GET /users/get-progress
func (u *Users) GetProgress(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	p, err := u.app.GetProgress(user.ID)
	if err != nil {
		mw.DoError(w, "getting progress", err, http.StatusInternalServerError)
		return
	}

	mw.RespondJSON(w, http.StatusOK, GetProgressResp{Progress: p})
}

// Signout handles POST /signout. It invalidates the session of the request.
func (u *Users) Signout(w http.ResponseWriter, r *http.Request) {
	key := context.SessionKey(r.Context())
	if key == "" {
		mw.RespondUnauthorized(w)
		return
	}

	if err := u.app.DeleteSession(key); err != nil {
		mw.DoError(w, "deleting session", err, http.StatusInternalServerError)
		return
	}

	mw.RespondJSON(w, http.StatusOK, SignoutResp{Success: true})
}
