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

// Package middleware provides the HTTP middlewares of the server
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gtrack/gtrack/pkg/server/log"
	"github.com/pkg/errors"
)

// ErrMalformedAuthorization is an error for an Authorization header that is
// not a bearer credential
var ErrMalformedAuthorization = errors.New("malformed Authorization header")

// errorBody is the JSON body of an error response
type errorBody struct {
	Message string `json:"message"`
}

// getSessionKeyFromAuth reads the bearer token of the Authorization header.
// It returns an empty string if the header is absent.
func getSessionKeyFromAuth(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", nil
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedAuthorization
	}

	return strings.TrimSpace(parts[1]), nil
}

// GetCredential extracts the session key from the request
func GetCredential(r *http.Request) (string, error) {
	key, err := getSessionKeyFromAuth(r)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from Authorization header")
	}

	return key, nil
}

// RespondJSON writes the JSON encoding of the given value with the status code
func RespondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

// RespondError writes an error response with the given message
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, errorBody{Message: message})
}

// RespondUnauthorized responds with unauthorized
func RespondUnauthorized(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", `Bearer realm="gtrack"`)
	RespondError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
}

// DoError logs the error and responds with the given status code. Internal
// details are not exposed for server errors.
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	var message string
	if err == nil {
		message = msg
	} else {
		message = errors.Wrap(err, msg).Error()
	}

	if statusCode >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"statusCode": statusCode,
		}).Error(message)

		message = http.StatusText(statusCode)
	}

	RespondError(w, statusCode, message)
}
