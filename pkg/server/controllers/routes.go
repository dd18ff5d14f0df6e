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
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gtrack/gtrack/pkg/server/app"
	mw "github.com/gtrack/gtrack/pkg/server/middleware"
	"github.com/pkg/errors"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Routes []Route
	// Limiter rate limits the routes that opt in. A nil limiter disables
	// rate limiting.
	Limiter *mw.RateLimiter
}

// NewRoutes returns the routes of the server
func NewRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"POST", "/users/save-progress", mw.Auth(a, c.Users.SaveProgress), true},
		{"GET", "/users/get-progress", mw.Auth(a, c.Users.GetProgress), true},
		{"POST", "/signout", mw.Auth(a, c.Users.Signout), true},
		{"GET", "/health", c.Health.Index, false},
	}
}

func registerRoutes(router *mux.Router, limiter *mw.RateLimiter, routes []Route) {
	for _, route := range routes {
		var h http.Handler = route.Handler
		if route.RateLimit {
			h = mw.ApplyLimit(route.Handler, limiter)
		}

		router.
			Handle(route.Pattern, h).
			Methods(route.Method)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	mw.RespondError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	mw.RespondError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)
	registerRoutes(router, rc.Limiter, rc.Routes)

	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	return mw.Logging(mw.Decompress(router)), nil
}
