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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gtrack/gtrack/pkg/server/app"
	"github.com/gtrack/gtrack/pkg/server/config"
	"github.com/gtrack/gtrack/pkg/server/controllers"
	"github.com/gtrack/gtrack/pkg/server/database"
	"github.com/gtrack/gtrack/pkg/server/log"
	mw "github.com/gtrack/gtrack/pkg/server/middleware"
	"github.com/pkg/errors"
)

// shutdownTimeout bounds the time given to in-flight requests on shutdown
const shutdownTimeout = 10 * time.Second

// newHandler builds the router of the app. The returned function releases
// the resources of the handler.
func newHandler(a *app.App) (http.Handler, func(), error) {
	var limiter *mw.RateLimiter
	if a.RateLimit > 0 {
		limiter = mw.NewRateLimiter(a.RateLimit, a.RateLimitBurst)
	}
	release := func() {
		if limiter != nil {
			limiter.Stop()
		}
	}

	ctl := controllers.New(a)
	rc := controllers.RouteConfig{
		Routes:  controllers.NewRoutes(a, ctl),
		Limiter: limiter,
	}

	r, err := controllers.NewRouter(a, rc)
	if err != nil {
		release()
		return nil, nil, errors.Wrap(err, "initializing router")
	}

	return r, release, nil
}

func startCmd(args []string) {
	fs := setupFlagSet("start", "gtrack-server start")

	appEnv := fs.String("appEnv", "", "Application environment (env: APP_ENV, default: PRODUCTION)")
	port := fs.String("port", "", "Server port (env: PORT, default: 3001)")
	dbPath := fs.String("dbPath", "", dbPathUsage)
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")
	sessionTTL := fs.String("sessionTTL", "", "Lifetime of new sessions (env: SESSION_TTL, default: 8760h)")
	rateLimit := fs.String("rateLimit", "", "Requests per second accepted per IP, 0 to disable (env: RATE_LIMIT, default: 50)")
	envFile := fs.String("envFile", "", envFileUsage)

	fs.Parse(args)

	cfg, err := config.New(config.Params{
		AppEnv:     *appEnv,
		Port:       *port,
		DBPath:     *dbPath,
		LogLevel:   *logLevel,
		SessionTTL: *sessionTTL,
		RateLimit:  *rateLimit,
		EnvFile:    *envFile,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	a, err := initApp(cfg)
	if err != nil {
		log.ErrorWrap(err, "initializing app")
		os.Exit(1)
	}
	defer database.Close(a.DB)

	handler, release, err := newHandler(&a)
	if err != nil {
		log.ErrorWrap(err, "initializing handler")
		os.Exit(1)
	}
	defer release()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.ErrorWrap(err, "shutting down")
		}
	}()

	log.WithFields(log.Fields{
		"version": Version,
		"port":    cfg.Port,
		"env":     cfg.AppEnv,
	}).Info("gtrack server starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}

	log.Info("gtrack server stopped")
}
