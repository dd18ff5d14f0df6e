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

// Package infra provides operations and definitions for the
// local infrastructure for gtrack
package infra

import (
	"os"
	"strconv"

	"github.com/gtrack/gtrack/pkg/cli/client"
	"github.com/gtrack/gtrack/pkg/cli/config"
	"github.com/gtrack/gtrack/pkg/cli/consts"
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/utils"
	"github.com/gtrack/gtrack/pkg/clock"
	"github.com/gtrack/gtrack/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:3001"
)

// RunEFunc is a function type of gtrack commands
type RunEFunc func(*cobra.Command, []string) error

// newBaseCtx creates a minimal context with paths and database connection.
// This base context is used for file and database initialization before
// being enriched with config values by setupCtx.
func newBaseCtx(paths dirs.Paths, versionTag, customDBPath string) (context.GtrackCtx, error) {
	if err := context.InitGtrackDirs(paths); err != nil {
		return context.GtrackCtx{}, errors.Wrap(err, "creating the gtrack dirs")
	}

	dbPath := customDBPath
	if dbPath == "" {
		dbPath = context.DBPath(paths)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return context.GtrackCtx{}, errors.Wrap(err, "connecting to db")
	}

	ctx := context.GtrackCtx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
		DBPath:  dbPath,
	}

	return ctx, nil
}

// Init initializes the gtrack environment and returns a new gtrack context.
// apiEndpoint is used when creating a new config file and, if not empty,
// overrides the configured endpoint for this run.
func Init(versionTag, apiEndpoint, dbPath string) (*context.GtrackCtx, error) {
	paths, err := dirs.Resolve()
	if err != nil {
		return nil, errors.Wrap(err, "resolving directories")
	}

	return InitWithPaths(paths, versionTag, apiEndpoint, dbPath)
}

// InitWithPaths is like Init but uses the given base directories
func InitWithPaths(paths dirs.Paths, versionTag, apiEndpoint, dbPath string) (*context.GtrackCtx, error) {
	ctx, err := newBaseCtx(paths, versionTag, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "initializing a context")
	}

	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		ctx.DB.Close()
		return nil, errors.Wrap(err, "generating the config file")
	}

	if _, err := database.Migrate(ctx.DB); err != nil {
		ctx.DB.Close()
		return nil, errors.Wrap(err, "running migration")
	}
	if err := InitSystem(ctx); err != nil {
		ctx.DB.Close()
		return nil, errors.Wrap(err, "initializing system data")
	}

	ctx, err = setupCtx(ctx, apiEndpoint)
	if err != nil {
		ctx.DB.Close()
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

// setupCtx enriches the base context with values from config file and database.
// This is called after files and database have been initialized.
func setupCtx(ctx context.GtrackCtx, apiEndpoint string) (context.GtrackCtx, error) {
	db := ctx.DB

	var sessionToken, deviceID string
	if err := database.GetSystem(db, consts.SystemSessionKey, &sessionToken); err != nil {
		return ctx, errors.Wrap(err, "finding session token")
	}
	if err := database.GetSystem(db, consts.SystemDeviceID, &deviceID); err != nil {
		return ctx, errors.Wrap(err, "finding device id")
	}

	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}
	durations, err := cf.ParseDurations()
	if err != nil {
		return ctx, errors.Wrap(err, "parsing config")
	}

	endpoint := cf.APIEndpoint
	if apiEndpoint != "" {
		endpoint = apiEndpoint
	}

	catalogPath := cf.CatalogPath
	if catalogPath == "" {
		catalogPath = context.DefaultCatalogPath(ctx.Paths)
	}

	pullSchedule := cf.PullSchedule
	if pullSchedule == "" {
		pullSchedule = config.DefaultPullSchedule
	}

	ret := context.GtrackCtx{
		Paths:        ctx.Paths,
		Version:      ctx.Version,
		DB:           ctx.DB,
		DBPath:       ctx.DBPath,
		SessionToken: sessionToken,
		DeviceID:     deviceID,
		APIEndpoint:  endpoint,
		CatalogPath:  catalogPath,
		PushDebounce: durations.PushDebounce,
		PushTimeout:  durations.PushTimeout,
		PullTimeout:  durations.PullTimeout,
		PullSchedule: pullSchedule,
		Clock:        clock.New(),
		HTTPClient:   client.NewRateLimitedHTTPClient(),
	}

	return ret, nil
}

func initSystemKV(db *database.DB, key string, val string) error {
	var count int
	if err := db.QueryRow("SELECT count(*) FROM system WHERE key = ?", key).Scan(&count); err != nil {
		return errors.Wrapf(err, "counting %s", key)
	}

	if count > 0 {
		return nil
	}

	if _, err := db.Exec("INSERT INTO system (key, value) VALUES (?, ?)", key, val); err != nil {
		return errors.Wrapf(err, "inserting %s %s", key, val)
	}

	return nil
}

// InitSystem inserts system data if missing
func InitSystem(ctx context.GtrackCtx) error {
	log.Debug("initializing the system\n")

	deviceID, err := utils.GenerateUUID()
	if err != nil {
		return errors.Wrap(err, "generating device id")
	}

	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	values := []struct {
		key string
		val string
	}{
		{consts.SystemDeviceID, deviceID},
		{consts.SystemLastPullAt, strconv.Itoa(0)},
		{consts.SystemLastPushAt, strconv.Itoa(0)},
	}
	for _, v := range values {
		if err := initSystemKV(tx, v.key, v.val); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "initializing system config for %s", v.key)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.GtrackCtx, apiEndpoint string) error {
	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	endpoint := apiEndpoint
	if endpoint == "" {
		endpoint = os.Getenv("GTRACK_API_ENDPOINT")
	}
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}

	if err := config.Write(ctx, config.Default(endpoint)); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}
