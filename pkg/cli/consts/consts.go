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

// Package consts provides definitions of constants
package consts

var (
	// GtrackDirName is the name of the directory containing gtrack files
	GtrackDirName = "gtrack"
	// GtrackDBFileName is a filename for the gtrack SQLite database
	GtrackDBFileName = "gtrack.db"
	// ConfigFilename is the name of the config file
	ConfigFilename = "gtrackrc"
	// CatalogFilename is the name of the default catalog file
	CatalogFilename = "catalog.yaml"

	// TrackingKeyPrefix namespaces the per-item tracking records in the key-value store
	TrackingKeyPrefix = "tracking:"
	// ProgressXPKey is the key of the aggregate xp
	ProgressXPKey = "progress:xp"
	// ProgressLevelKey is the key of the current garage level
	ProgressLevelKey = "progress:level"
	// ProgressLevelXPKey is the key of the xp within the current garage level
	ProgressLevelXPKey = "progress:level_xp"
	// ProgressLevelModeKey is the key of the level tracker mode
	ProgressLevelModeKey = "progress:level_mode"

	// SystemSessionKey is the session key
	SystemSessionKey = "session_token"
	// SystemDeviceID is the identifier of this installation sent along with requests
	SystemDeviceID = "device_id"
	// SystemLastPullAt is the unix timestamp of the last successful pull
	SystemLastPullAt = "last_pull_at"
	// SystemLastPushAt is the unix timestamp of the last successful push
	SystemLastPushAt = "last_push_at"
)
