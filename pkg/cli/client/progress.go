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

package client

// Blueprints is the blueprint count per star rank of an item
type Blueprints struct {
	OwnedByStar map[int]int `json:"ownedByStar"`
}

// Progress is the account progress in the shape of the remote service. Items
// are identified by their human readable label.
type Progress struct {
	CarStars               map[string]int        `json:"carStars"`
	OwnedCars              []string              `json:"ownedCars"`
	GoldMaxedCars          []string              `json:"goldMaxedCars"`
	KeyCarsOwned           []string              `json:"keyCarsOwned"`
	XP                     int                   `json:"xp"`
	CurrentGarageLevel     *int                  `json:"currentGarageLevel,omitempty"`
	CurrentGLXp            *int                  `json:"currentGLXp,omitempty"`
	GarageLevelTrackerMode *string               `json:"garageLevelTrackerMode,omitempty"`
	BlueprintsByCar        map[string]Blueprints `json:"blueprintsByCar,omitempty"`
}

// GetProgressResp is the response from the get progress endpoint
type GetProgressResp struct {
	Progress *Progress `json:"progress"`
}

// SaveProgressResp is the response from the save progress endpoint
type SaveProgressResp struct {
	Success bool `json:"success"`
}
