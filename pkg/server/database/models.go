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

package database

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user
type User struct {
	Model
	UUID string `json:"uuid" gorm:"type:text;uniqueIndex"`
	Name string `json:"name" gorm:"type:text;uniqueIndex"`
}

// Session represents a user session. The key is the bearer token.
type Session struct {
	Model
	UserID     int    `gorm:"index"`
	Key        string `gorm:"uniqueIndex"`
	LastUsedAt time.Time
	ExpiresAt  time.Time
}

// Progress holds the latest saved progress of a user as a JSON document
type Progress struct {
	Model
	UserID int    `gorm:"uniqueIndex"`
	Data   string `gorm:"type:text"`
}
