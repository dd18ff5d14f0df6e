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
	"strings"

	"github.com/gtrack/gtrack/pkg/server/database"
	"github.com/gtrack/gtrack/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CreateUser creates a user with the given name
func (a *App) CreateUser(name string) (database.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return database.User{}, ErrNameRequired
	}

	var count int64
	if err := a.DB.Model(&database.User{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return database.User{}, errors.Wrap(err, "counting users with the name")
	}
	if count > 0 {
		return database.User{}, ErrDuplicateName
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.User{}, err
	}

	user := database.User{
		UUID: uuid,
		Name: name,
	}
	if err := a.DB.Create(&user).Error; err != nil {
		return database.User{}, errors.Wrap(err, "saving user")
	}

	return user, nil
}

// GetUserByName finds the user with the given name
func (a *App) GetUserByName(name string) (database.User, error) {
	var user database.User
	err := a.DB.Where("name = ?", strings.TrimSpace(name)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	} else if err != nil {
		return user, errors.Wrap(err, "finding user")
	}

	return user, nil
}
