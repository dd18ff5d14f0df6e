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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gtrack/gtrack/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Blueprints is the blueprint count per star rank of an item
type Blueprints struct {
	OwnedByStar map[int]int `json:"ownedByStar" validate:"omitempty,dive,keys,min=1,max=6,endkeys,min=0"`
}

// Progress is the progress document of a user. Items are identified by their
// display label.
type Progress struct {
	CarStars               map[string]int        `json:"carStars" validate:"omitempty,dive,keys,required,endkeys,min=0,max=6"`
	OwnedCars              []string              `json:"ownedCars" validate:"omitempty,dive,required"`
	GoldMaxedCars          []string              `json:"goldMaxedCars" validate:"omitempty,dive,required"`
	KeyCarsOwned           []string              `json:"keyCarsOwned" validate:"omitempty,dive,required"`
	XP                     int                   `json:"xp" validate:"min=0"`
	CurrentGarageLevel     *int                  `json:"currentGarageLevel,omitempty" validate:"omitempty,min=1"`
	CurrentGLXp            *int                  `json:"currentGLXp,omitempty" validate:"omitempty,min=0"`
	GarageLevelTrackerMode *string               `json:"garageLevelTrackerMode,omitempty" validate:"omitempty,max=32"`
	BlueprintsByCar        map[string]Blueprints `json:"blueprintsByCar,omitempty" validate:"omitempty,dive,keys,required,endkeys"`
}

var validate = validator.New()

// dedupe returns the labels without blanks and repeated entries, keeping the
// first occurrence
func dedupe(labels []string) []string {
	if labels == nil {
		return nil
	}

	seen := map[string]bool{}
	ret := []string{}
	for _, l := range labels {
		if strings.TrimSpace(l) == "" || seen[l] {
			continue
		}
		seen[l] = true
		ret = append(ret, l)
	}

	return ret
}

// normalize removes duplicate labels from the lists of the progress
func (p Progress) normalize() Progress {
	p.OwnedCars = dedupe(p.OwnedCars)
	p.GoldMaxedCars = dedupe(p.GoldMaxedCars)
	p.KeyCarsOwned = dedupe(p.KeyCarsOwned)

	return p
}

func invalidProgress(err error, prefix string) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return errors.Wrapf(ErrInvalidProgress, "%s%s failed on '%s'", prefix, fe.Namespace(), fe.Tag())
	}

	return errors.Wrap(err, "validating progress")
}

// ValidateProgress checks the given progress against the field constraints.
// The validator does not descend into the struct values of a map, so the
// blueprints of every item are checked one by one.
func ValidateProgress(p Progress) error {
	if err := validate.Struct(p); err != nil {
		return invalidProgress(err, "")
	}

	for label, bp := range p.BlueprintsByCar {
		if err := validate.Struct(bp); err != nil {
			return invalidProgress(err, fmt.Sprintf("blueprintsByCar[%s].", label))
		}
	}

	return nil
}

// SaveProgress validates and stores the given progress as the latest
// progress of the user, replacing any previous one
func (a *App) SaveProgress(userID int, p Progress) error {
	if err := ValidateProgress(p); err != nil {
		return err
	}

	b, err := json.Marshal(p.normalize())
	if err != nil {
		return errors.Wrap(err, "marshaling progress")
	}

	return a.DB.Transaction(func(tx *gorm.DB) error {
		var rec database.Progress
		err := tx.Where("user_id = ?", userID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = database.Progress{UserID: userID}
		} else if err != nil {
			return errors.Wrap(err, "finding progress")
		}

		rec.Data = string(b)
		if err := tx.Save(&rec).Error; err != nil {
			return errors.Wrap(err, "saving progress")
		}

		return nil
	})
}

// GetProgress returns the latest progress of the user. It returns nil if the
// user has never saved one.
func (a *App) GetProgress(userID int) (*Progress, error) {
	var rec database.Progress
	err := a.DB.Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "finding progress")
	}

	var p Progress
	if err := json.Unmarshal([]byte(rec.Data), &p); err != nil {
		return nil, errors.Wrap(err, "unmarshaling progress")
	}

	return &p, nil
}
