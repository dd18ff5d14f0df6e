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

// Package validate provides validation for user inputs
package validate

import (
	"regexp"
	"strings"

	"github.com/gtrack/gtrack/pkg/cli/keycodec"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
	"github.com/pkg/errors"
)

var (
	// ErrItemNameEmpty is an error for an empty brand or model
	ErrItemNameEmpty = errors.New("brand and model are required")
	// ErrItemNameInvalid is an error for a brand and model that normalize to an empty key
	ErrItemNameInvalid = errors.New("brand and model must contain at least one letter or digit")
	// ErrStarsRange is an error for a star count out of range
	ErrStarsRange = errors.Errorf("stars must be between 0 and %d", tracking.MaxStars)
	// ErrLevelRange is an error for a garage level below 1
	ErrLevelRange = errors.New("level must be at least 1")
	// ErrXPNegative is an error for a negative xp
	ErrXPNegative = errors.New("xp cannot be negative")
	// ErrLevelModeInvalid is an error for a malformed level mode tag
	ErrLevelModeInvalid = errors.New("level mode must consist of lowercase letters, digits, '-' or '_'")
)

var levelModeRegex = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// ItemName validates the brand and the model of an item
func ItemName(brand, model string) error {
	if strings.TrimSpace(brand) == "" || strings.TrimSpace(model) == "" {
		return ErrItemNameEmpty
	}
	if keycodec.FromParts(brand, model) == "" {
		return ErrItemNameInvalid
	}

	return nil
}

// Stars validates a star count. Zero clears the stars of a record.
func Stars(n int) error {
	if n < 0 || n > tracking.MaxStars {
		return ErrStarsRange
	}

	return nil
}

// Level validates a garage level
func Level(n int) error {
	if n < 1 {
		return ErrLevelRange
	}

	return nil
}

// XP validates an experience value
func XP(n int) error {
	if n < 0 {
		return ErrXPNegative
	}

	return nil
}

// LevelMode validates a level mode tag
func LevelMode(mode string) error {
	if !levelModeRegex.MatchString(mode) {
		return ErrLevelModeInvalid
	}

	return nil
}
