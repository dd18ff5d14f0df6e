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

package tracking

import (
	"strconv"

	"github.com/gtrack/gtrack/pkg/cli/consts"
	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/pkg/errors"
)

// DefaultLevelMode is the level tracker mode of a fresh account
const DefaultLevelMode = "default"

// Aggregate is the account-wide progress
type Aggregate struct {
	XP           int
	CurrentLevel int
	LevelXP      int
	LevelMode    string
}

// DefaultAggregate returns the progress of a fresh account
func DefaultAggregate() Aggregate {
	return Aggregate{
		XP:           0,
		CurrentLevel: 1,
		LevelXP:      0,
		LevelMode:    DefaultLevelMode,
	}
}

// Normalize returns the aggregate with out of range values replaced by their defaults
func (a Aggregate) Normalize() Aggregate {
	if a.XP < 0 {
		a.XP = 0
	}
	if a.CurrentLevel < 1 {
		a.CurrentLevel = 1
	}
	if a.LevelXP < 0 {
		a.LevelXP = 0
	}
	if a.LevelMode == "" {
		a.LevelMode = DefaultLevelMode
	}

	return a
}

// IsDefault returns true if the aggregate is the one of a fresh account.
// An empty level mode counts as the default mode.
func (a Aggregate) IsDefault() bool {
	return a.Normalize() == DefaultAggregate()
}

// Aggregate reads the aggregate progress. Missing or unreadable values are
// returned as their defaults.
func (s *Store) Aggregate() (Aggregate, error) {
	ret := DefaultAggregate()

	if err := s.readInt(consts.ProgressXPKey, &ret.XP); err != nil {
		return ret, err
	}
	if err := s.readInt(consts.ProgressLevelKey, &ret.CurrentLevel); err != nil {
		return ret, err
	}
	if err := s.readInt(consts.ProgressLevelXPKey, &ret.LevelXP); err != nil {
		return ret, err
	}

	mode, ok, err := s.kv.Get(consts.ProgressLevelModeKey)
	if err != nil {
		return ret, errors.Wrap(err, "reading level mode")
	}
	if ok {
		ret.LevelMode = mode
	}

	return ret.Normalize(), nil
}

func (s *Store) readInt(key string, dest *int) error {
	value, ok, err := s.kv.Get(key)
	if err != nil {
		return errors.Wrapf(err, "reading %s", key)
	}
	if !ok {
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}

	*dest = n
	return nil
}

// SetAggregate replaces the aggregate progress
func (s *Store) SetAggregate(a Aggregate) error {
	a = a.Normalize()

	return s.kv.Batch(func(kv database.KV) error {
		values := []struct {
			key   string
			value string
		}{
			{consts.ProgressXPKey, strconv.Itoa(a.XP)},
			{consts.ProgressLevelKey, strconv.Itoa(a.CurrentLevel)},
			{consts.ProgressLevelXPKey, strconv.Itoa(a.LevelXP)},
			{consts.ProgressLevelModeKey, a.LevelMode},
		}

		for _, v := range values {
			if err := kv.Set(v.key, v.value); err != nil {
				return errors.Wrapf(err, "saving %s", v.key)
			}
		}

		return nil
	})
}
