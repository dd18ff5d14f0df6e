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
	"encoding/json"
	"strings"

	"github.com/gtrack/gtrack/pkg/cli/consts"
	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/pkg/errors"
)

// ErrEmptyKey is an error for an empty item key
var ErrEmptyKey = errors.New("empty key")

// Store is the local map of item keys to progress records
type Store struct {
	kv database.KV
}

// New returns a store backed by the given key-value store
func New(kv database.KV) *Store {
	return &Store{kv: kv}
}

func recordKey(key string) string {
	return consts.TrackingKeyPrefix + key
}

// Get returns the record for the key. A missing or unreadable record is
// returned as an empty record.
func (s *Store) Get(key string) Record {
	r, err := s.get(key)
	if err != nil {
		log.Debug("reading record %s: %s\n", key, err.Error())
		return Record{}
	}

	return r
}

func (s *Store) get(key string) (Record, error) {
	value, ok, err := s.kv.Get(recordKey(key))
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, nil
	}

	var r Record
	if err := json.Unmarshal([]byte(value), &r); err != nil {
		return Record{}, err
	}

	return r, nil
}

func (s *Store) put(key string, r Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return errors.Wrapf(err, "encoding record %s", key)
	}

	if err := s.kv.Set(recordKey(key), string(b)); err != nil {
		return errors.Wrapf(err, "saving record %s", key)
	}

	return nil
}

// Put replaces the record for the key
func (s *Store) Put(key string, r Record) error {
	if key == "" {
		return ErrEmptyKey
	}

	return s.put(key, r)
}

// Merge merges the patch onto the record for the key and persists the result
func (s *Store) Merge(key string, p Patch) error {
	if key == "" {
		return ErrEmptyKey
	}

	return s.put(key, p.Apply(s.Get(key)))
}

// Keys returns the keys of all stored records in ascending order
func (s *Store) Keys() ([]string, error) {
	keys, err := s.kv.Keys(consts.TrackingKeyPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "listing records")
	}

	ret := make([]string, 0, len(keys))
	for _, k := range keys {
		ret = append(ret, strings.TrimPrefix(k, consts.TrackingKeyPrefix))
	}

	return ret, nil
}

// GetAll returns all records that can be read. Unreadable records are skipped.
func (s *Store) GetAll() (map[string]Record, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}

	ret := map[string]Record{}
	for _, key := range keys {
		r, err := s.get(key)
		if err != nil {
			log.Debug("skipping record %s: %s\n", key, err.Error())
			continue
		}

		ret[key] = r
	}

	return ret, nil
}

// Delete removes the record for the key
func (s *Store) Delete(key string) error {
	if err := s.kv.Delete(recordKey(key)); err != nil {
		return errors.Wrapf(err, "deleting record %s", key)
	}

	return nil
}

// ClearAll removes every record. The aggregate progress is kept.
func (s *Store) ClearAll() error {
	return s.Batch(func(tx *Store) error {
		keys, err := tx.Keys()
		if err != nil {
			return err
		}

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		return nil
	})
}

// ClearOwnership resets the ownership of the item while keeping its star rank
func (s *Store) ClearOwnership(key string) error {
	return s.Merge(key, Patch{
		Owned:       Bool(false),
		GoldMaxed:   Bool(false),
		KeyObtained: Bool(false),
	})
}

// SetKeyObtained toggles the key item flag. Obtaining the key marks the item
// as owned. Losing it also clears ownership and the gold-maxed state.
func (s *Store) SetKeyObtained(key string, obtained bool) error {
	if obtained {
		return s.Merge(key, Patch{
			Owned:       Bool(true),
			KeyObtained: Bool(true),
		})
	}

	return s.ClearOwnership(key)
}

// SetGoldMaxed toggles the gold-maxed state. A gold-maxed item is set to maxStars.
func (s *Store) SetGoldMaxed(key string, maxed bool, maxStars int) error {
	if !maxed {
		return s.Merge(key, Patch{GoldMaxed: Bool(false)})
	}

	return s.Merge(key, Patch{
		GoldMaxed: Bool(true),
		Stars:     Int(ClampStars(maxStars)),
	})
}

// Batch runs fn against a store whose writes are applied atomically if fn
// returns nil and discarded otherwise
func (s *Store) Batch(fn func(tx *Store) error) error {
	return s.kv.Batch(func(kv database.KV) error {
		return fn(New(kv))
	})
}
