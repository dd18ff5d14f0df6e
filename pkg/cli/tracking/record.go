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

// Package tracking implements the local store of per-item progress records
package tracking

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	// MinStars is the lowest star rank
	MinStars = 1
	// MaxStars is the highest star rank of any item
	MaxStars = 6
)

// ClampStars clamps n to [MinStars, MaxStars]
func ClampStars(n int) int {
	if n < MinStars {
		return MinStars
	}
	if n > MaxStars {
		return MaxStars
	}

	return n
}

// Blueprints holds the number of blueprints owned for each star rank
type Blueprints struct {
	OwnedByStar map[int]int `json:"ownedByStar"`
}

// IsEmpty returns true if no blueprint is owned
func (b *Blueprints) IsEmpty() bool {
	if b == nil {
		return true
	}

	for _, n := range b.OwnedByStar {
		if n > 0 {
			return false
		}
	}

	return true
}

// Copy returns a deep copy of the blueprints
func (b *Blueprints) Copy() *Blueprints {
	if b == nil {
		return nil
	}

	ret := &Blueprints{OwnedByStar: make(map[int]int, len(b.OwnedByStar))}
	for star, n := range b.OwnedByStar {
		ret.OwnedByStar[star] = n
	}

	return ret
}

// Record is the progress of a single catalog item
type Record struct {
	Owned     bool
	GoldMaxed bool
	// Stars is nil until a rank is set
	Stars *int
	// KeyObtained is only set for key items
	KeyObtained *bool
	Blueprints  *Blueprints

	// Extra holds fields of the stored record that gtrack does not know about
	Extra map[string]json.RawMessage
}

// StarCount returns the star rank, or 0 if it is not set
func (r Record) StarCount() int {
	if r.Stars == nil {
		return 0
	}

	return *r.Stars
}

// HasKey returns true if the key item was obtained
func (r Record) HasKey() bool {
	return r.KeyObtained != nil && *r.KeyObtained
}

// IsEmpty returns true if the record carries no progress
func (r Record) IsEmpty() bool {
	return !r.Owned && !r.GoldMaxed && r.StarCount() == 0 && !r.HasKey() && r.Blueprints.IsEmpty()
}

const (
	fieldOwned       = "owned"
	fieldGoldMaxed   = "goldMaxed"
	fieldStars       = "stars"
	fieldKeyObtained = "keyObtained"
	fieldBlueprints  = "blueprints"
)

// MarshalJSON encodes the record along with its untracked fields
func (r Record) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{}
	for k, v := range r.Extra {
		m[k] = v
	}

	m[fieldOwned] = r.Owned
	m[fieldGoldMaxed] = r.GoldMaxed
	if r.Stars != nil {
		m[fieldStars] = *r.Stars
	}
	if r.KeyObtained != nil {
		m[fieldKeyObtained] = *r.KeyObtained
	}
	if r.Blueprints != nil {
		m[fieldBlueprints] = r.Blueprints
	}

	return json.Marshal(m)
}

// UnmarshalJSON decodes the record. Fields it does not recognize are kept in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.Wrap(err, "decoding record")
	}
	if m == nil {
		return errors.New("record is null")
	}

	var ret Record
	if err := decodeField(m, fieldOwned, &ret.Owned); err != nil {
		return err
	}
	if err := decodeField(m, fieldGoldMaxed, &ret.GoldMaxed); err != nil {
		return err
	}
	if err := decodeField(m, fieldStars, &ret.Stars); err != nil {
		return err
	}
	if err := decodeField(m, fieldKeyObtained, &ret.KeyObtained); err != nil {
		return err
	}
	if err := decodeField(m, fieldBlueprints, &ret.Blueprints); err != nil {
		return err
	}

	if ret.Stars != nil {
		if *ret.Stars <= 0 {
			ret.Stars = nil
		} else {
			n := ClampStars(*ret.Stars)
			ret.Stars = &n
		}
	}

	if len(m) > 0 {
		ret.Extra = m
	}

	*r = ret
	return nil
}

// decodeField decodes and removes the named field from m, if present
func decodeField(m map[string]json.RawMessage, name string, dest interface{}) error {
	raw, ok := m[name]
	if !ok {
		return nil
	}
	delete(m, name)

	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(err, "decoding %s", name)
	}

	return nil
}

// Patch is a partial record. Nil fields are left unchanged by Merge.
type Patch struct {
	Owned     *bool
	GoldMaxed *bool
	// Stars set to zero or less clears the rank
	Stars       *int
	KeyObtained *bool
	// Blueprints replaces the blueprints as a whole. An empty map clears them.
	Blueprints *Blueprints
}

// Apply returns r with the patch merged onto it
func (p Patch) Apply(r Record) Record {
	if p.Owned != nil {
		r.Owned = *p.Owned
	}
	if p.GoldMaxed != nil {
		r.GoldMaxed = *p.GoldMaxed
	}
	if p.Stars != nil {
		if *p.Stars <= 0 {
			r.Stars = nil
		} else {
			n := ClampStars(*p.Stars)
			r.Stars = &n
		}
	}
	if p.KeyObtained != nil {
		v := *p.KeyObtained
		r.KeyObtained = &v
	}
	if p.Blueprints != nil {
		if len(p.Blueprints.OwnedByStar) == 0 {
			r.Blueprints = nil
		} else {
			r.Blueprints = p.Blueprints.Copy()
		}
	}

	return r
}

// Bool returns a pointer to b
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n
func Int(n int) *int {
	return &n
}
