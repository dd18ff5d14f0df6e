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

package sync

import (
	"context"
	"sort"

	"github.com/gtrack/gtrack/pkg/cli/client"
	"github.com/gtrack/gtrack/pkg/cli/keycodec"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
	"github.com/pkg/errors"
)

// PushResult is the outcome of a push
type PushResult struct {
	// Pushed is true if the remote accepted the payload
	Pushed bool
	// Skipped is true if the payload was empty and nothing was sent
	Skipped bool
	Payload client.Progress
}

// uniqueSorted returns the distinct strings of s in ascending order
func uniqueSorted(s []string) []string {
	seen := map[string]bool{}
	ret := []string{}

	for _, v := range s {
		if seen[v] {
			continue
		}
		seen[v] = true
		ret = append(ret, v)
	}
	sort.Strings(ret)

	return ret
}

// validBlueprints returns a copy of the blueprints without the ranks outside
// [MinStars, MaxStars] and the negative counts, which the remote rejects
func validBlueprints(b *tracking.Blueprints) *tracking.Blueprints {
	if b == nil {
		return nil
	}

	ret := &tracking.Blueprints{OwnedByStar: map[int]int{}}
	for star, n := range b.OwnedByStar {
		if star < tracking.MinStars || star > tracking.MaxStars || n < 0 {
			continue
		}
		ret.OwnedByStar[star] = n
	}

	return ret
}

// BuildPayload derives the remote representation of the records and the aggregate
func BuildPayload(records map[string]tracking.Record, agg tracking.Aggregate, labels keycodec.Labels) client.Progress {
	agg = agg.Normalize()

	ret := client.Progress{
		CarStars:               map[string]int{},
		XP:                     agg.XP,
		CurrentGarageLevel:     tracking.Int(agg.CurrentLevel),
		CurrentGLXp:            tracking.Int(agg.LevelXP),
		GarageLevelTrackerMode: &agg.LevelMode,
		BlueprintsByCar:        map[string]client.Blueprints{},
	}

	var owned, gold, keys []string
	for key, r := range records {
		label, _ := labels.Label(key)

		if n := r.StarCount(); n > 0 {
			ret.CarStars[label] = tracking.ClampStars(n)
		}
		if r.Owned {
			owned = append(owned, label)
		}
		if r.GoldMaxed {
			gold = append(gold, label)
		}
		if r.HasKey() {
			keys = append(keys, label)
		}
		if bp := validBlueprints(r.Blueprints); !bp.IsEmpty() {
			ret.BlueprintsByCar[label] = client.Blueprints{OwnedByStar: bp.OwnedByStar}
		}
	}

	ret.OwnedCars = uniqueSorted(owned)
	ret.GoldMaxedCars = uniqueSorted(gold)
	ret.KeyCarsOwned = uniqueSorted(keys)

	return ret
}

// IsEmptyPayload returns true if the payload has no stars, no owned, gold or
// key entries and no xp. Such a payload is indistinguishable from a store that
// failed to load and must never replace the progress on the remote. Blueprints
// alone do not count as progress.
func IsEmptyPayload(p client.Progress) bool {
	return len(p.CarStars) == 0 &&
		len(p.OwnedCars) == 0 &&
		len(p.GoldMaxedCars) == 0 &&
		len(p.KeyCarsOwned) == 0 &&
		p.XP == 0
}

// Push sends the local store to the remote
func (e *Engine) Push(ctx context.Context, token string) (PushResult, error) {
	records, agg, err := snapshot(e.Store)
	if err != nil {
		return PushResult{}, err
	}

	payload := BuildPayload(records, agg, e.Labels)
	if IsEmptyPayload(payload) {
		log.Debug("skipping push of an empty payload\n")
		return PushResult{Skipped: true, Payload: payload}, nil
	}

	if err := e.save(ctx, token, payload); err != nil {
		return PushResult{Payload: payload}, errors.Wrap(err, "pushing progress")
	}

	log.Debug("pushed %d stars, %d owned, %d gold, %d keys\n",
		len(payload.CarStars), len(payload.OwnedCars), len(payload.GoldMaxedCars), len(payload.KeyCarsOwned))

	return PushResult{Pushed: true, Payload: payload}, nil
}
