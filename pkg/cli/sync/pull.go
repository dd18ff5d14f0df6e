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
	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/gtrack/gtrack/pkg/cli/keycodec"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
	"github.com/pkg/errors"
)

// PullResult is the outcome of a pull
type PullResult struct {
	// NoProgress is true if the remote has no progress for the account
	NoProgress bool
	// Discarded is true if the fetched progress was not applied
	Discarded bool
	Applied   int
	Pruned     int
	// Discrepancies lists the remote labels that do not match the catalog
	Discrepancies []Discrepancy
}

// Discrepancy is a remote label whose key is unknown to the catalog, or whose
// catalog label differs
type Discrepancy struct {
	Key         string
	RemoteLabel string
	// CatalogLabel is empty if the catalog does not know the key
	CatalogLabel string
}

// remoteItem is the state of a single item according to the remote
type remoteItem struct {
	label       string
	stars       int
	owned       bool
	goldMaxed   bool
	keyObtained bool
	blueprints  *tracking.Blueprints
}

// collectRemoteItems indexes the progress by normalized key. Labels that
// normalize to the same key are combined.
func collectRemoteItems(p client.Progress) map[string]*remoteItem {
	ret := map[string]*remoteItem{}

	get := func(label string) *remoteItem {
		key := keycodec.Normalize(label)
		if key == "" {
			log.Debug("ignoring remote label '%s' without a key\n", label)
			return nil
		}

		item, ok := ret[key]
		if !ok {
			item = &remoteItem{label: label}
			ret[key] = item
		}

		return item
	}

	for label, stars := range p.CarStars {
		if item := get(label); item != nil && stars > item.stars {
			item.stars = stars
		}
	}
	for _, label := range p.OwnedCars {
		if item := get(label); item != nil {
			item.owned = true
		}
	}
	for _, label := range p.GoldMaxedCars {
		if item := get(label); item != nil {
			item.goldMaxed = true
		}
	}
	for _, label := range p.KeyCarsOwned {
		if item := get(label); item != nil {
			item.keyObtained = true
		}
	}
	for label, bp := range p.BlueprintsByCar {
		if item := get(label); item != nil {
			b := tracking.Blueprints{OwnedByStar: map[int]int{}}
			for star, n := range bp.OwnedByStar {
				b.OwnedByStar[star] = n
			}
			item.blueprints = &b
		}
	}

	return ret
}

// aggregateFromProgress returns the aggregate of the progress. Missing fields
// take their defaults.
func aggregateFromProgress(p client.Progress) tracking.Aggregate {
	ret := tracking.DefaultAggregate()
	ret.XP = p.XP

	if p.CurrentGarageLevel != nil {
		ret.CurrentLevel = *p.CurrentGarageLevel
	}
	if p.CurrentGLXp != nil {
		ret.LevelXP = *p.CurrentGLXp
	}
	if p.GarageLevelTrackerMode != nil {
		ret.LevelMode = *p.GarageLevelTrackerMode
	}

	return ret.Normalize()
}

func (i *remoteItem) patch() tracking.Patch {
	ret := tracking.Patch{
		Owned:       tracking.Bool(i.owned),
		GoldMaxed:   tracking.Bool(i.goldMaxed),
		KeyObtained: tracking.Bool(i.keyObtained),
		Stars:       tracking.Int(i.stars),
	}
	if i.blueprints != nil {
		ret.Blueprints = i.blueprints
	}

	return ret
}

func (e *Engine) discrepancies(items map[string]*remoteItem) []Discrepancy {
	if len(e.Labels) == 0 {
		return nil
	}

	var ret []Discrepancy
	for key, item := range items {
		label, ok := e.Labels[key]
		if ok && label == item.label {
			continue
		}

		ret = append(ret, Discrepancy{
			Key:          key,
			RemoteLabel:  item.label,
			CatalogLabel: label,
		})
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Key < ret[j].Key
	})

	return ret
}

// Reconcile makes the store become the given progress. Records unknown to the
// progress are removed and the tracked fields of the others are overwritten.
// Either every change is applied or none is.
func Reconcile(s *tracking.Store, p client.Progress) (PullResult, error) {
	var ret PullResult
	items := collectRemoteItems(p)

	err := s.Batch(func(tx *tracking.Store) error {
		keys, err := tx.Keys()
		if err != nil {
			return err
		}

		for _, key := range keys {
			if _, ok := items[key]; ok {
				continue
			}

			if err := tx.Delete(key); err != nil {
				return errors.Wrap(err, "pruning record")
			}
			ret.Pruned++
		}

		for key, item := range items {
			if err := tx.Merge(key, item.patch()); err != nil {
				return errors.Wrap(err, "applying remote record")
			}
			ret.Applied++
		}

		if err := tx.SetAggregate(aggregateFromProgress(p)); err != nil {
			return errors.Wrap(err, "applying remote aggregate")
		}

		return nil
	})
	if err != nil {
		return PullResult{}, err
	}

	return ret, nil
}

// Pull replaces the local store with the progress on the remote. The store is
// left untouched if the pull fails.
func (e *Engine) Pull(ctx context.Context, token string) (PullResult, error) {
	return e.PullUnless(ctx, token, nil)
}

// PullUnless is Pull, except that the fetched progress is discarded if
// discard returns true once the progress has been received
func (e *Engine) PullUnless(ctx context.Context, token string, discard func() bool) (PullResult, error) {
	p, err := e.fetch(ctx, token)
	if err != nil {
		return PullResult{}, errors.Wrap(err, "pulling progress")
	}

	if p == nil {
		log.Debug("remote has no progress\n")
		return PullResult{NoProgress: true}, nil
	}

	if discard != nil && discard() {
		log.Debug("discarding the pulled progress\n")
		return PullResult{Discarded: true}, nil
	}

	return e.apply(*p)
}

func (e *Engine) apply(p client.Progress) (PullResult, error) {
	ret, err := Reconcile(e.Store, p)
	if err != nil {
		return ret, errors.Wrap(err, "reconciling progress")
	}

	ret.Discrepancies = e.discrepancies(collectRemoteItems(p))
	for _, d := range ret.Discrepancies {
		log.Debug("label discrepancy for %s: remote '%s' catalog '%s'\n", d.Key, d.RemoteLabel, d.CatalogLabel)
	}

	log.Debug("pull applied %d records and pruned %d\n", ret.Applied, ret.Pruned)

	return ret, nil
}

// Preview computes the records and the aggregate the store would hold after a
// pull, without changing the store
func (e *Engine) Preview(ctx context.Context, token string) (map[string]tracking.Record, tracking.Aggregate, error) {
	p, err := e.fetch(ctx, token)
	if err != nil {
		return nil, tracking.Aggregate{}, errors.Wrap(err, "pulling progress")
	}

	records, agg, err := snapshot(e.Store)
	if err != nil {
		return nil, tracking.Aggregate{}, err
	}
	if p == nil {
		return records, agg, nil
	}

	draft := tracking.New(database.NewMemoryKV())
	for key, r := range records {
		if err := draft.Put(key, r); err != nil {
			return nil, tracking.Aggregate{}, errors.Wrap(err, "copying record")
		}
	}
	if err := draft.SetAggregate(agg); err != nil {
		return nil, tracking.Aggregate{}, errors.Wrap(err, "copying aggregate")
	}

	if _, err := Reconcile(draft, *p); err != nil {
		return nil, tracking.Aggregate{}, errors.Wrap(err, "reconciling progress")
	}

	return snapshot(draft)
}
