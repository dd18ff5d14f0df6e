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
	"encoding/json"
	gosync "sync"
	"testing"

	"github.com/gtrack/gtrack/pkg/assert"
	"github.com/gtrack/gtrack/pkg/cli/client"
	"github.com/gtrack/gtrack/pkg/cli/database"
	"github.com/gtrack/gtrack/pkg/cli/keycodec"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
	"github.com/pkg/errors"
)

// fakeRemote is an in-memory account service
type fakeRemote struct {
	mu       gosync.Mutex
	progress *client.Progress
	saved    []client.Progress
	gets     int
	getErr   error
	saveErr  error
}

func (r *fakeRemote) SaveProgress(ctx context.Context, token string, p client.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}

	r.saved = append(r.saved, p)
	saved := p
	r.progress = &saved

	return nil
}

func (r *fakeRemote) GetProgress(ctx context.Context, token string) (client.GetProgressResp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gets++
	if r.getErr != nil {
		return client.GetProgressResp{}, r.getErr
	}

	return client.GetProgressResp{Progress: r.progress}, nil
}

func (r *fakeRemote) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.saved)
}

func newTestEngine(t *testing.T, remote Remote, labels keycodec.Labels) *Engine {
	store := tracking.New(database.InitTestMemoryDB(t))

	return NewEngine(store, remote, labels)
}

func mustMerge(t *testing.T, s *tracking.Store, key string, p tracking.Patch) {
	if err := s.Merge(key, p); err != nil {
		t.Fatal(errors.Wrapf(err, "merging %s", key))
	}
}

func mustPut(t *testing.T, s *tracking.Store, key, raw string) {
	var r tracking.Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatal(errors.Wrap(err, "decoding record"))
	}
	if err := s.Put(key, r); err != nil {
		t.Fatal(errors.Wrapf(err, "putting %s", key))
	}
}

func mustSetAggregate(t *testing.T, s *tracking.Store, a tracking.Aggregate) {
	if err := s.SetAggregate(a); err != nil {
		t.Fatal(errors.Wrap(err, "setting aggregate"))
	}
}

func mustGetAll(t *testing.T, s *tracking.Store) map[string]tracking.Record {
	ret, err := s.GetAll()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting all records"))
	}

	return ret
}

func mustAggregate(t *testing.T, s *tracking.Store) tracking.Aggregate {
	ret, err := s.Aggregate()
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading aggregate"))
	}

	return ret
}

// fields is the tracked state of a record, with absent values and their zero
// values considered equal
type fields struct {
	Owned       bool
	GoldMaxed   bool
	Stars       int
	KeyObtained bool
	Blueprints  map[int]int
}

func fieldsOf(records map[string]tracking.Record) map[string]fields {
	ret := map[string]fields{}
	for key, r := range records {
		if r.IsEmpty() {
			continue
		}

		f := fields{
			Owned:       r.Owned,
			GoldMaxed:   r.GoldMaxed,
			Stars:       r.StarCount(),
			KeyObtained: r.HasKey(),
		}
		if !r.Blueprints.IsEmpty() {
			f.Blueprints = r.Blueprints.OwnedByStar
		}

		ret[key] = f
	}

	return ret
}

func TestBuildPayload(t *testing.T) {
	records := map[string]tracking.Record{
		"acura_nsx": {Stars: tracking.Int(3), Owned: true},
		"bmw_m3": {
			Owned:       true,
			GoldMaxed:   true,
			Stars:       tracking.Int(6),
			KeyObtained: tracking.Bool(true),
			Blueprints:  &tracking.Blueprints{OwnedByStar: map[int]int{1: 4, 2: 1}},
		},
		"citroen_ds": {KeyObtained: tracking.Bool(false), Blueprints: &tracking.Blueprints{OwnedByStar: map[int]int{1: 0}}},
		"dodge_viper": {Stars: tracking.Int(2)},
	}
	labels := keycodec.Labels{"bmw_m3": "BMW M3"}
	agg := tracking.Aggregate{XP: 50, CurrentLevel: 2, LevelXP: 5}

	got := BuildPayload(records, agg, labels)

	level, levelXP, mode := 2, 5, "default"
	assert.DeepEqual(t, got, client.Progress{
		CarStars:      map[string]int{"acura nsx": 3, "BMW M3": 6, "dodge viper": 2},
		OwnedCars:     []string{"BMW M3", "acura nsx"},
		GoldMaxedCars: []string{"BMW M3"},
		KeyCarsOwned:  []string{"BMW M3"},
		XP:            50,
		BlueprintsByCar: map[string]client.Blueprints{
			"BMW M3": {OwnedByStar: map[int]int{1: 4, 2: 1}},
		},
		CurrentGarageLevel:     &level,
		CurrentGLXp:            &levelXP,
		GarageLevelTrackerMode: &mode,
	}, "payload mismatch")
}

func TestBuildPayloadDeduplicates(t *testing.T) {
	records := map[string]tracking.Record{
		"nsx":       {Owned: true},
		"acura_nsx": {Owned: true},
	}
	labels := keycodec.Labels{"nsx": "Acura NSX", "acura_nsx": "Acura NSX"}

	got := BuildPayload(records, tracking.DefaultAggregate(), labels)

	assert.DeepEqual(t, got.OwnedCars, []string{"Acura NSX"}, "owned list should be deduplicated")
}

func TestPushSkipsEmptyPayload(t *testing.T) {
	remote := &fakeRemote{}
	e := newTestEngine(t, remote, nil)

	mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Owned: tracking.Bool(false)})
	mustMerge(t, e.Store, "bmw_m3", tracking.Patch{Stars: tracking.Int(0)})
	mustSetAggregate(t, e.Store, tracking.Aggregate{XP: 0, CurrentLevel: 1})

	res, err := e.Push(context.Background(), "token")
	if err != nil {
		t.Fatal(errors.Wrap(err, "pushing"))
	}

	assert.Equal(t, res.Skipped, true, "push should be skipped")
	assert.Equal(t, res.Pushed, false, "push should not be reported as pushed")
	assert.Equal(t, remote.saveCount(), 0, "no request should be sent")
}

func TestPush(t *testing.T) {
	remote := &fakeRemote{}
	e := newTestEngine(t, remote, nil)

	mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Stars: tracking.Int(3), Owned: tracking.Bool(true)})

	res, err := e.Push(context.Background(), "token")
	if err != nil {
		t.Fatal(errors.Wrap(err, "pushing"))
	}

	assert.Equal(t, res.Pushed, true, "push should be reported as pushed")
	assert.Equal(t, remote.saveCount(), 1, "exactly one request should be sent")
	assert.DeepEqual(t, remote.saved[0].CarStars, map[string]int{"acura nsx": 3}, "stars mismatch")
	assert.DeepEqual(t, remote.saved[0].OwnedCars, []string{"acura nsx"}, "owned mismatch")
}

func TestPushXPOnly(t *testing.T) {
	remote := &fakeRemote{}
	e := newTestEngine(t, remote, nil)

	mustSetAggregate(t, e.Store, tracking.Aggregate{XP: 10, CurrentLevel: 1})

	res, err := e.Push(context.Background(), "token")
	if err != nil {
		t.Fatal(errors.Wrap(err, "pushing"))
	}

	assert.Equal(t, res.Pushed, true, "a store with xp only should be pushed")
}

func TestPushError(t *testing.T) {
	remote := &fakeRemote{saveErr: client.ErrTimeout}
	e := newTestEngine(t, remote, nil)

	mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Owned: tracking.Bool(true)})

	res, err := e.Push(context.Background(), "token")

	assert.Equal(t, errors.Is(err, client.ErrTimeout), true, "error should be a timeout")
	assert.Equal(t, client.IsRetryable(err), true, "error should be retryable")
	assert.Equal(t, res.Pushed, false, "push should not be reported as pushed")
}

func TestPullNoProgress(t *testing.T) {
	remote := &fakeRemote{}
	e := newTestEngine(t, remote, nil)

	mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Stars: tracking.Int(3), Owned: tracking.Bool(true)})
	mustSetAggregate(t, e.Store, tracking.Aggregate{XP: 30, CurrentLevel: 2})
	before := mustGetAll(t, e.Store)

	res, err := e.Pull(context.Background(), "token")
	if err != nil {
		t.Fatal(errors.Wrap(err, "pulling"))
	}

	assert.Equal(t, res.NoProgress, true, "result should report no progress")
	assert.DeepEqual(t, mustGetAll(t, e.Store), before, "records should be unchanged")
	assert.Equal(t, mustAggregate(t, e.Store).XP, 30, "aggregate should be unchanged")
}

func TestPullOverwritesAndPrunes(t *testing.T) {
	remote := &fakeRemote{
		progress: &client.Progress{
			CarStars: map[string]int{"acura nsx": 4},
		},
	}
	e := newTestEngine(t, remote, nil)

	mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Stars: tracking.Int(3), Owned: tracking.Bool(true)})

	res, err := e.Pull(context.Background(), "token")
	if err != nil {
		t.Fatal(errors.Wrap(err, "pulling"))
	}

	assert.Equal(t, res.Pruned, 0, "nothing should be pruned")
	assert.DeepEqual(t, mustGetAll(t, e.Store), map[string]tracking.Record{
		"acura_nsx": {
			Stars:       tracking.Int(4),
			Owned:       false,
			GoldMaxed:   false,
			KeyObtained: tracking.Bool(false),
		},
	}, "records mismatch")
}

func TestPullPrunes(t *testing.T) {
	remote := &fakeRemote{
		progress: &client.Progress{
			OwnedCars:       []string{"Acura NSX"},
			GoldMaxedCars:   []string{"BMW M3"},
			KeyCarsOwned:    []string{"Citroën DS"},
			BlueprintsByCar: map[string]client.Blueprints{"Dodge Viper": {OwnedByStar: map[int]int{2: 3}}},
		},
	}
	e := newTestEngine(t, remote, nil)

	mustPut(t, e.Store, "acura_nsx", `{"owned":false,"stars":2,"note":"keep me"}`)
	mustPut(t, e.Store, "ford_gt", `{"owned":true,"stars":5}`)
	mustPut(t, e.Store, "dodge_viper", `{"blueprints":{"ownedByStar":{"1":9}}}`)

	res, err := e.Pull(context.Background(), "token")
	if err != nil {
		t.Fatal(errors.Wrap(err, "pulling"))
	}

	assert.Equal(t, res.Pruned, 1, "pruned count mismatch")
	assert.Equal(t, res.Applied, 4, "applied count mismatch")

	got := mustGetAll(t, e.Store)
	_, ok := got["ford_gt"]
	assert.Equal(t, ok, false, "record absent from the remote should be pruned")

	assert.DeepEqual(t, got["acura_nsx"], tracking.Record{
		Owned:       true,
		KeyObtained: tracking.Bool(false),
		Extra:       map[string]json.RawMessage{"note": json.RawMessage(`"keep me"`)},
	}, "untracked fields should be kept and stars cleared")
	assert.DeepEqual(t, fieldsOf(got), map[string]fields{
		"acura_nsx":   {Owned: true},
		"bmw_m3":      {GoldMaxed: true},
		"citroen_ds":  {KeyObtained: true},
		"dodge_viper": {Blueprints: map[int]int{2: 3}},
	}, "fields mismatch")
}

func TestPullAggregate(t *testing.T) {
	level, levelXP, mode := 7, 20, "manual"
	remote := &fakeRemote{
		progress: &client.Progress{
			XP:                     900,
			CurrentGarageLevel:     &level,
			CurrentGLXp:            &levelXP,
			GarageLevelTrackerMode: &mode,
		},
	}
	e := newTestEngine(t, remote, nil)

	mustSetAggregate(t, e.Store, tracking.Aggregate{XP: 1, CurrentLevel: 9, LevelXP: 1, LevelMode: "x"})

	if _, err := e.Pull(context.Background(), "token"); err != nil {
		t.Fatal(errors.Wrap(err, "pulling"))
	}

	assert.Equal(t, mustAggregate(t, e.Store), tracking.Aggregate{
		XP:           900,
		CurrentLevel: 7,
		LevelXP:      20,
		LevelMode:    "manual",
	}, "aggregate mismatch")
}

func TestPullFailureLeavesStoreUntouched(t *testing.T) {
	remote := &fakeRemote{getErr: &client.HTTPError{StatusCode: 500, Message: "boom"}}
	e := newTestEngine(t, remote, nil)

	mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Stars: tracking.Int(3), Owned: tracking.Bool(true)})
	mustSetAggregate(t, e.Store, tracking.Aggregate{XP: 30, CurrentLevel: 2})
	before := mustGetAll(t, e.Store)

	_, err := e.Pull(context.Background(), "token")

	assert.Equal(t, client.IsServerRejected(err), true, "error should be server rejected")
	assert.DeepEqual(t, mustGetAll(t, e.Store), before, "records should be unchanged")
	assert.Equal(t, mustAggregate(t, e.Store).XP, 30, "aggregate should be unchanged")
}

func TestPullDiscrepancies(t *testing.T) {
	remote := &fakeRemote{
		progress: &client.Progress{
			OwnedCars: []string{"Acura NSX", "bmw m3", "Unknown Car"},
		},
	}
	labels := keycodec.Labels{"acura_nsx": "Acura NSX", "bmw_m3": "BMW M3"}
	e := newTestEngine(t, remote, labels)

	res, err := e.Pull(context.Background(), "token")
	if err != nil {
		t.Fatal(errors.Wrap(err, "pulling"))
	}

	assert.DeepEqual(t, res.Discrepancies, []Discrepancy{
		{Key: "bmw_m3", RemoteLabel: "bmw m3", CatalogLabel: "BMW M3"},
		{Key: "unknown_car", RemoteLabel: "Unknown Car"},
	}, "discrepancies mismatch")
	assert.Equal(t, res.Applied, 3, "discrepancies should still be applied")
}

func TestRoundTrip(t *testing.T) {
	remote := &fakeRemote{}
	e := newTestEngine(t, remote, keycodec.Labels{"mercedes_benz_amg_gt": "Mercedes-Benz AMG GT"})

	mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Stars: tracking.Int(3), Owned: tracking.Bool(true)})
	mustMerge(t, e.Store, "mercedes_benz_amg_gt", tracking.Patch{
		Stars:     tracking.Int(6),
		Owned:     tracking.Bool(true),
		GoldMaxed: tracking.Bool(true),
	})
	if err := e.Store.SetKeyObtained("bmw_m3", true); err != nil {
		t.Fatal(errors.Wrap(err, "obtaining key"))
	}
	mustMerge(t, e.Store, "dodge_viper", tracking.Patch{
		Blueprints: &tracking.Blueprints{OwnedByStar: map[int]int{1: 2, 3: 1}},
	})
	agg := tracking.Aggregate{XP: 1200, CurrentLevel: 5, LevelXP: 30, LevelMode: "default"}
	mustSetAggregate(t, e.Store, agg)

	before := fieldsOf(mustGetAll(t, e.Store))

	if _, err := e.Push(context.Background(), "token"); err != nil {
		t.Fatal(errors.Wrap(err, "pushing"))
	}
	res, err := e.Pull(context.Background(), "token")
	if err != nil {
		t.Fatal(errors.Wrap(err, "pulling"))
	}

	assert.Equal(t, res.Pruned, 0, "nothing should be pruned")
	assert.DeepEqual(t, fieldsOf(mustGetAll(t, e.Store)), before, "records should survive a round trip")
	assert.Equal(t, mustAggregate(t, e.Store), agg, "aggregate should survive a round trip")
}

func TestPreview(t *testing.T) {
	remote := &fakeRemote{
		progress: &client.Progress{CarStars: map[string]int{"acura nsx": 4}, XP: 5},
	}
	e := newTestEngine(t, remote, nil)

	mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Stars: tracking.Int(3), Owned: tracking.Bool(true)})
	mustMerge(t, e.Store, "bmw_m3", tracking.Patch{Owned: tracking.Bool(true)})
	before := mustGetAll(t, e.Store)

	records, agg, err := e.Preview(context.Background(), "token")
	if err != nil {
		t.Fatal(errors.Wrap(err, "previewing"))
	}

	assert.DeepEqual(t, fieldsOf(records), map[string]fields{
		"acura_nsx": {Stars: 4},
	}, "preview mismatch")
	assert.Equal(t, agg.XP, 5, "preview aggregate mismatch")
	assert.DeepEqual(t, mustGetAll(t, e.Store), before, "preview should not change the store")
}

func TestBuildPayloadDropsInvalidBlueprints(t *testing.T) {
	records := map[string]tracking.Record{
		"acura_nsx": {Owned: true, Blueprints: &tracking.Blueprints{OwnedByStar: map[int]int{0: 1, 2: 1, 7: 2, 3: -1}}},
		"bmw_m3":    {Owned: true, Blueprints: &tracking.Blueprints{OwnedByStar: map[int]int{7: 2}}},
	}

	got := BuildPayload(records, tracking.DefaultAggregate(), nil)

	assert.DeepEqual(t, got.BlueprintsByCar, map[string]client.Blueprints{
		"acura nsx": {OwnedByStar: map[int]int{2: 1}},
	}, "blueprints mismatch")
}

func TestPushSkipsBlueprintsOnlyPayload(t *testing.T) {
	remote := &fakeRemote{}
	e := newTestEngine(t, remote, nil)

	mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Blueprints: &tracking.Blueprints{OwnedByStar: map[int]int{1: 3}}})

	res, err := e.Push(context.Background(), "token")
	if err != nil {
		t.Fatal(errors.Wrap(err, "pushing"))
	}

	assert.Equal(t, res.Skipped, true, "blueprints alone should not be pushed")
	assert.Equal(t, remote.saveCount(), 0, "no request should be sent")
}

func TestPullUnless(t *testing.T) {
	remote := &fakeRemote{
		progress: &client.Progress{
			CarStars: map[string]int{"bmw m3": 2},
		},
	}

	t.Run("discarded", func(t *testing.T) {
		e := newTestEngine(t, remote, nil)
		mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Stars: tracking.Int(3), Owned: tracking.Bool(true)})
		before := mustGetAll(t, e.Store)

		res, err := e.PullUnless(context.Background(), "token", func() bool { return true })
		if err != nil {
			t.Fatal(errors.Wrap(err, "pulling"))
		}

		assert.Equal(t, res.Discarded, true, "result should report the discarded progress")
		assert.DeepEqual(t, mustGetAll(t, e.Store), before, "records should be unchanged")
	})

	t.Run("applied", func(t *testing.T) {
		e := newTestEngine(t, remote, nil)
		mustMerge(t, e.Store, "acura_nsx", tracking.Patch{Stars: tracking.Int(3), Owned: tracking.Bool(true)})

		res, err := e.PullUnless(context.Background(), "token", func() bool { return false })
		if err != nil {
			t.Fatal(errors.Wrap(err, "pulling"))
		}

		assert.Equal(t, res.Discarded, false, "progress should be applied")
		assert.Equal(t, res.Pruned, 1, "local only record should be pruned")
		assert.Equal(t, e.Store.Get("bmw_m3").StarCount(), 2, "stars mismatch")
	})
}
