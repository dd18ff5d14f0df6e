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

	"github.com/gtrack/gtrack/pkg/cli/client"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/pkg/errors"
)

// BootstrapResult is the outcome of a session bootstrap
type BootstrapResult struct {
	// Migrated is true if the local progress was promoted to the remote
	Migrated bool
	Pull     PullResult
}

// isDefaultRemote returns true if the remote holds the progress of a fresh account
func isDefaultRemote(p *client.Progress) bool {
	return p == nil || aggregateFromProgress(*p).IsDefault()
}

// unionProgress returns the local payload extended with the remote items that
// the local payload does not mention. For items known to both, local wins.
func unionProgress(local client.Progress, remote *client.Progress) client.Progress {
	if remote == nil {
		return local
	}

	localKeys := map[string]bool{}
	for key := range collectRemoteItems(local) {
		localKeys[key] = true
	}

	ret := local
	ret.CarStars = map[string]int{}
	for label, n := range local.CarStars {
		ret.CarStars[label] = n
	}
	ret.BlueprintsByCar = map[string]client.Blueprints{}
	for label, b := range local.BlueprintsByCar {
		ret.BlueprintsByCar[label] = b
	}

	owned := append([]string{}, local.OwnedCars...)
	gold := append([]string{}, local.GoldMaxedCars...)
	keys := append([]string{}, local.KeyCarsOwned...)

	for key, item := range collectRemoteItems(*remote) {
		if localKeys[key] {
			continue
		}

		if item.stars > 0 {
			ret.CarStars[item.label] = item.stars
		}
		if item.owned {
			owned = append(owned, item.label)
		}
		if item.goldMaxed {
			gold = append(gold, item.label)
		}
		if item.keyObtained {
			keys = append(keys, item.label)
		}
		if item.blueprints != nil {
			ret.BlueprintsByCar[item.label] = client.Blueprints{OwnedByStar: item.blueprints.OwnedByStar}
		}
	}

	ret.OwnedCars = uniqueSorted(owned)
	ret.GoldMaxedCars = uniqueSorted(gold)
	ret.KeyCarsOwned = uniqueSorted(keys)

	return ret
}

// Bootstrap runs the first synchronization of a session. If the remote holds
// the progress of a fresh account while the local store has progress of its
// own, the local progress is pushed once and kept. Otherwise the remote wins
// as in a regular pull.
func (e *Engine) Bootstrap(ctx context.Context, token string) (BootstrapResult, error) {
	localAgg, err := e.Store.Aggregate()
	if err != nil {
		return BootstrapResult{}, errors.Wrap(err, "reading local aggregate")
	}

	remote, err := e.fetch(ctx, token)
	if err != nil {
		return BootstrapResult{}, errors.Wrap(err, "pulling progress")
	}

	if isDefaultRemote(remote) && !localAgg.IsDefault() {
		log.Debug("promoting local progress (level %d, xp %d) to the remote\n", localAgg.CurrentLevel, localAgg.XP)

		records, _, err := snapshot(e.Store)
		if err != nil {
			return BootstrapResult{}, err
		}

		payload := unionProgress(BuildPayload(records, localAgg, e.Labels), remote)
		if err := e.save(ctx, token, payload); err != nil {
			return BootstrapResult{}, errors.Wrap(err, "pushing local progress")
		}

		pr, err := e.apply(payload)
		if err != nil {
			return BootstrapResult{}, err
		}

		return BootstrapResult{Migrated: true, Pull: pr}, nil
	}

	if remote == nil {
		return BootstrapResult{Pull: PullResult{NoProgress: true}}, nil
	}

	pr, err := e.apply(*remote)
	if err != nil {
		return BootstrapResult{}, err
	}

	return BootstrapResult{Pull: pr}, nil
}
