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

// Package output provides functions to print informations on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gtrack/gtrack/pkg/cli/keycodec"
	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
)

const timeLayout = "Jan 2, 2006 3:04pm (MST)"

func formatBlueprints(b *tracking.Blueprints) string {
	if b.IsEmpty() {
		return ""
	}

	stars := make([]int, 0, len(b.OwnedByStar))
	for star, count := range b.OwnedByStar {
		if count > 0 {
			stars = append(stars, star)
		}
	}
	sort.Ints(stars)

	parts := make([]string, 0, len(stars))
	for _, star := range stars {
		parts = append(parts, fmt.Sprintf("%d=%d", star, b.OwnedByStar[star]))
	}

	return strings.Join(parts, ",")
}

// FormatRecord returns a one-line summary of a record
func FormatRecord(label string, r tracking.Record) string {
	parts := []string{label}

	if n := r.StarCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("stars=%d", n))
	}
	if r.Owned {
		parts = append(parts, "owned")
	}
	if r.GoldMaxed {
		parts = append(parts, "gold")
	}
	if r.HasKey() {
		parts = append(parts, "key")
	}
	if bp := formatBlueprints(r.Blueprints); bp != "" {
		parts = append(parts, fmt.Sprintf("blueprints=%s", bp))
	}

	return strings.Join(parts, " ")
}

// FormatAggregate returns a one-line summary of the aggregate progress
func FormatAggregate(a tracking.Aggregate) string {
	return fmt.Sprintf("level=%d levelXP=%d xp=%d mode=%s", a.CurrentLevel, a.LevelXP, a.XP, a.LevelMode)
}

// FormatSnapshot returns the aggregate and the non-empty records, one per
// line, sorted by key
func FormatSnapshot(records map[string]tracking.Record, agg tracking.Aggregate, labels keycodec.Labels) string {
	keys := make([]string, 0, len(records))
	for key, r := range records {
		if r.IsEmpty() {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(FormatAggregate(agg))
	sb.WriteString("\n")
	for _, key := range keys {
		label, _ := labels.Label(key)
		sb.WriteString(FormatRecord(label, records[key]))
		sb.WriteString("\n")
	}

	return sb.String()
}

// RecordInfo prints a record information
func RecordInfo(key, label string, r tracking.Record) {
	log.Infof("item: %s\n", label)
	log.Infof("key: %s\n", key)
	log.Infof("stars: %d\n", r.StarCount())
	log.Infof("owned: %t\n", r.Owned)
	log.Infof("gold maxed: %t\n", r.GoldMaxed)
	log.Infof("key obtained: %t\n", r.HasKey())
	if bp := formatBlueprints(r.Blueprints); bp != "" {
		log.Infof("blueprints: %s\n", bp)
	}
}

// AggregateInfo prints the aggregate progress
func AggregateInfo(a tracking.Aggregate) {
	log.Infof("garage level: %d (%d xp into the level)\n", a.CurrentLevel, a.LevelXP)
	log.Infof("xp: %d\n", a.XP)
	log.Infof("level mode: %s\n", a.LevelMode)
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return "never"
	}

	return time.Unix(ts, 0).Format(timeLayout)
}

// SyncInfo prints the times of the last pull and the last push
func SyncInfo(lastPullAt, lastPushAt int64) {
	log.Infof("last pull: %s\n", formatUnix(lastPullAt))
	log.Infof("last push: %s\n", formatUnix(lastPushAt))
}
