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

package config

import (
	"testing"
	"time"

	"github.com/gtrack/gtrack/pkg/assert"
	"github.com/gtrack/gtrack/pkg/cli/context"
	"github.com/pkg/errors"
)

func TestReadWrite(t *testing.T) {
	ctx := context.InitTestCtx(t)

	cf := Default("http://localhost:3001")
	cf.CatalogPath = "/tmp/catalog.yaml"

	if err := Write(ctx, cf); err != nil {
		t.Fatal(errors.Wrap(err, "writing config"))
	}

	got, err := Read(ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading config"))
	}

	assert.Equal(t, got, cf, "config mismatch")
}

func TestParseDurations(t *testing.T) {
	testCases := []struct {
		name     string
		config   Config
		expected Durations
		hasErr   bool
	}{
		{
			name:   "defaults",
			config: Config{},
			expected: Durations{
				PushDebounce: time.Second,
				PushTimeout:  15 * time.Second,
				PullTimeout:  15 * time.Second,
			},
		},
		{
			name:   "custom",
			config: Config{PushDebounce: "250ms", PushTimeout: "5s", PullTimeout: "1m"},
			expected: Durations{
				PushDebounce: 250 * time.Millisecond,
				PushTimeout:  5 * time.Second,
				PullTimeout:  time.Minute,
			},
		},
		{
			name:   "invalid",
			config: Config{PushTimeout: "soon"},
			hasErr: true,
		},
		{
			name:   "negative",
			config: Config{PullTimeout: "-1s"},
			hasErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.config.ParseDurations()

			if tc.hasErr {
				assert.NotEqual(t, err, nil, "error should not be nil")
				return
			}

			assert.Equal(t, err, nil, "error should be nil")
			assert.Equal(t, got, tc.expected, "durations mismatch")
		})
	}
}
