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

package ui

import (
	"strings"
	"testing"

	"github.com/gtrack/gtrack/pkg/assert"
)

func TestFormatQuestion(t *testing.T) {
	assert.Equal(t, FormatQuestion("Are you sure?", false), "Are you sure? (y/N)", "pessimistic mismatch")
	assert.Equal(t, FormatQuestion("Continue?", true), "Continue? (Y/n)", "optimistic mismatch")
}

func TestReadYesNo(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		optimistic bool
		expected   bool
	}{
		{name: "pessimistic with y", input: "y\n", optimistic: false, expected: true},
		{name: "pessimistic with uppercase Y", input: "Y\n", optimistic: false, expected: true},
		{name: "pessimistic with yes", input: "yes\n", optimistic: false, expected: true},
		{name: "pessimistic with n", input: "n\n", optimistic: false, expected: false},
		{name: "pessimistic with empty", input: "\n", optimistic: false, expected: false},
		{name: "optimistic with empty", input: "\n", optimistic: true, expected: true},
		{name: "optimistic with n", input: "n\n", optimistic: true, expected: false},
		{name: "without trailing newline", input: "y", optimistic: false, expected: true},
		{name: "with whitespace", input: "  y  \r\n", optimistic: false, expected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadYesNo(strings.NewReader(tc.input), tc.optimistic)
			if err != nil {
				t.Fatal(err)
			}

			assert.Equal(t, got, tc.expected, "confirmation mismatch")
		})
	}
}

func TestReadYesNo_closedInput(t *testing.T) {
	_, err := ReadYesNo(strings.NewReader(""), true)
	assert.NotEqual(t, err, nil, "empty closed input should be an error")
}
