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

// Package keycodec maps human readable item labels to normalized storage keys
// and back.
package keycodec

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const separator = '_'

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	ret, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return ret
}

func isSeparator(r rune) bool {
	return r == '-' || r == separator || unicode.IsSpace(r)
}

func isAllowed(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Normalize derives a storage key from a label. It lowercases the label, strips
// diacritics and periods, turns runs of spaces, hyphens and underscores into a single
// underscore and drops every other character outside [a-z0-9_].
// The result never starts or ends with an underscore. Normalize is idempotent.
func Normalize(label string) string {
	s := stripDiacritics(strings.ToLower(label))

	var b strings.Builder
	b.Grow(len(s))

	pendingSep := false
	for _, r := range s {
		switch {
		case r == '.':
			continue
		case isSeparator(r):
			pendingSep = true
		case isAllowed(r):
			if pendingSep && b.Len() > 0 {
				b.WriteRune(separator)
			}
			pendingSep = false
			b.WriteRune(r)
		}
	}

	return b.String()
}

// FromParts returns the key for the item with the given brand and model
func FromParts(brand, model string) string {
	return Normalize(brand + string(separator) + model)
}

// LabelFromKey is a best-effort inverse of Normalize. It does not recover the
// original casing or punctuation.
func LabelFromKey(key string) string {
	return strings.ReplaceAll(key, string(separator), " ")
}

// Labels is an exact key to label table, typically sourced from the catalog
type Labels map[string]string

// Label returns the exact label for the key if the table has one, and falls
// back to LabelFromKey otherwise. The boolean reports whether the label is exact.
func (l Labels) Label(key string) (string, bool) {
	if label, ok := l[key]; ok {
		return label, true
	}

	return LabelFromKey(key), false
}
