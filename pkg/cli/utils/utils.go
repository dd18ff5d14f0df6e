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

package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// GenerateUUID returns a uuid v4 in string
func GenerateUUID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(err, "generating uuid")
	}

	return u.String(), nil
}

// regexNumber is a regex that matches a string that looks like an integer
var regexNumber = regexp.MustCompile(`^\d+$`)

// IsNumber checks if the given string is in the form of a number
func IsNumber(s string) bool {
	if s == "" {
		return false
	}

	return regexNumber.MatchString(s)
}

// ParseCounts parses a list of "key=count" pairs, such as "1=3", into a map
// of integer keys to non-negative counts
func ParseCounts(pairs []string) (map[int]int, error) {
	ret := map[int]int{}

	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid pair '%s'. Expected the form key=count", pair)
		}

		k, v := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if !IsNumber(k) || !IsNumber(v) {
			return nil, errors.Errorf("invalid pair '%s'. Key and count must be non-negative integers", pair)
		}

		key, err := strconv.Atoi(k)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", k)
		}
		count, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", v)
		}

		ret[key] = count
	}

	return ret, nil
}
