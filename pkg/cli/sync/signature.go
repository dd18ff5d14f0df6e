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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"
)

// opaqueMarker stands in for values that have no stable serialization
const opaqueMarker = `"<opaque>"`

func isOpaque(v interface{}) bool {
	if v == nil {
		return false
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}

	return false
}

func serialize(v interface{}) []byte {
	if isOpaque(v) {
		return []byte(opaqueMarker)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return []byte(opaqueMarker)
	}

	return b
}

// Signature returns a fixed length digest of the values. Each value is
// serialized as JSON, with map keys in sorted order. Functions, channels and
// values that cannot be serialized are all represented by the same marker.
func Signature(values ...interface{}) string {
	h := sha256.New()

	for _, v := range values {
		b := serialize(v)
		h.Write(b)
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
