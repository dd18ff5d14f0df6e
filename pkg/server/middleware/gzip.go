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

package middleware

import (
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// MaxBodySize is the largest accepted request body in bytes, measured after
// decompression
const MaxBodySize = 1 << 20

// Decompress is a middleware that decodes gzip encoded request bodies and
// bounds the size of every request body
func Decompress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoding := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding")))

		switch encoding {
		case "":
		case "gzip":
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				RespondError(w, http.StatusBadRequest, "malformed gzip body")
				return
			}
			defer zr.Close()

			r.Body = zr
			r.Header.Del("Content-Encoding")
			r.ContentLength = -1
		default:
			RespondError(w, http.StatusUnsupportedMediaType, "unsupported Content-Encoding "+encoding)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
		next.ServeHTTP(w, r)
	})
}
