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

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrTimeout is an error for a request that did not complete in time. It is retryable.
	ErrTimeout = errors.New("request timed out")
	// ErrNetworkFailure is an error for a transport level failure. It is retryable.
	ErrNetworkFailure = errors.New("network failure")
	// ErrMalformedResponse is an error for a successful response whose body could not be understood
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNoSession is an error for a request that requires a session token without one
	ErrNoSession = errors.New("no session token")
	// ErrContentTypeMismatch is an error for a response of an unexpected content type
	ErrContentTypeMismatch = errors.New("content type mismatch")
)

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsUnauthorized returns true if the error is a 401 Unauthorized error
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsRetryable returns true if the operation failed for a reason that may go
// away by trying again
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetworkFailure)
}

// IsServerRejected returns true if the server answered but the request did not succeed
func IsServerRejected(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return true
	}

	return errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrContentTypeMismatch)
}

// errorBody is the structured error response of the server
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// parseErrorMessage extracts the message from an error response body. A body
// that is not a structured error is used verbatim.
func parseErrorMessage(body []byte) string {
	var b errorBody
	if err := json.Unmarshal(body, &b); err == nil {
		if b.Message != "" {
			return b.Message
		}
		if b.Error != "" {
			return b.Error
		}
	}

	return strings.TrimRight(string(body), "\n")
}

// classifyTransportErr maps an error from the HTTP client to the error taxonomy
func classifyTransportErr(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "request canceled")
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Wrap(ErrTimeout, err.Error())
	}

	return errors.Wrap(ErrNetworkFailure, err.Error())
}
