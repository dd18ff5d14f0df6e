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

// Package client provides interfaces for interacting with the gtrack account service
// and the data structures for requests and responses
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gtrack/gtrack/pkg/cli/log"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var contentTypeApplicationJSON = "application/json"

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 10
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 20

	// gzipThreshold is the body size in bytes above which request bodies are compressed
	gzipThreshold = 1024
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
	}
}

// Client is a client of the account service
type Client struct {
	// Endpoint is the base URL of the service without the trailing slash
	Endpoint   string
	Version    string
	DeviceID   string
	HTTPClient *http.Client
}

// New returns a client for the service at the endpoint
func New(endpoint, version, deviceID string) *Client {
	return &Client{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		Version:    version,
		DeviceID:   deviceID,
		HTTPClient: NewRateLimitedHTTPClient(),
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	return http.DefaultClient
}

// encodeBody returns the reader for the body and whether it is gzip encoded
func encodeBody(body []byte) (io.Reader, bool, error) {
	if len(body) <= gzipThreshold {
		return bytes.NewReader(body), false, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, false, errors.Wrap(err, "compressing body")
	}
	if err := zw.Close(); err != nil {
		return nil, false, errors.Wrap(err, "flushing compressed body")
	}

	return &buf, true, nil
}

func (c *Client) getReq(ctx context.Context, method, path, token string, body []byte) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", c.Endpoint, path)

	var reader io.Reader
	var gzipped bool
	if body != nil {
		var err error
		reader, gzipped, err = encodeBody(body)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("CLI-Version", c.Version)
	if c.DeviceID != "" {
		req.Header.Set("Client-ID", c.DeviceID)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentTypeApplicationJSON)
	}
	if gzipped {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	return req, nil
}

// checkRespErr returns an HTTPError if the response is not a 2xx response
func checkRespErr(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(ErrNetworkFailure, "server responded with %d but client could not read the response body: %s", res.StatusCode, err)
	}

	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    parseErrorMessage(body),
	}
}

func checkContentType(res *http.Response) error {
	got := res.Header.Get("Content-Type")
	if !strings.HasPrefix(got, contentTypeApplicationJSON) {
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, contentTypeApplicationJSON)
	}

	return nil
}

// doReq does a http request to the given path in the api endpoint and returns the
// response body. The given path should include the preceding slash.
func (c *Client) doReq(ctx context.Context, method, path, token string, body []byte) ([]byte, error) {
	req, err := c.getReq(ctx, method, path, token, body)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, classifyTransportErr(ctx, err)
	}
	defer res.Body.Close()

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		return nil, errors.Wrap(err, "server responded with an error")
	}
	if err = checkContentType(res); err != nil {
		return nil, errors.Wrap(err, "unexpected Content-Type")
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, classifyTransportErr(ctx, err)
	}

	return b, nil
}

// doAuthorizedReq does a http request as the user of the session token
func (c *Client) doAuthorizedReq(ctx context.Context, method, path, token string, body []byte) ([]byte, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	return c.doReq(ctx, method, path, token, body)
}

// SaveProgress replaces the progress of the account on the server
func (c *Client) SaveProgress(ctx context.Context, token string, p Progress) error {
	b, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshaling payload")
	}

	body, err := c.doAuthorizedReq(ctx, "POST", "/users/save-progress", token, b)
	if err != nil {
		return errors.Wrap(err, "saving progress")
	}

	var resp SaveProgressResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return errors.Wrap(ErrMalformedResponse, err.Error())
	}
	if !resp.Success {
		return errors.Wrap(ErrMalformedResponse, "server did not acknowledge the progress")
	}

	return nil
}

// GetProgress fetches the progress of the account from the server
func (c *Client) GetProgress(ctx context.Context, token string) (GetProgressResp, error) {
	var ret GetProgressResp

	body, err := c.doAuthorizedReq(ctx, "GET", "/users/get-progress", token, nil)
	if err != nil {
		return ret, errors.Wrap(err, "getting progress")
	}

	if err := validateProgressResp(body); err != nil {
		return ret, errors.Wrap(err, "validating progress")
	}
	if err := json.Unmarshal(body, &ret); err != nil {
		return ret, errors.Wrap(ErrMalformedResponse, err.Error())
	}

	return ret, nil
}

// Signout deletes the session on the server side
func (c *Client) Signout(ctx context.Context, token string) error {
	if _, err := c.doAuthorizedReq(ctx, "POST", "/signout", token, nil); err != nil {
		return errors.Wrap(err, "signing out")
	}

	return nil
}
