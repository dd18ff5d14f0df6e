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
	"bytes"
	"embed"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const progressSchemaName = "progress.schema.json"

var (
	progressSchemaOnce sync.Once
	progressSchema     *jsonschema.Schema
	progressSchemaErr  error
)

func compileSchema(name string) (*jsonschema.Schema, error) {
	b, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema %s", name)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, errors.Wrapf(err, "adding schema %s", name)
	}

	s, err := c.Compile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling schema %s", name)
	}

	return s, nil
}

func getProgressSchema() (*jsonschema.Schema, error) {
	progressSchemaOnce.Do(func() {
		progressSchema, progressSchemaErr = compileSchema(progressSchemaName)
	})

	return progressSchema, progressSchemaErr
}

// validateProgressResp checks the body of a get progress response against its schema
func validateProgressResp(body []byte) error {
	s, err := getProgressSchema()
	if err != nil {
		return err
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return errors.Wrap(ErrMalformedResponse, err.Error())
	}

	if err := s.Validate(v); err != nil {
		return errors.Wrap(ErrMalformedResponse, err.Error())
	}

	return nil
}
