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

package app

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is an error for a missing resource
	ErrNotFound = errors.New("not found")
	// ErrNameRequired is an error for a user without a name
	ErrNameRequired = errors.New("name is required")
	// ErrDuplicateName is an error for a name already taken by another user
	ErrDuplicateName = errors.New("a user with the name already exists")
	// ErrInvalidProgress is an error for a progress payload that fails validation
	ErrInvalidProgress = errors.New("invalid progress")
)
