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

package database

import (
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// KV is a string key-value store
type KV interface {
	// Get returns the value for the key and whether it exists
	Get(key string) (string, bool, error)
	// Set writes the value for the key, replacing any previous value
	Set(key, value string) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns, in ascending order, all keys that start with the prefix
	Keys(prefix string) ([]string, error)
	// Batch runs fn against a view of the store whose writes are applied
	// atomically if fn returns nil, and discarded otherwise.
	Batch(fn func(KV) error) error
}

// escapeLike escapes the LIKE wildcards in s using a backslash
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Get returns the value for the key
func (d *DB) Get(key string) (string, bool, error) {
	var value string
	err := d.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	} else if err != nil {
		return "", false, errors.Wrapf(err, "getting %s", key)
	}

	return value, true, nil
}

// Set writes the value for the key
func (d *DB) Set(key, value string) error {
	if _, err := d.Exec("INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", key, value); err != nil {
		return errors.Wrapf(err, "setting %s", key)
	}

	return nil
}

// Delete removes the key
func (d *DB) Delete(key string) error {
	if _, err := d.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "deleting %s", key)
	}

	return nil
}

// Keys returns all keys with the given prefix
func (d *DB) Keys(prefix string) ([]string, error) {
	rows, err := d.Query(`SELECT key FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, errors.Wrap(err, "querying keys")
	}
	defer rows.Close()

	var ret []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.Wrap(err, "scanning a key")
		}

		ret = append(ret, key)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating keys")
	}

	return ret, nil
}

// Batch runs fn inside a transaction. If the DB is already inside a transaction,
// fn joins it.
func (d *DB) Batch(fn func(KV) error) error {
	if d.Tx != nil {
		return fn(d)
	}

	tx, err := d.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// MemoryKV is an in-memory KV. It is safe for concurrent use.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV returns an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string]string{}}
}

// Get returns the value for the key
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok, nil
}

// Set writes the value for the key
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

// Delete removes the key
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Keys returns all keys with the given prefix
func (m *MemoryKV) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return keysWithPrefix(m.data, prefix), nil
}

func keysWithPrefix(data map[string]string, prefix string) []string {
	var ret []string
	for k := range data {
		if strings.HasPrefix(k, prefix) {
			ret = append(ret, k)
		}
	}
	sort.Strings(ret)

	return ret
}

// Batch runs fn against a copy of the store and swaps it in if fn succeeds.
// Other writers are blocked until fn returns.
func (m *MemoryKV) Batch(fn func(KV) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft := &memoryDraft{data: make(map[string]string, len(m.data))}
	for k, v := range m.data {
		draft.data[k] = v
	}

	if err := fn(draft); err != nil {
		return err
	}

	m.data = draft.data
	return nil
}

// memoryDraft is the unsynchronized view handed to a MemoryKV batch
type memoryDraft struct {
	data map[string]string
}

func (d *memoryDraft) Get(key string) (string, bool, error) {
	v, ok := d.data[key]
	return v, ok, nil
}

func (d *memoryDraft) Set(key, value string) error {
	d.data[key] = value
	return nil
}

func (d *memoryDraft) Delete(key string) error {
	delete(d.data, key)
	return nil
}

func (d *memoryDraft) Keys(prefix string) ([]string, error) {
	return keysWithPrefix(d.data, prefix), nil
}

func (d *memoryDraft) Batch(fn func(KV) error) error {
	return fn(d)
}
