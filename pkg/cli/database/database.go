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

// Package database provides the local SQLite storage for gtrack
package database

import (
	"database/sql"
	"strings"

	// registers the sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const busyTimeoutParam = "_busy_timeout=5000"

// DB wraps a database connection and, inside a transaction, the transaction itself.
// Queries are routed to the transaction if one is present.
type DB struct {
	Conn *sql.DB
	Tx   *sql.Tx
}

func getDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + busyTimeoutParam
	}
	if strings.HasPrefix(path, "file:") {
		return path + "?" + busyTimeoutParam
	}

	return "file:" + path + "?" + busyTimeoutParam
}

// Open opens a connection to the SQLite database at the given path
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", getDSN(path))
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}

	// a single connection serializes writers within the process and keeps
	// shared-cache in-memory databases from locking against themselves
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "connecting to the database")
	}

	return &DB{Conn: conn}, nil
}

// Begin begins a transaction
func (d *DB) Begin() (*DB, error) {
	if d.Tx != nil {
		return nil, errors.New("transaction already in progress")
	}

	tx, err := d.Conn.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "beginning a transaction")
	}

	return &DB{Conn: d.Conn, Tx: tx}, nil
}

// Commit commits the transaction
func (d *DB) Commit() error {
	if d.Tx == nil {
		return errors.New("no transaction in progress")
	}

	return d.Tx.Commit()
}

// Rollback aborts the transaction
func (d *DB) Rollback() error {
	if d.Tx == nil {
		return errors.New("no transaction in progress")
	}

	return d.Tx.Rollback()
}

// Exec executes a query without returning rows
func (d *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	if d.Tx != nil {
		return d.Tx.Exec(query, args...)
	}

	return d.Conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (d *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	if d.Tx != nil {
		return d.Tx.Query(query, args...)
	}

	return d.Conn.Query(query, args...)
}

// QueryRow executes a query that is expected to return at most one row
func (d *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	if d.Tx != nil {
		return d.Tx.QueryRow(query, args...)
	}

	return d.Conn.QueryRow(query, args...)
}

// Close closes the connection to the database
func (d *DB) Close() error {
	return d.Conn.Close()
}
