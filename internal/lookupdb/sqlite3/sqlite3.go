// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlite3 provides the sqlite3 driver for lookupdb.DB. It must
// be imported instead of go-sqlite3 to ensure the lookup database
// behaves consistently.
package sqlite3

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/storagebench/perfreport/internal/lookupdb"
)

func init() {
	lookupdb.RegisterOpenHook("sqlite3", func(db *sql.DB) error {
		// Every connection to ":memory:" opens a separate
		// database, and a file database allows a single writer.
		db.SetMaxOpenConns(1)
		return nil
	})
}
