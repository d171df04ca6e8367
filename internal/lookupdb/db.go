// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lookupdb persists the results of cloud metadata lookups in a
// SQL database, so that later runs do not repeat them.
package lookupdb

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// DB is a table of lookup results keyed by (kind, key). It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	get    *sql.Stmt
	insert *sql.Stmt
	count  *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(driverName); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Lookups (
	Kind VARCHAR(32) NOT NULL,
	LookupKey VARCHAR(512) NOT NULL,
	Value VARCHAR(1024) NOT NULL,
	Created TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (Kind, LookupKey)
){{if not .sqlite3}} DEFAULT CHARSET=utf8mb4{{end}};
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements(driverName string) error {
	var err error
	db.get, err = db.sql.Prepare("SELECT Value FROM Lookups WHERE Kind = ? AND LookupKey = ?")
	if err != nil {
		return err
	}
	q := "INSERT IGNORE INTO Lookups(Kind, LookupKey, Value) VALUES (?, ?, ?)"
	if driverName == "sqlite3" {
		q = "INSERT OR IGNORE INTO Lookups(Kind, LookupKey, Value) VALUES (?, ?, ?)"
	}
	db.insert, err = db.sql.Prepare(q)
	if err != nil {
		return err
	}
	db.count, err = db.sql.Prepare("SELECT COUNT(*) FROM Lookups")
	return err
}

// Get returns the value stored for (kind, key). ok is false if there is
// none.
func (db *DB) Get(ctx context.Context, kind, key string) (value string, ok bool, err error) {
	err = db.get.QueryRowContext(ctx, kind, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put stores value for (kind, key) unless a value is already stored,
// in which case the stored value is kept.
func (db *DB) Put(ctx context.Context, kind, key, value string) error {
	_, err := db.insert.ExecContext(ctx, kind, key, value)
	return err
}

// Count returns the number of stored lookups.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := db.count.QueryRowContext(ctx).Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.get, db.insert, db.count} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
