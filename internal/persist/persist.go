// Copyright 2026 The issue2mbox Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package persist keeps the export ledger: which messages have
// already been appended to which issue's container.  Re-running an
// export without --overwrite consults the ledger instead of appending
// duplicates.
package persist

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	_ "github.com/mattn/go-sqlite3"
)

var createTableSQL = []string{
	// The exported table records one row per message appended to a
	// mailbox container.
	//
	// Field: issue
	//
	//   The issue number, which is also the container name.
	//
	// Field: message_id
	//
	//   The addr-spec of the synthesized Message-Id.  Derived from
	//   the source issue/comment/event identifier, so it is stable
	//   across runs given identical upstream data.
	//
	// Rows for an issue are deleted when its container is
	// destructively recreated with --overwrite.
	`
CREATE TABLE IF NOT EXISTS exported (
issue INTEGER NOT NULL,
message_id TEXT NOT NULL,
PRIMARY KEY (issue, message_id)
);`,
}

type DB struct {
	db *sql.DB
}

func dsnFromPath(path string, addValues url.Values) (string, error) {
	var u *url.URL
	if !strings.HasPrefix(path, "file:") {
		u = &url.URL{Scheme: "file", Path: path}
	} else {
		var err error
		u, err = url.Parse(path)
		if err != nil {
			return "", err
		}
	}
	values := u.Query()
	for k, v := range addValues {
		for _, item := range v {
			values.Add(k, item)
		}
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

func Open(ctx context.Context, path string) (*DB, error) {
	// The _busy_timeout is a SQLite extension that controls how
	// long SQLite will poll before giving up.  The default of 5
	// seconds is too short in practice; go with 5 minutes.
	var busyTimeout = int(5*time.Minute) / int(time.Millisecond)

	dsn, err := dsnFromPath(path, url.Values{
		"_busy_timeout": {fmt.Sprintf("%d", busyTimeout)}})
	if err != nil {
		return nil, errors.Wrapf(err,
			"Open(%q) failed: could not form a DB DSN from "+
				"the given path",
			path)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err,
			"Open(%q) failed: could not open database at %q",
			path, dsn)
	}

	if err = initSchema(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrapf(err,
			"Open(%q) failed: could not initialize the "+
				"database schema", path)
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	for _, sql := range createTableSQL {
		if _, err := db.ExecContext(ctx, sql); err != nil {
			return errors.Wrapf(err, "while executing %q", sql)
		}
	}
	return nil
}

// Has reports whether a message has already been appended to the
// issue's container by an earlier run.
func (db *DB) Has(ctx context.Context, issue int, messageID string) (bool, error) {
	const q = `SELECT 1 FROM exported WHERE issue = $1 AND message_id = $2`
	row := db.db.QueryRowContext(ctx, q, issue, messageID)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, errors.Wrap(err, "ledger lookup failed")
	}
	return true, nil
}

// Record marks a message as appended.
func (db *DB) Record(ctx context.Context, issue int, messageID string) error {
	const q = `INSERT OR IGNORE INTO exported (issue, message_id) values ($1, $2)`
	if _, err := db.db.ExecContext(ctx, q, issue, messageID); err != nil {
		return errors.Wrap(err, "ledger insert failed")
	}
	return nil
}

// Forget drops an issue's ledger rows.  Called before the issue's
// container is destructively recreated.
func (db *DB) Forget(ctx context.Context, issue int) error {
	const q = `DELETE FROM exported WHERE issue = $1`
	if _, err := db.db.ExecContext(ctx, q, issue); err != nil {
		return errors.Wrap(err, "ledger delete failed")
	}
	return nil
}
