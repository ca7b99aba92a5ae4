// package icstore persists programs and the records of runs against them in SQLite.
// Machine state is never persisted.
package icstore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"intcodeweb.org/intcode/internal/dbutil"
	"intcodeweb.org/intcode/internal/migrations"
)

func OpenDB(p string) (*sqlx.DB, error) {
	return dbutil.Open(p)
}

func SetupDB(ctx context.Context, db *sqlx.DB) error {
	return migrations.Migrate(ctx, db, currentSchema)
}

var currentSchema = func() *migrations.State {
	x := migrations.InitialState()
	x = x.ApplyStmt(`CREATE TABLE programs (
		id BLOB NOT NULL,
		data BLOB NOT NULL,

		PRIMARY KEY(id)
	) WITHOUT ROWID, STRICT`)
	x = x.ApplyStmt(`CREATE TABLE runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		program_id BLOB NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		inputs TEXT NOT NULL,
		outputs TEXT NOT NULL,
		result INTEGER NOT NULL,
		tai_sec INTEGER NOT NULL,
		tai_nsec INTEGER NOT NULL,

		FOREIGN KEY(program_id) REFERENCES programs(id) ON DELETE CASCADE
	) STRICT`)
	x = x.ApplyStmt(`CREATE INDEX runs_program ON runs (program_id, id)`)
	return x
}()
