// package migrations tracks a schema as a chain of statements, and brings databases up to date.
package migrations

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"intcodeweb.org/intcode/internal/dbutil"
)

// State is a schema version.
// Each State is the previous State plus one statement.
type State struct {
	prev *State
	stmt string
	n    int
}

// InitialState is the empty schema, version 0.
func InitialState() *State {
	return &State{}
}

// ApplyStmt returns the State after running stmt.
func (s *State) ApplyStmt(stmt string) *State {
	return &State{prev: s, stmt: stmt, n: s.n + 1}
}

// Version is the number of statements applied since InitialState.
func (s *State) Version() int {
	return s.n
}

func (s *State) stmts() []string {
	ret := make([]string, s.n)
	for x := s; x.n > 0; x = x.prev {
		ret[x.n-1] = x.stmt
	}
	return ret
}

// Migrate applies any statements in target which have not been applied to db.
// The applied version is stored in the user_version pragma.
func Migrate(ctx context.Context, db *sqlx.DB, target *State) error {
	return dbutil.DoTx(ctx, db, func(tx *sqlx.Tx) error {
		var current int
		if err := tx.GetContext(ctx, &current, `PRAGMA user_version`); err != nil {
			return err
		}
		if current > target.Version() {
			return fmt.Errorf("migrations: database is at version %d, which is newer than %d", current, target.Version())
		}
		stmts := target.stmts()
		for i := current; i < len(stmts); i++ {
			if _, err := tx.ExecContext(ctx, stmts[i]); err != nil {
				return fmt.Errorf("migrations: applying version %d: %w", i+1, err)
			}
		}
		// pragmas do not accept bound parameters
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, target.Version()))
		return err
	})
}
