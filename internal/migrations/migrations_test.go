package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"intcodeweb.org/intcode/internal/testutil"
)

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	v1 := InitialState().ApplyStmt(`CREATE TABLE a (x INTEGER)`)
	require.NoError(t, Migrate(ctx, db, v1))
	// applying the same state twice is a no-op
	require.NoError(t, Migrate(ctx, db, v1))

	v2 := v1.ApplyStmt(`CREATE TABLE b (y INTEGER)`)
	require.Equal(t, 2, v2.Version())
	require.NoError(t, Migrate(ctx, db, v2))

	var version int
	require.NoError(t, db.Get(&version, `PRAGMA user_version`))
	require.Equal(t, 2, version)

	_, err := db.Exec(`INSERT INTO b (y) VALUES (1)`)
	require.NoError(t, err)

	// a database ahead of the code is an error
	require.Error(t, Migrate(ctx, db, v1))
}
