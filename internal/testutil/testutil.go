package testutil

import (
	"context"
	"net"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"
	"lukechampine.com/blake3"

	"intcodeweb.org/intcode/internal/cadata"
	"intcodeweb.org/intcode/internal/dbutil"
	"intcodeweb.org/intcode/internal/stores"
)

func Context(t testing.TB) context.Context {
	ctx := context.Background()
	ctx, cf := context.WithCancel(ctx)
	t.Cleanup(cf)
	l, err := zap.NewDevelopment()
	require.NoError(t, err)
	ctx = logctx.NewContext(ctx, l)
	return ctx
}

// NewStore returns an in memory store which hashes with blake3.
func NewStore(t testing.TB) *stores.Mem {
	return stores.NewMem(func(x []byte) cadata.ID {
		return blake3.Sum256(x)
	}, 1<<20)
}

// NewDB returns an empty in memory database, which is closed during Cleanup.
func NewDB(t testing.TB) *sqlx.DB {
	db, err := dbutil.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func Listen(t testing.TB) net.Listener {
	l, err := net.Listen("tcp", "127.0.0.1:")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

// WriteFile writes data to a new file in a temporary directory and returns its path.
func WriteFile(t testing.TB, data string) string {
	f, err := os.CreateTemp(t.TempDir(), "prog-*.txt")
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(data)
	require.NoError(t, err)
	return f.Name()
}
