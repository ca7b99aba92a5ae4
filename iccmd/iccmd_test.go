package iccmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"intcodeweb.org/intcode"
	"intcodeweb.org/intcode/icpipe"
	"intcodeweb.org/intcode/icstore"
	"intcodeweb.org/intcode/icvm"
	"intcodeweb.org/intcode/internal/testutil"
)

func newTestStore(t testing.TB) *icstore.Store {
	ctx := testutil.Context(t)
	db := testutil.NewDB(t)
	require.NoError(t, icstore.SetupDB(ctx, db))
	return icstore.New(db, intcode.Hash, intcode.MaxProgramBytes)
}

func TestLoadProgramFile(t *testing.T) {
	p := testutil.WriteFile(t, "3,0,4,0,99\n")
	prog, err := loadProgramFile(p)
	require.NoError(t, err)
	require.Equal(t, []int64{3, 0, 4, 0, 99}, prog)

	p = testutil.WriteFile(t, "\n")
	_, err = loadProgramFile(p)
	require.ErrorAs(t, err, &icvm.ErrMalformedProgram{})
}

func TestRunProgram(t *testing.T) {
	ctx := testutil.Context(t)
	s := newTestStore(t)
	buf := bytes.Buffer{}

	res, err := runProgram(ctx, s, &buf, []int64{3, 0, 4, 0, 99}, []int64{13})
	require.NoError(t, err)
	require.Equal(t, icvm.Completed, res.Status)
	require.Equal(t, "13\nSTATUS: completed VALUE: 13\n", buf.String())

	buf.Reset()
	res, err = runProgram(ctx, s, &buf, []int64{3, 0, 4, 0, 99}, nil)
	require.NoError(t, err)
	require.True(t, res.IsWaiting())
	require.Equal(t, "STATUS: waiting PC: 0\n", buf.String())

	rs, err := s.ListRuns(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, "waiting", rs[0].Status)
	require.Equal(t, "completed", rs[1].Status)
}

func TestRunProgramFault(t *testing.T) {
	ctx := testutil.Context(t)
	s := newTestStore(t)
	buf := bytes.Buffer{}
	_, err := runProgram(ctx, s, &buf, []int64{99}, nil)
	require.ErrorAs(t, err, &icvm.ErrHaltWithoutOutput{})
	require.Empty(t, buf.String())
}

func TestAmplifyProgram(t *testing.T) {
	ctx := testutil.Context(t)
	s := newTestStore(t)
	buf := bytes.Buffer{}
	prog, err := icvm.Parse("3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	require.NoError(t, err)

	best, err := amplifyProgram(ctx, s, icpipe.NewSearcher(0), &buf, prog, []int64{0, 1, 2, 3, 4}, 0)
	require.NoError(t, err)
	require.EqualValues(t, 43210, best.Signal)
	require.Equal(t, "SIGNAL: 43210\nPHASES: 4,3,2,1,0\n", buf.String())

	buf.Reset()
	id := intcode.ProgramID(prog)
	require.NoError(t, listRuns(ctx, s, &buf, &id, 10))
	require.Contains(t, buf.String(), "amplify")
	require.Contains(t, buf.String(), "43210")
}
