package ichttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"intcodeweb.org/intcode"
	"intcodeweb.org/intcode/icpipe"
	"intcodeweb.org/intcode/icstore"
	"intcodeweb.org/intcode/internal/cadata"
	"intcodeweb.org/intcode/internal/testutil"
)

const (
	echo     = "3,0,4,0,99"
	feedback = "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5"
)

func TestPostGetProgram(t *testing.T) {
	lAddr, _ := startServing(t)

	var posted struct{ ID cadata.ID }
	code := doPost(t, lAddr, "/v1/programs", "text/plain", " 1, 9,10,3,2,3,11,0,99,30,40,50\n", &posted)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, intcode.ProgramID([]int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}), posted.ID)

	resp, err := http.Get(mkURL(lAddr, "/v1/programs/"+posted.ID.String()))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "1,9,10,3,2,3,11,0,99,30,40,50", string(data))

	var lines struct{ Lines []string }
	code = doGet(t, lAddr, "/v1/programs/"+posted.ID.String()+"/disasm", &lines)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, lines.Lines)
	require.Contains(t, lines.Lines[0], "add")
}

func TestPostMalformed(t *testing.T) {
	lAddr, _ := startServing(t)
	var errResp struct{ Error string }
	code := doPost(t, lAddr, "/v1/programs", "text/plain", "1,2,x", &errResp)
	require.Equal(t, http.StatusBadRequest, code)
	require.NotEmpty(t, errResp.Error)
}

func TestGetUnknown(t *testing.T) {
	lAddr, _ := startServing(t)
	id := intcode.Hash([]byte("nothing"))
	var errResp struct{ Error string }
	code := doGet(t, lAddr, "/v1/programs/"+id.String(), &errResp)
	require.Equal(t, http.StatusNotFound, code)

	code = doGet(t, lAddr, "/v1/programs/not-an-id", &errResp)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRun(t *testing.T) {
	lAddr, _ := startServing(t)

	var resp RunResp
	code := doJSON(t, lAddr, "/v1/run", RunReq{Program: echo, Inputs: []int64{42}}, &resp)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.Value)
	require.EqualValues(t, 42, *resp.Value)
	require.Equal(t, []int64{42}, resp.Outputs)
	require.Equal(t, 4, resp.PC)

	// no input suspends the machine, which is not an error
	code = doJSON(t, lAddr, "/v1/run", RunReq{Program: echo}, &resp)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "waiting", resp.Status)
	require.Nil(t, resp.Value)
	require.Equal(t, 0, resp.PC)
}

func TestRunByID(t *testing.T) {
	lAddr, srv := startServing(t)
	ctx := testutil.Context(t)
	id, err := intcode.PostProgram(ctx, srv.store, []int64{104, 7, 99})
	require.NoError(t, err)

	var resp RunResp
	code := doJSON(t, lAddr, "/v1/run", RunReq{ID: &id}, &resp)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 7, *resp.Value)
}

func TestRunErrors(t *testing.T) {
	lAddr, _ := startServing(t)
	var errResp struct{ Error string }

	code := doJSON(t, lAddr, "/v1/run", RunReq{Program: "98"}, &errResp)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Contains(t, errResp.Error, "opcode")

	code = doJSON(t, lAddr, "/v1/run", RunReq{}, &errResp)
	require.Equal(t, http.StatusBadRequest, code)

	id := intcode.Hash([]byte("99"))
	code = doJSON(t, lAddr, "/v1/run", RunReq{Program: "99", ID: &id}, &errResp)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestAmplify(t *testing.T) {
	lAddr, srv := startServing(t)

	var best icpipe.Best
	code := doJSON(t, lAddr, "/v1/amplify", AmplifyReq{Program: feedback}, &best)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 139629729, best.Signal)
	require.ElementsMatch(t, []int64{5, 6, 7, 8, 9}, best.Phases)

	// the second search is served from the cache
	code = doJSON(t, lAddr, "/v1/amplify", AmplifyReq{Program: feedback}, &best)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 139629729, best.Signal)
	require.Equal(t, 1, srv.search.Len())

	var errResp struct{ Error string }
	code = doJSON(t, lAddr, "/v1/amplify", AmplifyReq{
		Program: feedback,
		Phases:  []int64{0, 1, 2, 3, 4, 5, 6, 7, 8},
	}, &errResp)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestListRuns(t *testing.T) {
	lAddr, _ := startServing(t)

	var resp RunResp
	require.Equal(t, http.StatusOK, doJSON(t, lAddr, "/v1/run", RunReq{Program: echo, Inputs: []int64{5}}, &resp))
	require.Equal(t, http.StatusOK, doJSON(t, lAddr, "/v1/run", RunReq{Program: "104,7,99"}, &resp))

	var runs struct{ Runs []icstore.Run }
	code := doGet(t, lAddr, "/v1/runs", &runs)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, runs.Runs, 2)
	require.EqualValues(t, 7, runs.Runs[0].Result)
	require.EqualValues(t, 5, runs.Runs[1].Result)

	id := intcode.ProgramID([]int64{3, 0, 4, 0, 99})
	code = doGet(t, lAddr, "/v1/runs?program="+id.String(), &runs)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, runs.Runs, 1)
	require.Equal(t, icstore.Words{5}, runs.Runs[0].Inputs)
}

func TestNoRecorder(t *testing.T) {
	ctx := testutil.Context(t)
	srv := New(nil, nil, DefaultConfig())
	lis := testutil.Listen(t)
	go srv.Serve(ctx, lis)
	t.Cleanup(func() { srv.Shutdown() })
	lAddr := lis.Addr()

	var resp RunResp
	code := doJSON(t, lAddr, "/v1/run", RunReq{Program: "104,7,99"}, &resp)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 7, *resp.Value)

	var errResp struct{ Error string }
	code = doGet(t, lAddr, "/v1/runs", &errResp)
	require.Equal(t, http.StatusNotFound, code)
}

func TestStepLimit(t *testing.T) {
	lAddr, _ := startServing(t)
	var errResp struct{ Error string }

	code := doJSON(t, lAddr, "/v1/run", RunReq{Program: "1105,1,0"}, &errResp)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Contains(t, errResp.Error, "step limit")

	code = doJSON(t, lAddr, "/v1/amplify", AmplifyReq{
		Program: "3,9,3,9,104,1,1105,1,4,0",
		Phases:  []int64{0, 1},
	}, &errResp)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Contains(t, errResp.Error, "step limit")
}

func TestRecorderNeedsStore(t *testing.T) {
	ctx := testutil.Context(t)
	db := testutil.NewDB(t)
	require.NoError(t, icstore.SetupDB(ctx, db))
	s := icstore.New(db, intcode.Hash, intcode.MaxProgramBytes)
	require.Panics(t, func() {
		New(nil, s, DefaultConfig())
	})
}

func mkURL(addr net.Addr, p string) string {
	return fmt.Sprintf("http://%s%s", addr.String(), p)
}

func startServing(t testing.TB) (net.Addr, *Server) {
	ctx := testutil.Context(t)
	db := testutil.NewDB(t)
	require.NoError(t, icstore.SetupDB(ctx, db))
	s := icstore.New(db, intcode.Hash, intcode.MaxProgramBytes)

	srv := New(s.Programs(), s, DefaultConfig())
	lis := testutil.Listen(t)
	go srv.Serve(ctx, lis)
	t.Cleanup(func() { srv.Shutdown() })
	return lis.Addr(), srv
}

func doJSON(t testing.TB, addr net.Addr, p string, req, resp any) int {
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return doPost(t, addr, p, "application/json", string(data), resp)
}

func doPost(t testing.TB, addr net.Addr, p, contentType, body string, resp any) int {
	res, err := http.Post(mkURL(addr, p), contentType, strings.NewReader(body))
	require.NoError(t, err)
	return decodeResp(t, res, resp)
}

func doGet(t testing.TB, addr net.Addr, p string, resp any) int {
	res, err := http.Get(mkURL(addr, p))
	require.NoError(t, err)
	return decodeResp(t, res, resp)
}

func decodeResp(t testing.TB, res *http.Response, resp any) int {
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	t.Logf("RESP: %q", data)
	require.NoError(t, json.NewDecoder(bytes.NewReader(data)).Decode(resp))
	return res.StatusCode
}
