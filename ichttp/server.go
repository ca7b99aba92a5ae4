// package ichttp serves an HTTP API for storing and running programs.
package ichttp

import (
	"context"
	"errors"
	"net"

	"github.com/gofiber/fiber/v2"
	"go.brendoncarroll.net/exp/slices2"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"intcodeweb.org/intcode"
	"intcodeweb.org/intcode/icpipe"
	"intcodeweb.org/intcode/icstore"
	"intcodeweb.org/intcode/icvm"
	"intcodeweb.org/intcode/internal/cadata"
	"intcodeweb.org/intcode/internal/stores"
)

// Recorder keeps a history of runs.
type Recorder interface {
	RecordRun(ctx context.Context, r icstore.Run) (icstore.RunID, error)
	ListRuns(ctx context.Context, programID *cadata.ID, limit int) ([]icstore.Run, error)
}

type Config struct {
	// BodyLimit is the largest request body accepted, in bytes.
	BodyLimit int
	// CacheSize is the number of phase search results to remember.
	CacheSize int
	// MaxPhases limits the size of a phase set. Searches are factorial in it.
	MaxPhases int
	// ListLimit is the number of runs returned when the request does not ask for fewer.
	ListLimit int
	// MaxSteps is the number of instructions any one machine may execute in a request.
	MaxSteps uint64
}

func DefaultConfig() Config {
	return Config{
		BodyLimit: 2 * intcode.MaxProgramBytes,
		CacheSize: icpipe.DefaultCacheSize,
		MaxPhases: 8,
		ListLimit: 100,
		MaxSteps:  1 << 20,
	}
}

func Serve(ctx context.Context, l net.Listener, store intcode.Store, rec Recorder) error {
	return New(store, rec, DefaultConfig()).Serve(ctx, l)
}

type Server struct {
	store  intcode.Store
	rec    Recorder
	cfg    Config
	search *icpipe.Searcher
	app    *fiber.App
	bgCtx  context.Context
}

// New creates a Server which keeps programs in store.
// rec may be nil, in which case runs are not recorded.
// If store is nil, programs are kept in memory, and rec must also be nil: run records
// refer to programs, so rec must share a database with store.
func New(store intcode.Store, rec Recorder, cfg Config) *Server {
	if store == nil {
		if rec != nil {
			panic("ichttp: a Recorder needs a program store in the same database")
		}
		store = stores.NewMem(intcode.Hash, intcode.MaxProgramBytes)
	}
	s := &Server{
		store:  store,
		rec:    rec,
		cfg:    cfg,
		search: icpipe.NewSearcher(cfg.CacheSize),
		bgCtx:  context.Background(),
	}
	s.search.SetStepLimit(cfg.MaxSteps)
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          handleError,
	})
	v1 := app.Group("/v1")
	v1.Post("/programs", s.postProgram)
	v1.Get("/programs/:id", s.getProgram)
	v1.Get("/programs/:id/disasm", s.disasm)
	v1.Post("/run", s.run)
	v1.Post("/amplify", s.amplify)
	v1.Get("/runs", s.listRuns)
	s.app = app
	return s
}

func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.bgCtx = ctx
	logctx.Infof(ctx, "serving on %v", l.Addr())
	return s.app.Listener(l)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) postProgram(c *fiber.Ctx) error {
	prog, err := icvm.Parse(string(c.Body()))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	id, err := intcode.PostProgram(s.bgCtx, s.store, prog)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id})
}

func (s *Server) getProgram(c *fiber.Ctx) error {
	prog, _, err := s.loadParam(c)
	if err != nil {
		return err
	}
	return c.SendString(icvm.Format(prog))
}

func (s *Server) disasm(c *fiber.Ctx) error {
	prog, _, err := s.loadParam(c)
	if err != nil {
		return err
	}
	lines := slices2.Map(icvm.Disassemble(prog), func(l icvm.Line) string {
		return l.String()
	})
	return c.JSON(fiber.Map{"lines": lines})
}

type RunReq struct {
	// Program is program text. Either Program or ID must be set.
	Program string     `json:"program"`
	ID      *cadata.ID `json:"id"`
	Inputs  []int64    `json:"inputs"`
}

type RunResp struct {
	Status  string  `json:"status"`
	Value   *int64  `json:"value,omitempty"`
	Outputs []int64 `json:"outputs"`
	PC      int     `json:"pc"`
	Steps   uint64  `json:"steps"`
}

func (s *Server) run(c *fiber.Ctx) error {
	ctx := s.bgCtx
	var req RunReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	prog, id, err := s.loadReq(req.Program, req.ID)
	if err != nil {
		return err
	}
	m := icvm.New(prog)
	m.SetStepLimit(s.cfg.MaxSteps)
	m.PushInput(req.Inputs...)
	res, err := m.Run(ctx)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	resp := RunResp{
		Status:  res.Status.String(),
		Outputs: m.Outputs(),
		PC:      m.PC(),
		Steps:   m.Steps(),
	}
	if resp.Outputs == nil {
		resp.Outputs = []int64{}
	}
	if !res.IsWaiting() {
		resp.Value = &res.Value
	}
	if err := s.record(ctx, icstore.Run{
		ProgramID: id,
		Kind:      icstore.KindRun,
		Status:    resp.Status,
		Inputs:    req.Inputs,
		Outputs:   resp.Outputs,
		Result:    res.Value,
	}); err != nil {
		return err
	}
	return c.JSON(resp)
}

type AmplifyReq struct {
	Program string     `json:"program"`
	ID      *cadata.ID `json:"id"`
	// Phases defaults to 5 through 9.
	Phases []int64 `json:"phases"`
	Seed   int64   `json:"seed"`
}

func (s *Server) amplify(c *fiber.Ctx) error {
	ctx := s.bgCtx
	var req AmplifyReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if len(req.Phases) == 0 {
		req.Phases = []int64{5, 6, 7, 8, 9}
	}
	if len(req.Phases) > s.cfg.MaxPhases {
		return fiber.NewError(fiber.StatusBadRequest, "too many phases")
	}
	prog, id, err := s.loadReq(req.Program, req.ID)
	if err != nil {
		return err
	}
	best, err := s.search.Search(ctx, prog, req.Phases, req.Seed)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	if err := s.record(ctx, icstore.Run{
		ProgramID: id,
		Kind:      icstore.KindAmplify,
		Status:    icvm.Completed.String(),
		Inputs:    req.Phases,
		Outputs:   best.Phases,
		Result:    best.Signal,
	}); err != nil {
		return err
	}
	return c.JSON(best)
}

func (s *Server) listRuns(c *fiber.Ctx) error {
	if s.rec == nil {
		return fiber.NewError(fiber.StatusNotFound, "runs are not recorded")
	}
	limit := c.QueryInt("limit", s.cfg.ListLimit)
	if limit < 1 || limit > s.cfg.ListLimit {
		limit = s.cfg.ListLimit
	}
	var programID *cadata.ID
	if x := c.Query("program"); x != "" {
		id, err := cadata.ParseID(x)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		programID = &id
	}
	runs, err := s.rec.ListRuns(s.bgCtx, programID, limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []icstore.Run{}
	}
	return c.JSON(fiber.Map{"runs": runs})
}

func (s *Server) record(ctx context.Context, r icstore.Run) error {
	if s.rec == nil {
		return nil
	}
	runID, err := s.rec.RecordRun(ctx, r)
	if err != nil {
		return err
	}
	logctx.Debug(ctx, "recorded run", zap.Int64("run", int64(runID)), zap.String("kind", string(r.Kind)))
	return nil
}

func (s *Server) loadParam(c *fiber.Ctx) ([]int64, cadata.ID, error) {
	id, err := cadata.ParseID(c.Params("id"))
	if err != nil {
		return nil, cadata.ID{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return s.loadReq("", &id)
}

// loadReq returns the program from text or id.
// Program text is stored, so that runs of it can be recorded.
func (s *Server) loadReq(text string, id *cadata.ID) ([]int64, cadata.ID, error) {
	ctx := s.bgCtx
	switch {
	case text != "" && id != nil:
		return nil, cadata.ID{}, fiber.NewError(fiber.StatusBadRequest, "program and id are mutually exclusive")
	case text != "":
		prog, err := icvm.Parse(text)
		if err != nil {
			return nil, cadata.ID{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		cid, err := intcode.PostProgram(ctx, s.store, prog)
		if err != nil {
			return nil, cadata.ID{}, err
		}
		return prog, cid, nil
	case id != nil:
		prog, err := intcode.LoadProgram(ctx, s.store, *id)
		if err != nil {
			return nil, cadata.ID{}, err
		}
		return prog, *id, nil
	default:
		return nil, cadata.ID{}, fiber.NewError(fiber.StatusBadRequest, "program or id is required")
	}
}

func handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	switch {
	case errors.As(err, &ferr):
		code = ferr.Code
	case cadata.IsNotFound(err):
		code = fiber.StatusNotFound
	case errors.Is(err, cadata.ErrTooLarge):
		code = fiber.StatusRequestEntityTooLarge
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
