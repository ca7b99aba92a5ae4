package icstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.brendoncarroll.net/tai64"

	"intcodeweb.org/intcode/internal/cadata"
)

type RunID int64

type Kind string

const (
	// KindRun is a single machine run
	KindRun Kind = "run"
	// KindAmplify is a phase search over a pipeline
	KindAmplify Kind = "amplify"
)

// Words is a list of machine words, stored as a JSON array.
type Words []int64

func (w Words) Value() (driver.Value, error) {
	if w == nil {
		w = Words{}
	}
	data, err := json.Marshal([]int64(w))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (w *Words) Scan(x interface{}) error {
	switch x := x.(type) {
	case string:
		return json.Unmarshal([]byte(x), (*[]int64)(w))
	case []byte:
		return json.Unmarshal(x, (*[]int64)(w))
	default:
		return fmt.Errorf("cannot scan type %T into Words", x)
	}
}

// Run is the record of running a program.
type Run struct {
	ID        RunID     `db:"id" json:"id"`
	ProgramID cadata.ID `db:"program_id" json:"program"`
	Kind      Kind      `db:"kind" json:"kind"`
	// Status is "completed" or "waiting" for runs, and "completed" for searches.
	Status string `db:"status" json:"status"`
	// Inputs are the pushed inputs for runs, and the phase set for searches.
	Inputs Words `db:"inputs" json:"inputs"`
	// Outputs are the machine outputs for runs, and the best phases for searches.
	Outputs Words `db:"outputs" json:"outputs"`
	Result  int64 `db:"result" json:"result"`

	// TAISec and TAINsec are a TAI64N timestamp of when the run was recorded.
	TAISec  int64 `db:"tai_sec" json:"tai_sec"`
	TAINsec int64 `db:"tai_nsec" json:"tai_nsec"`
}

type ErrRunNotFound struct {
	RunID
}

func (e ErrRunNotFound) Error() string {
	return fmt.Sprintf("run %d not found", e.RunID)
}

// Store holds programs and run records.
type Store struct {
	db    *sqlx.DB
	progs *Programs
}

func New(db *sqlx.DB, hf cadata.HashFunc, maxSize int) *Store {
	return &Store{
		db:    db,
		progs: NewPrograms(db, hf, maxSize),
	}
}

func (s *Store) Programs() *Programs {
	return s.progs
}

// RecordRun saves r, stamping it with the current time.
// The program must already be stored.
func (s *Store) RecordRun(ctx context.Context, r Run) (RunID, error) {
	ts := tai64.Now()
	r.TAISec, r.TAINsec = int64(ts.Seconds), int64(ts.Nanoseconds)
	var id RunID
	if err := s.db.GetContext(ctx, &id, `INSERT INTO runs
		(program_id, kind, status, inputs, outputs, result, tai_sec, tai_nsec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		r.ProgramID[:], r.Kind, r.Status, r.Inputs, r.Outputs, r.Result, r.TAISec, r.TAINsec,
	); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetRun(ctx context.Context, id RunID) (Run, error) {
	var r Run
	if err := s.db.GetContext(ctx, &r, `SELECT * FROM runs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRunNotFound{id}
		}
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first.
// If programID is not nil, only runs of that program are returned.
func (s *Store) ListRuns(ctx context.Context, programID *cadata.ID, limit int) ([]Run, error) {
	var ret []Run
	var err error
	if programID == nil {
		err = s.db.SelectContext(ctx, &ret, `SELECT * FROM runs ORDER BY id DESC LIMIT ?`, limit)
	} else {
		err = s.db.SelectContext(ctx, &ret, `SELECT * FROM runs WHERE program_id = ? ORDER BY id DESC LIMIT ?`, programID[:], limit)
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}
