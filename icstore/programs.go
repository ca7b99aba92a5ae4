package icstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"intcodeweb.org/intcode/internal/cadata"
	"intcodeweb.org/intcode/internal/dbutil"
)

var (
	_ cadata.Store  = &Programs{}
	_ cadata.Lister = &Programs{}
)

// Programs is a content addressed store of program text.
type Programs struct {
	db      *sqlx.DB
	hf      cadata.HashFunc
	maxSize int
}

func NewPrograms(db *sqlx.DB, hf cadata.HashFunc, maxSize int) *Programs {
	return &Programs{db: db, hf: hf, maxSize: maxSize}
}

func (s *Programs) Post(ctx context.Context, data []byte) (cadata.ID, error) {
	if len(data) > s.maxSize {
		return cadata.ID{}, cadata.ErrTooLarge
	}
	id := s.hf(data)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO programs (id, data)
		VALUES (?, ?) ON CONFLICT DO NOTHING`, id[:], data); err != nil {
		return cadata.ID{}, err
	}
	return id, nil
}

func (s *Programs) Get(ctx context.Context, id cadata.ID) ([]byte, error) {
	var data []byte
	if err := s.db.GetContext(ctx, &data, `SELECT data FROM programs WHERE id = ?`, id[:]); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = cadata.ErrNotFound{Key: id}
		}
		return nil, err
	}
	return data, nil
}

func (s *Programs) Exists(ctx context.Context, id cadata.ID) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(
		SELECT 1 FROM programs WHERE id = ?
	)`, id[:]); err != nil {
		return false, err
	}
	return exists, nil
}

// Delete removes a program and every run recorded against it.
func (s *Programs) Delete(ctx context.Context, id cadata.ID) error {
	return dbutil.DoTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE program_id = ?`, id[:]); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, id[:])
		return err
	})
}

// List fills ids with program IDs in order, starting from the lower bound of span.
func (s *Programs) List(ctx context.Context, span cadata.Span, ids []cadata.ID) (int, error) {
	begin := cadata.BeginFromSpan(span)
	var rows []cadata.ID
	if err := s.db.SelectContext(ctx, &rows, `SELECT id FROM programs
		WHERE id >= ?
		ORDER BY id
		LIMIT ?
	`, begin[:], len(ids)); err != nil {
		return 0, err
	}
	return copy(ids, rows), nil
}

func (s *Programs) Count(ctx context.Context) (int64, error) {
	var ret int64
	err := s.db.GetContext(ctx, &ret, `SELECT count(*) FROM programs`)
	return ret, err
}

func (s *Programs) MaxSize() int {
	return s.maxSize
}
