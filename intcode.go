package intcode

import (
	"context"

	"lukechampine.com/blake3"

	"intcodeweb.org/intcode/icvm"
	"intcodeweb.org/intcode/internal/cadata"
)

const (
	// MaxProgramBytes is the largest program text accepted by stores.
	MaxProgramBytes = 1 << 20
)

type (
	// CID is a Content ID for a program.
	CID = cadata.ID

	Store  = cadata.Store
	Getter = cadata.Getter
	Poster = cadata.Poster
)

// Hash calculates the content ID of x.
func Hash(x []byte) (ret cadata.ID) {
	h := blake3.New(32, nil)
	h.Write(x)
	h.Sum(ret[:0])
	return ret
}

// ProgramID returns the ID a program will be stored under.
// Programs are identified by their canonical text, so formatting differences in the
// source text do not change the ID.
func ProgramID(prog []int64) CID {
	return Hash([]byte(icvm.Format(prog)))
}

// PostProgram stores the canonical text of prog in s.
func PostProgram(ctx context.Context, s Poster, prog []int64) (CID, error) {
	return s.Post(ctx, []byte(icvm.Format(prog)))
}

// LoadProgram retrieves and parses the program stored under id.
func LoadProgram(ctx context.Context, s Getter, id CID) ([]int64, error) {
	data, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cadata.Check(Hash, id, data); err != nil {
		return nil, err
	}
	return icvm.Parse(string(data))
}
