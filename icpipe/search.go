package icpipe

import (
	"context"
	"slices"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"intcodeweb.org/intcode"
	"intcodeweb.org/intcode/icvm"
)

const DefaultCacheSize = 128

type searchKey struct {
	prog   intcode.CID
	phases string
	seed   int64
}

// Searcher runs MaxSignal, remembering recent results.
// It is safe to call from multiple goroutines; each search runs its machines sequentially.
type Searcher struct {
	mu        sync.Mutex
	cache     *simplelru.LRU[searchKey, Best]
	stepLimit uint64
}

// NewSearcher creates a Searcher which remembers up to cacheSize results.
// If cacheSize < 1, DefaultCacheSize is used.
func NewSearcher(cacheSize int) *Searcher {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	cache, err := simplelru.NewLRU[searchKey, Best](cacheSize, nil)
	if err != nil {
		panic(err)
	}
	return &Searcher{cache: cache}
}

// SetStepLimit bounds the instructions each machine in a search may execute.
// It must be called before the Searcher is shared.
func (s *Searcher) SetStepLimit(n uint64) {
	s.stepLimit = n
}

// Search returns the largest signal prog can produce with some ordering of phases.
func (s *Searcher) Search(ctx context.Context, prog []int64, phases []int64, seed int64) (Best, error) {
	key := searchKey{
		prog:   intcode.ProgramID(prog),
		phases: icvm.Format(phases),
		seed:   seed,
	}
	s.mu.Lock()
	best, ok := s.cache.Get(key)
	s.mu.Unlock()
	if ok {
		logctx.Debug(ctx, "search cache hit", zap.Stringer("program", key.prog))
		best.Phases = slices.Clone(best.Phases)
		return best, nil
	}

	proto := icvm.New(prog)
	proto.SetStepLimit(s.stepLimit)
	best, err := MaxSignal(ctx, proto, phases, seed)
	if err != nil {
		return Best{}, err
	}
	logctx.Info(ctx, "phase search complete",
		zap.Stringer("program", key.prog),
		zap.Int64("signal", best.Signal),
		zap.Int64s("phases", best.Phases),
	)
	s.mu.Lock()
	s.cache.Add(key, Best{Signal: best.Signal, Phases: slices.Clone(best.Phases)})
	s.mu.Unlock()
	return best, nil
}

// Len returns the number of cached results.
func (s *Searcher) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
