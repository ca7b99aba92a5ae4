package icpipe

import (
	"slices"

	"golang.org/x/exp/constraints"
)

// Permuter produces every ordering of a set of values, using the iterative form of Heap's algorithm.
//
//	p := NewPermuter(xs)
//	for p.Next() {
//		use(p.Perm())
//	}
type Permuter[T any] struct {
	xs []T
	// c[i] is the loop counter the recursive algorithm would hold at depth i.
	c       []int
	i       int
	started bool
}

// NewPermuter returns a Permuter over a copy of xs.
func NewPermuter[T any](xs []T) *Permuter[T] {
	return &Permuter[T]{
		xs: slices.Clone(xs),
		c:  make([]int, len(xs)),
	}
}

// Next advances to the next arrangement, returning false when there are none left.
// The first arrangement is the input order.
func (p *Permuter[T]) Next() bool {
	if !p.started {
		p.started = true
		return true
	}
	for p.i < len(p.xs) {
		if p.c[p.i] < p.i {
			if p.i%2 == 0 {
				p.swap(0, p.i)
			} else {
				p.swap(p.c[p.i], p.i)
			}
			p.c[p.i]++
			p.i = 0
			return true
		}
		p.c[p.i] = 0
		p.i++
	}
	return false
}

// Perm returns a copy of the current arrangement.
func (p *Permuter[T]) Perm() []T {
	return slices.Clone(p.xs)
}

func (p *Permuter[T]) swap(a, b int) {
	p.xs[a], p.xs[b] = p.xs[b], p.xs[a]
}

// Permutations returns all len(xs)! orderings of xs.
func Permutations[T any](xs []T) [][]T {
	ret := make([][]T, 0, Factorial(len(xs)))
	p := NewPermuter(xs)
	for p.Next() {
		ret = append(ret, p.Perm())
	}
	return ret
}

// Factorial returns n!, or 1 if n < 1.
func Factorial[N constraints.Integer](n N) N {
	ret := N(1)
	for i := N(2); i <= n; i++ {
		ret *= i
	}
	return ret
}
