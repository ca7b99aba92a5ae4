// package icpipe wires Intcode machines into pipelines, and searches for the phase settings
// which produce the largest signal.
package icpipe

import (
	"context"
	"errors"
	"fmt"

	"intcodeweb.org/intcode/icvm"
)

var ErrEmptyPipeline = errors.New("icpipe: pipeline has no machines")

// ErrNoSignal is returned when a machine suspends without producing a value to pass on.
type ErrNoSignal struct {
	Machine int
}

func (e ErrNoSignal) Error() string {
	return fmt.Sprintf("icpipe: machine %d is waiting but produced no signal", e.Machine)
}

// Pipeline is a ring of machines, each feeding its output to the next.
// The output of the last machine is fed back to the first.
type Pipeline struct {
	machines []*icvm.Machine
}

// NewPipeline clones proto once per phase, and queues the phase as that machine's first input.
// proto is not modified.
func NewPipeline(proto *icvm.Machine, phases []int64) *Pipeline {
	ms := make([]*icvm.Machine, len(phases))
	for i, phase := range phases {
		ms[i] = proto.Clone()
		ms[i].PushInput(phase)
	}
	return &Pipeline{machines: ms}
}

func (p *Pipeline) Len() int {
	return len(p.machines)
}

// Machine returns the i-th machine.
func (p *Pipeline) Machine(i int) *icvm.Machine {
	return p.machines[i]
}

// Run passes seed into the first machine, and then round robins through the machines,
// handing each machine's signal to the next, until the last machine halts.
// The last machine's final output is returned.
func (p *Pipeline) Run(ctx context.Context, seed int64) (int64, error) {
	if len(p.machines) == 0 {
		return 0, ErrEmptyPipeline
	}
	signal := seed
	for i := 0; ; {
		m := p.machines[i]
		m.PushInput(signal)
		res, err := m.Run(ctx)
		if err != nil {
			return 0, fmt.Errorf("icpipe: machine %d: %w", i, err)
		}
		if res.IsWaiting() {
			x, ok := m.PopOutput()
			if !ok {
				return 0, ErrNoSignal{Machine: i}
			}
			signal = x
		} else {
			signal = res.Value
			if i == len(p.machines)-1 {
				return signal, nil
			}
		}
		i = (i + 1) % len(p.machines)
	}
}

// Best is the result of a phase search.
type Best struct {
	Signal int64   `json:"signal"`
	Phases []int64 `json:"phases"`
}

// MaxSignal runs a fresh pipeline for every ordering of phases, and returns the largest signal.
// When several orderings tie, the first one found is returned.
func MaxSignal(ctx context.Context, proto *icvm.Machine, phases []int64, seed int64) (Best, error) {
	var best Best
	found := false
	perms := NewPermuter(phases)
	for perms.Next() {
		perm := perms.Perm()
		signal, err := NewPipeline(proto, perm).Run(ctx, seed)
		if err != nil {
			return Best{}, fmt.Errorf("phases %v: %w", perm, err)
		}
		if !found || signal > best.Signal {
			best = Best{Signal: signal, Phases: perm}
			found = true
		}
	}
	return best, nil
}
