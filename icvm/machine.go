// package icvm implements the Intcode virtual machine.
//
// A Machine owns a growable memory, a program counter, a relative base and two FIFO
// queues of words.  Run executes instructions until the program halts or needs input
// that has not been pushed yet.  A suspended Machine resumes at the same instruction
// on the next call to Run.
package icvm

import (
	"context"
	"fmt"

	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"intcodeweb.org/intcode/internal/ringbuf"
)

// State is the lifecycle state of a Machine.
type State uint8

const (
	StateRunning State = iota
	StateWaiting
	StateHalted
	// StateFaulted machines have returned an error from Run, and will return it again.
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateHalted:
		return "halted"
	case StateFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Status is the outcome of a call to Run.
type Status uint8

const (
	// Completed means the machine executed a halt instruction.
	Completed Status = iota + 1
	// Waiting means the machine needs input, and its State is StateWaiting.
	Waiting
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Waiting:
		return "waiting"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Result is returned by Run.
type Result struct {
	Status Status
	// Value is the most recent output. It is only set when Status is Completed.
	Value int64
}

// IsWaiting is true if Run stopped for input.
func (r Result) IsWaiting() bool {
	return r.Status == Waiting
}

type Machine struct {
	mem  Memory
	pc   int
	base int64

	in, out ringbuf.RingBuf[int64]
	last    int64
	hasLast bool

	state    State
	err      error
	steps    uint64
	maxSteps uint64
}

// New creates a Machine which will execute prog from address 0.
// prog is copied.
func New(prog []int64) *Machine {
	return &Machine{mem: NewMemory(prog)}
}

// NewFromText parses program text and creates a Machine for it.
func NewFromText(text string) (*Machine, error) {
	prog, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return New(prog), nil
}

// NewWithInput is NewFromText, with x already pushed as input.
func NewWithInput(text string, x int64) (*Machine, error) {
	m, err := NewFromText(text)
	if err != nil {
		return nil, err
	}
	m.PushInput(x)
	return m, nil
}

// Clone returns a Machine with an independent copy of all of m's state.
func (m *Machine) Clone() *Machine {
	return &Machine{
		mem:  m.mem.Clone(),
		pc:   m.pc,
		base: m.base,

		in:      m.in.Clone(),
		out:     m.out.Clone(),
		last:    m.last,
		hasLast: m.hasLast,

		state:    m.state,
		err:      m.err,
		steps:    m.steps,
		maxSteps: m.maxSteps,
	}
}

// PushInput appends xs to the input queue.
func (m *Machine) PushInput(xs ...int64) {
	for _, x := range xs {
		m.in.PushBack(x)
	}
}

// PopOutput removes the oldest value from the output queue.
func (m *Machine) PopOutput() (int64, bool) {
	return m.out.PopFront()
}

// Outputs returns the values in the output queue without removing them.
func (m *Machine) Outputs() []int64 {
	return m.out.Slice()
}

// Pending returns the number of inputs which have been pushed but not consumed.
func (m *Machine) Pending() int {
	return m.in.Len()
}

func (m *Machine) PC() int {
	return m.pc
}

func (m *Machine) RelativeBase() int64 {
	return m.base
}

func (m *Machine) State() State {
	return m.state
}

// Err returns the error which faulted the machine, if any.
func (m *Machine) Err() error {
	return m.err
}

// Steps returns the number of instructions executed.
func (m *Machine) Steps() uint64 {
	return m.steps
}

// SetStepLimit makes the machine fault with ErrStepLimit once it has executed n
// instructions in total.  0 means no limit.  Clones inherit the limit.
func (m *Machine) SetStepLimit(n uint64) {
	m.maxSteps = n
}

// Peek reads memory at addr.
func (m *Machine) Peek(addr int) int64 {
	return m.mem.Load(addr)
}

// Poke writes memory at addr, growing it if necessary.
func (m *Machine) Poke(addr int, x int64) error {
	if addr < 0 || addr > MaxAddress {
		return ErrInvalidAddress{PC: m.pc, Addr: int64(addr)}
	}
	m.mem.Store(addr, x)
	return nil
}

// Memory returns a copy of the machine's memory.
func (m *Machine) Memory() []int64 {
	return m.mem.Slice()
}

// Run executes instructions until the machine halts or waits for input.
//
// When the input queue is empty at an input instruction Run returns a Result with
// Status Waiting, and the pc is left on that instruction.
// Push more input and call Run again to resume.
//
// Errors are fatal: the machine moves to StateFaulted and every later call returns the
// same error.
func (m *Machine) Run(ctx context.Context) (Result, error) {
	switch m.state {
	case StateHalted:
		return Result{}, ErrHalted
	case StateFaulted:
		return Result{}, m.err
	}
	m.state = StateRunning
	for {
		if m.maxSteps > 0 && m.steps >= m.maxSteps {
			return m.fail(ctx, ErrStepLimit{PC: m.pc, Steps: m.steps})
		}
		ix, width, err := decode(&m.mem, m.pc)
		if err != nil {
			return m.fail(ctx, err)
		}
		d, err := m.step(ix)
		if err != nil {
			return m.fail(ctx, err)
		}
		switch d.flow {
		case advance:
			m.pc += width
		case jump:
			m.pc = d.to
		case suspend:
			m.state = StateWaiting
			logctx.Debug(ctx, "machine waiting for input", zap.Int("pc", m.pc), zap.Uint64("steps", m.steps))
			return Result{Status: Waiting}, nil
		case halt:
			if !m.hasLast {
				return m.fail(ctx, ErrHaltWithoutOutput{PC: m.pc})
			}
			m.steps++
			m.state = StateHalted
			logctx.Debug(ctx, "machine halted", zap.Int("pc", m.pc), zap.Uint64("steps", m.steps), zap.Int64("value", m.last))
			return Result{Status: Completed, Value: m.last}, nil
		}
		m.steps++
	}
}

// RunToHalt runs the machine and returns the last output.
// It returns ErrWaiting if the machine needs more input than has been pushed.
func (m *Machine) RunToHalt(ctx context.Context) (int64, error) {
	res, err := m.Run(ctx)
	if err != nil {
		return 0, err
	}
	if res.IsWaiting() {
		return 0, ErrWaiting
	}
	return res.Value, nil
}

func (m *Machine) fail(ctx context.Context, err error) (Result, error) {
	m.state = StateFaulted
	m.err = err
	logctx.Debug(ctx, "machine faulted", zap.Int("pc", m.pc), zap.Error(err))
	return Result{}, err
}
