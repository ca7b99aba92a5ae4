package icvm

import "fmt"

// Mode is a parameter addressing mode
type Mode uint8

const (
	// Position parameters hold the address of their value
	Position Mode = 0
	// Immediate parameters hold their value
	Immediate Mode = 1
	// Relative parameters hold an offset from the relative base
	Relative Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Param is a decoded operand.
type Param struct {
	Mode  Mode
	Value int64
}

func (p Param) String() string {
	switch p.Mode {
	case Immediate:
		return fmt.Sprint(p.Value)
	case Relative:
		if p.Value < 0 {
			return fmt.Sprintf("[rb%d]", p.Value)
		}
		return fmt.Sprintf("[rb+%d]", p.Value)
	default:
		return fmt.Sprintf("[%d]", p.Value)
	}
}

// addr resolves p to an absolute address.
func (p Param) addr(m *Machine) (int64, error) {
	var a int64
	switch p.Mode {
	case Position:
		a = p.Value
	case Relative:
		a = m.base + p.Value
	default:
		return 0, ErrInvalidWrite{PC: m.pc, Param: p}
	}
	if a < 0 {
		return 0, ErrInvalidAddress{PC: m.pc, Addr: a}
	}
	return a, nil
}

// writeAddr is addr, limited to addresses memory may grow to.
func (p Param) writeAddr(m *Machine) (int, error) {
	a, err := p.addr(m)
	if err != nil {
		return 0, err
	}
	if a > MaxAddress {
		return 0, ErrInvalidAddress{PC: m.pc, Addr: a}
	}
	return int(a), nil
}

func (p Param) read(m *Machine) (int64, error) {
	if p.Mode == Immediate {
		return p.Value, nil
	}
	a, err := p.addr(m)
	if err != nil {
		return 0, err
	}
	if a >= int64(m.mem.Len()) {
		return 0, nil
	}
	return m.mem.Load(int(a)), nil
}

func (p Param) write(m *Machine, x int64) error {
	a, err := p.writeAddr(m)
	if err != nil {
		return err
	}
	m.mem.Store(a, x)
	return nil
}
