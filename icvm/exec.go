package icvm

// flow tells the run loop what to do after an instruction.
type flow uint8

const (
	// advance moves the pc past the instruction
	advance flow = iota
	// jump sets the pc to directive.to
	jump
	// suspend returns a Waiting result, leaving the pc on the instruction
	suspend
	halt
)

type directive struct {
	flow flow
	to   int
}

// step applies ix to the machine state.
func (m *Machine) step(ix I) (directive, error) {
	switch ix := ix.(type) {
	case arithI:
		return m.arith(ix)
	case relationI:
		return m.relation(ix)
	case jumpI:
		return m.jump(ix)
	case inputI:
		return m.input(ix)
	case outputI:
		return m.output(ix)
	case adjustBaseI:
		return m.adjustBase(ix)
	case haltI:
		return directive{flow: halt}, nil
	default:
		panic(ix)
	}
}

func (m *Machine) arith(ix arithI) (directive, error) {
	a, b, err := m.read2(ix.a, ix.b)
	if err != nil {
		return directive{}, err
	}
	var x int64
	switch ix.op {
	case Add:
		x = a + b
	case Multiply:
		x = a * b
	}
	return directive{flow: advance}, ix.dst.write(m, x)
}

func (m *Machine) relation(ix relationI) (directive, error) {
	a, b, err := m.read2(ix.a, ix.b)
	if err != nil {
		return directive{}, err
	}
	var x int64
	switch {
	case ix.kind == LessThan && a < b:
		x = 1
	case ix.kind == Equal && a == b:
		x = 1
	}
	return directive{flow: advance}, ix.dst.write(m, x)
}

func (m *Machine) jump(ix jumpI) (directive, error) {
	cond, target, err := m.read2(ix.cond, ix.target)
	if err != nil {
		return directive{}, err
	}
	if (ix.kind == IfNotZero) != (cond != 0) {
		return directive{flow: advance}, nil
	}
	if target < 0 || target > MaxAddress {
		return directive{}, ErrInvalidAddress{PC: m.pc, Addr: target}
	}
	return directive{flow: jump, to: int(target)}, nil
}

func (m *Machine) input(ix inputI) (directive, error) {
	if m.in.Len() == 0 {
		return directive{flow: suspend}, nil
	}
	// resolve the destination before consuming, so a bad write does not lose input.
	if _, err := ix.dst.writeAddr(m); err != nil {
		return directive{}, err
	}
	x, _ := m.in.PopFront()
	return directive{flow: advance}, ix.dst.write(m, x)
}

func (m *Machine) output(ix outputI) (directive, error) {
	x, err := ix.src.read(m)
	if err != nil {
		return directive{}, err
	}
	m.out.PushBack(x)
	m.last, m.hasLast = x, true
	return directive{flow: advance}, nil
}

func (m *Machine) adjustBase(ix adjustBaseI) (directive, error) {
	x, err := ix.src.read(m)
	if err != nil {
		return directive{}, err
	}
	m.base += x
	return directive{flow: advance}, nil
}

func (m *Machine) read2(p, q Param) (int64, int64, error) {
	a, err := p.read(m)
	if err != nil {
		return 0, 0, err
	}
	b, err := q.read(m)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
