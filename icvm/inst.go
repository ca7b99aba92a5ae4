package icvm

import (
	"fmt"
	"strings"
)

// I is a decoded instruction.
// Instructions are plain values; they do not refer back into the memory they were decoded from.
type I interface {
	isI()
	// Op is the opcode the instruction was decoded from.
	Op() Opcode
	fmt.Stringer
}

type baseI struct{}

func (baseI) isI() {}

type ArithOp uint8

const (
	Add ArithOp = iota
	Multiply
)

type JumpKind uint8

const (
	IfNotZero JumpKind = iota
	IfZero
)

type RelationKind uint8

const (
	LessThan RelationKind = iota
	Equal
)

type arithI struct {
	op        ArithOp
	a, b, dst Param
	baseI
}

func (ix arithI) Op() Opcode {
	if ix.op == Multiply {
		return OpMultiply
	}
	return OpAdd
}

func (ix arithI) String() string { return format(ix.Op(), ix.a, ix.b, ix.dst) }

type inputI struct {
	dst Param
	baseI
}

func (inputI) Op() Opcode { return OpInput }
func (ix inputI) String() string { return format(OpInput, ix.dst) }

type outputI struct {
	src Param
	baseI
}

func (outputI) Op() Opcode { return OpOutput }
func (ix outputI) String() string { return format(OpOutput, ix.src) }

type jumpI struct {
	kind         JumpKind
	cond, target Param
	baseI
}

func (ix jumpI) Op() Opcode {
	if ix.kind == IfZero {
		return OpJumpIfFalse
	}
	return OpJumpIfTrue
}

func (ix jumpI) String() string { return format(ix.Op(), ix.cond, ix.target) }

type relationI struct {
	kind      RelationKind
	a, b, dst Param
	baseI
}

func (ix relationI) Op() Opcode {
	if ix.kind == Equal {
		return OpEquals
	}
	return OpLessThan
}

func (ix relationI) String() string { return format(ix.Op(), ix.a, ix.b, ix.dst) }

type adjustBaseI struct {
	src Param
	baseI
}

func (adjustBaseI) Op() Opcode { return OpAdjustBase }
func (ix adjustBaseI) String() string { return format(OpAdjustBase, ix.src) }

type haltI struct{ baseI }

func (haltI) Op() Opcode { return OpHalt }
func (haltI) String() string { return OpHalt.String() }

func format(op Opcode, params ...Param) string {
	sb := strings.Builder{}
	sb.WriteString(op.String())
	for _, p := range params {
		sb.WriteString(" ")
		sb.WriteString(p.String())
	}
	return sb.String()
}

// Decode decodes the instruction at pc in prog.
// It returns the instruction and the number of words it occupies.
// prog is not modified or retained.
func Decode(prog []int64, pc int) (I, int, error) {
	mem := Memory{words: prog}
	return decode(&mem, pc)
}

func decode(mem *Memory, pc int) (I, int, error) {
	word := mem.Load(pc)
	op := Opcode(word % 100)
	info, ok := op.Info()
	if !ok {
		return nil, 0, ErrInvalidOpcode{PC: pc, Code: word % 100}
	}
	modes := word / 100
	var params [3]Param
	for n := 0; n < info.Params; n++ {
		mode := modes % 10
		modes /= 10
		switch Mode(mode) {
		case Position, Immediate, Relative:
		default:
			return nil, 0, ErrInvalidMode{PC: pc, Mode: mode}
		}
		params[n] = Param{Mode: Mode(mode), Value: mem.Load(pc + 1 + n)}
	}

	var ix I
	switch op {
	case OpAdd:
		ix = arithI{op: Add, a: params[0], b: params[1], dst: params[2]}
	case OpMultiply:
		ix = arithI{op: Multiply, a: params[0], b: params[1], dst: params[2]}
	case OpInput:
		ix = inputI{dst: params[0]}
	case OpOutput:
		ix = outputI{src: params[0]}
	case OpJumpIfTrue:
		ix = jumpI{kind: IfNotZero, cond: params[0], target: params[1]}
	case OpJumpIfFalse:
		ix = jumpI{kind: IfZero, cond: params[0], target: params[1]}
	case OpLessThan:
		ix = relationI{kind: LessThan, a: params[0], b: params[1], dst: params[2]}
	case OpEquals:
		ix = relationI{kind: Equal, a: params[0], b: params[1], dst: params[2]}
	case OpAdjustBase:
		ix = adjustBaseI{src: params[0]}
	case OpHalt:
		ix = haltI{}
	}
	return ix, info.Width(), nil
}
