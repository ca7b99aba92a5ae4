package icvm

import "fmt"

// Opcode is the low two decimal digits of an instruction word.
type Opcode int64

const (
	OpAdd         Opcode = 1
	OpMultiply    Opcode = 2
	OpInput       Opcode = 3
	OpOutput      Opcode = 4
	OpJumpIfTrue  Opcode = 5
	OpJumpIfFalse Opcode = 6
	OpLessThan    Opcode = 7
	OpEquals      Opcode = 8
	OpAdjustBase  Opcode = 9
	OpHalt        Opcode = 99
)

// Info is information about an Opcode
type Info struct {
	Name string `json:"name"`
	// Params is the number of parameters following the opcode word.
	Params int `json:"params"`
}

// Width is the number of words occupied by an instruction, including the opcode word.
func (i Info) Width() int {
	return 1 + i.Params
}

// Info returns information about op, and false if op is not defined.
func (op Opcode) Info() (Info, bool) {
	info, ok := infos[op]
	return info, ok
}

func (op Opcode) Valid() bool {
	_, ok := infos[op]
	return ok
}

func (op Opcode) String() string {
	if info, ok := infos[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("Opcode(%d)", int64(op))
}

var infos = map[Opcode]Info{
	OpAdd:         {"add", 3},
	OpMultiply:    {"mul", 3},
	OpInput:       {"in", 1},
	OpOutput:      {"out", 1},
	OpJumpIfTrue:  {"jnz", 2},
	OpJumpIfFalse: {"jz", 2},
	OpLessThan:    {"lt", 3},
	OpEquals:      {"eq", 3},
	OpAdjustBase:  {"arb", 1},
	OpHalt:        {"halt", 0},
}
