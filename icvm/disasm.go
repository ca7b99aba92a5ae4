package icvm

import (
	"fmt"
	"io"
	"strings"
)

// Line is one disassembled instruction, or a data word which does not decode.
type Line struct {
	Addr  int
	Words []int64
	// I is nil for data words
	I I
}

func (l Line) String() string {
	if l.I == nil {
		return fmt.Sprintf("%04d: .word %d", l.Addr, l.Words[0])
	}
	return fmt.Sprintf("%04d: %s", l.Addr, l.I)
}

// Disassemble decodes prog from start to end.
// Programs mix code and data, so words which do not decode are emitted one at a time as data.
func Disassemble(prog []int64) []Line {
	var ret []Line
	for pc := 0; pc < len(prog); {
		ix, width, err := Decode(prog, pc)
		if err != nil || pc+width > len(prog) {
			ret = append(ret, Line{Addr: pc, Words: prog[pc : pc+1]})
			pc++
			continue
		}
		ret = append(ret, Line{Addr: pc, Words: prog[pc : pc+width], I: ix})
		pc += width
	}
	return ret
}

// WriteDisassembly writes one line per instruction to w.
func WriteDisassembly(w io.Writer, prog []int64) error {
	sb := strings.Builder{}
	for _, l := range Disassemble(prog) {
		sb.WriteString(l.String())
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
