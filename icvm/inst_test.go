package icvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		Prog  []int64
		PC    int
		I     I
		Width int
		Str   string
	}{
		{
			Prog:  []int64{1002, 4, 3, 4, 33},
			I:     arithI{op: Multiply, a: Param{Position, 4}, b: Param{Immediate, 3}, dst: Param{Position, 4}},
			Width: 4,
			Str:   "mul [4] 3 [4]",
		},
		{
			Prog:  []int64{1, 9, 10, 3},
			I:     arithI{op: Add, a: Param{Position, 9}, b: Param{Position, 10}, dst: Param{Position, 3}},
			Width: 4,
			Str:   "add [9] [10] [3]",
		},
		{
			Prog:  []int64{99, 204, -1},
			PC:    1,
			I:     outputI{src: Param{Relative, -1}},
			Width: 2,
			Str:   "out [rb-1]",
		},
		{
			Prog:  []int64{203, 5},
			I:     inputI{dst: Param{Relative, 5}},
			Width: 2,
			Str:   "in [rb+5]",
		},
		{
			Prog:  []int64{1105, 1, 9},
			I:     jumpI{kind: IfNotZero, cond: Param{Immediate, 1}, target: Param{Immediate, 9}},
			Width: 3,
			Str:   "jnz 1 9",
		},
		{
			Prog:  []int64{6, 1, 2},
			I:     jumpI{kind: IfZero, cond: Param{Position, 1}, target: Param{Position, 2}},
			Width: 3,
			Str:   "jz [1] [2]",
		},
		{
			Prog:  []int64{21107, -1, 8, 3},
			I:     relationI{kind: LessThan, a: Param{Immediate, -1}, b: Param{Immediate, 8}, dst: Param{Relative, 3}},
			Width: 4,
			Str:   "lt -1 8 [rb+3]",
		},
		{
			Prog:  []int64{8, 0, 0, 0},
			I:     relationI{kind: Equal, a: Param{Position, 0}, b: Param{Position, 0}, dst: Param{Position, 0}},
			Width: 4,
			Str:   "eq [0] [0] [0]",
		},
		{
			Prog:  []int64{109, 19},
			I:     adjustBaseI{src: Param{Immediate, 19}},
			Width: 2,
			Str:   "arb 19",
		},
		{
			Prog:  []int64{99},
			I:     haltI{},
			Width: 1,
			Str:   "halt",
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.Str, func(t *testing.T) {
			t.Parallel()
			ix, width, err := Decode(tc.Prog, tc.PC)
			require.NoError(t, err)
			require.Equal(t, tc.I, ix)
			require.Equal(t, tc.Width, width)
			require.Equal(t, tc.Str, ix.String())
			info, ok := ix.Op().Info()
			require.True(t, ok)
			require.Equal(t, tc.Width, info.Width())
		})
	}
}

func TestDecodePastEnd(t *testing.T) {
	// missing parameters read as zero
	ix, width, err := Decode([]int64{1101, 7}, 0)
	require.NoError(t, err)
	require.Equal(t, 4, width)
	require.Equal(t, arithI{op: Add, a: Param{Immediate, 7}, b: Param{Immediate, 0}, dst: Param{Position, 0}}, ix)

	_, _, err = Decode([]int64{99}, 1)
	require.Equal(t, ErrInvalidOpcode{PC: 1, Code: 0}, err)
}

func TestOpcodeString(t *testing.T) {
	require.Equal(t, "halt", OpHalt.String())
	require.Equal(t, "Opcode(42)", Opcode(42).String())
	require.False(t, Opcode(0).Valid())
	require.True(t, OpAdjustBase.Valid())
}
