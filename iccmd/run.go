package iccmd

import (
	"context"
	"fmt"
	"io"

	"go.brendoncarroll.net/star"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"intcodeweb.org/intcode"
	"intcodeweb.org/intcode/icpipe"
	"intcodeweb.org/intcode/icstore"
	"intcodeweb.org/intcode/icvm"
)

var run = star.Command{
	Metadata: star.Metadata{
		Short: "run a program until it halts or needs more input",
	},
	Flags: []star.IParam{DBParam, programParam, inputsParam, verboseParam},
	F: func(c star.Context) error {
		ctx, s, err := setup(c)
		if err != nil {
			return err
		}
		_, err = runProgram(ctx, s, c.StdOut, programParam.Load(c), inputsParam.Load(c))
		return err
	},
}

var amplify = star.Command{
	Metadata: star.Metadata{
		Short: "find the ordering of phases which produces the largest signal",
	},
	Flags: []star.IParam{DBParam, programParam, phasesParam, seedParam, cacheParam, verboseParam},
	F: func(c star.Context) error {
		ctx, s, err := setup(c)
		if err != nil {
			return err
		}
		search := icpipe.NewSearcher(cacheParam.Load(c))
		_, err = amplifyProgram(ctx, s, search, c.StdOut, programParam.Load(c), phasesParam.Load(c), seedParam.Load(c))
		return err
	},
}

var disasm = star.Command{
	Metadata: star.Metadata{
		Short: "print the instructions in a program",
	},
	Flags: []star.IParam{programParam},
	F: func(c star.Context) error {
		return icvm.WriteDisassembly(c.StdOut, programParam.Load(c))
	},
}

// runProgram stores prog, runs it with inputs, records the run and prints the outputs.
func runProgram(ctx context.Context, s *icstore.Store, w io.Writer, prog, inputs []int64) (icvm.Result, error) {
	id, err := intcode.PostProgram(ctx, s.Programs(), prog)
	if err != nil {
		return icvm.Result{}, err
	}
	m := icvm.New(prog)
	m.PushInput(inputs...)
	res, err := m.Run(ctx)
	if err != nil {
		return icvm.Result{}, err
	}
	outputs := m.Outputs()
	runID, err := s.RecordRun(ctx, icstore.Run{
		ProgramID: id,
		Kind:      icstore.KindRun,
		Status:    res.Status.String(),
		Inputs:    inputs,
		Outputs:   outputs,
		Result:    res.Value,
	})
	if err != nil {
		return icvm.Result{}, err
	}
	logctx.Debug(ctx, "recorded run", zap.Int64("run", int64(runID)))

	for _, x := range outputs {
		fmt.Fprintf(w, "%d\n", x)
	}
	if res.IsWaiting() {
		fmt.Fprintf(w, "STATUS: %v PC: %d\n", res.Status, m.PC())
	} else {
		fmt.Fprintf(w, "STATUS: %v VALUE: %d\n", res.Status, res.Value)
	}
	return res, nil
}

func amplifyProgram(ctx context.Context, s *icstore.Store, search *icpipe.Searcher, w io.Writer, prog, phases []int64, seed int64) (icpipe.Best, error) {
	id, err := intcode.PostProgram(ctx, s.Programs(), prog)
	if err != nil {
		return icpipe.Best{}, err
	}
	best, err := search.Search(ctx, prog, phases, seed)
	if err != nil {
		return icpipe.Best{}, err
	}
	if _, err := s.RecordRun(ctx, icstore.Run{
		ProgramID: id,
		Kind:      icstore.KindAmplify,
		Status:    icvm.Completed.String(),
		Inputs:    phases,
		Outputs:   best.Phases,
		Result:    best.Signal,
	}); err != nil {
		return icpipe.Best{}, err
	}
	fmt.Fprintf(w, "SIGNAL: %d\n", best.Signal)
	fmt.Fprintf(w, "PHASES: %s\n", icvm.Format(best.Phases))
	return best, nil
}
