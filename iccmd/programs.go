package iccmd

import (
	"context"
	"fmt"
	"io"

	"go.brendoncarroll.net/star"
	"golang.org/x/sync/errgroup"

	"intcodeweb.org/intcode"
	"intcodeweb.org/intcode/ichttp"
	"intcodeweb.org/intcode/icstore"
	"intcodeweb.org/intcode/icvm"
	"intcodeweb.org/intcode/internal/cadata"
)

var post = star.Command{
	Metadata: star.Metadata{
		Short: "store a program and print its ID",
		Tags:  []string{"programs"},
	},
	Flags: []star.IParam{DBParam, programParam, verboseParam},
	F: func(c star.Context) error {
		ctx, s, err := setup(c)
		if err != nil {
			return err
		}
		id, err := intcode.PostProgram(ctx, s.Programs(), programParam.Load(c))
		if err != nil {
			return err
		}
		c.Printf("%v\n", id)
		return nil
	},
}

var runs = star.Command{
	Metadata: star.Metadata{
		Short: "list recorded runs, newest first",
		Tags:  []string{"programs"},
	},
	Flags: []star.IParam{DBParam, programIDParam, limitParam, verboseParam},
	F: func(c star.Context) error {
		ctx, s, err := setup(c)
		if err != nil {
			return err
		}
		var programID *cadata.ID
		if id := programIDParam.Load(c); !id.IsZero() {
			programID = &id
		}
		return listRuns(ctx, s, c.StdOut, programID, limitParam.Load(c))
	},
}

var serve = star.Command{
	Metadata: star.Metadata{
		Short: "serve the HTTP API",
	},
	Flags: []star.IParam{DBParam, ListenerParam, cacheParam, verboseParam},
	F: func(c star.Context) error {
		ctx, s, err := setup(c)
		if err != nil {
			return err
		}
		lis := ListenerParam.Load(c)
		cfg := ichttp.DefaultConfig()
		cfg.CacheSize = cacheParam.Load(c)
		srv := ichttp.New(s.Programs(), s, cfg)

		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error { return srv.Serve(ctx, lis) })
		eg.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown()
		})
		return eg.Wait()
	},
}

// programIDParam selects a stored program. The empty string selects none.
var programIDParam = star.Param[cadata.ID]{
	Name:    "program",
	Default: star.Ptr(""),
	Parse: func(x string) (cadata.ID, error) {
		if x == "" {
			return cadata.ID{}, nil
		}
		return cadata.ParseID(x)
	},
}

func listRuns(ctx context.Context, s *icstore.Store, w io.Writer, programID *cadata.ID, limit int) error {
	rs, err := s.ListRuns(ctx, programID, limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%-6s %-8s %-10s %-12s %-44s %s\n", "ID", "KIND", "STATUS", "RESULT", "PROGRAM", "INPUTS")
	for _, r := range rs {
		fmt.Fprintf(w, "%-6d %-8s %-10s %-12d %-44v %s\n", r.ID, r.Kind, r.Status, r.Result, r.ProgramID, icvm.Format(r.Inputs))
	}
	return nil
}
