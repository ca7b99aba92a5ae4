// package iccmd implements the intcode command line tool.
package iccmd

import (
	"context"
	"net"
	"os"
	"strconv"

	"github.com/jmoiron/sqlx"
	"go.brendoncarroll.net/star"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"intcodeweb.org/intcode"
	"intcodeweb.org/intcode/icpipe"
	"intcodeweb.org/intcode/icstore"
	"intcodeweb.org/intcode/icvm"
)

func Root() star.Command {
	return root
}

var root = star.NewDir(star.Metadata{
	Short: "Intcode virtual machine",
}, map[star.Symbol]star.Command{
	"run":     run,
	"amplify": amplify,
	"disasm":  disasm,

	"post": post,
	"runs": runs,

	"serve":  serve,
	"status": status,
})

var status = star.Command{
	Metadata: star.Metadata{
		Short: "check that the database can be opened",
	},
	Flags: []star.IParam{DBParam},
	F: func(c star.Context) error {
		c.Printf("STATUS\n")
		db := DBParam.Load(c)
		if err := db.Ping(); err != nil {
			return err
		}
		return db.Close()
	},
}

var DBParam = star.Param[*sqlx.DB]{
	Name:    "db",
	Default: star.Ptr(":memory:"),
	Parse: func(x string) (*sqlx.DB, error) {
		db, err := icstore.OpenDB(x)
		if err != nil {
			return nil, err
		}
		if err := icstore.SetupDB(context.Background(), db); err != nil {
			return nil, err
		}
		return db, nil
	},
}

var ListenerParam = star.Param[net.Listener]{
	Name:    "l",
	Default: star.Ptr("127.0.0.1:6667"),
	Parse: func(x string) (net.Listener, error) {
		return net.Listen("tcp", x)
	},
}

// programParam reads a program from a file
var programParam = star.Param[[]int64]{
	Name:  "f",
	Parse: loadProgramFile,
}

var inputsParam = star.Param[[]int64]{
	Name:    "in",
	Default: star.Ptr(""),
	Parse:   icvm.ParseList,
}

var phasesParam = star.Param[[]int64]{
	Name:    "phases",
	Default: star.Ptr("5,6,7,8,9"),
	Parse:   icvm.ParseList,
}

var seedParam = star.Param[int64]{
	Name:    "seed",
	Default: star.Ptr("0"),
	Parse: func(x string) (int64, error) {
		return strconv.ParseInt(x, 10, 64)
	},
}

var cacheParam = star.Param[int]{
	Name:    "cache",
	Default: star.Ptr(strconv.Itoa(icpipe.DefaultCacheSize)),
	Parse:   strconv.Atoi,
}

var limitParam = star.Param[int]{
	Name:    "limit",
	Default: star.Ptr("20"),
	Parse:   strconv.Atoi,
}

var verboseParam = star.Param[bool]{
	Name:    "v",
	Default: star.Ptr("false"),
	Parse:   strconv.ParseBool,
}

func loadProgramFile(p string) ([]int64, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return icvm.Parse(string(data))
}

// setup returns a context carrying a logger, and the store for the -db flag.
func setup(c star.Context) (context.Context, *icstore.Store, error) {
	var l *zap.Logger
	var err error
	if verboseParam.Load(c) {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}
	ctx := logctx.NewContext(c.Context, l)
	db := DBParam.Load(c)
	return ctx, icstore.New(db, intcode.Hash, intcode.MaxProgramBytes), nil
}
