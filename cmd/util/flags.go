package util

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/rigidalign/mindist"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	FlagCpu = runtime.NumCPU()

	FlagVerbose = false

	flagBox = "10,10,10"
	FlagBox mindist.Box

	FlagOptions = ""

	FlagSeed int64 = 0
)

func init() {
	log.SetFlags(0)
}

type commonFlag struct {
	set, init func()
	use       bool
}

var commonFlags = map[string]*commonFlag{
	"cpu": {
		set: func() {
			flag.IntVar(&FlagCpu, "cpu", FlagCpu,
				"The max number of CPUs to use.")
		},
		init: func() {
			runtime.GOMAXPROCS(FlagCpu)
		},
	},
	"verbose": {
		set: func() {
			flag.BoolVar(&FlagVerbose, "verbose", FlagVerbose,
				"When set, progress and search details are printed to "+
					"stderr.")
		},
	},
	"box": {
		set: func() {
			flag.StringVar(&flagBox, "box", flagBox,
				"The lengths of the periodic box, as 'x,y,z'.")
		},
		init: func() {
			FlagBox = ParseBox(flagBox)
		},
	},
	"options": {
		set: func() {
			flag.StringVar(&FlagOptions, "options", FlagOptions,
				"A YAML file with search options. When empty, the\n"+
					"defaults are used.")
		},
	},
	"seed": {
		set: func() {
			flag.Int64Var(&FlagSeed, "seed", FlagSeed,
				"The seed of the random number generator. When 0, the\n"+
					"current time is used.")
		},
	},
}

func FlagUse(names ...string) {
	for _, name := range names {
		commonFlags[name].use = true
	}
}

// Usage just calls `flag.Usage`. It's included here to avoid
// an extra import to `flag` just to call Usage.
func Usage() {
	flag.Usage()
}

// Arg just calls `flag.Arg`. It's included here to avoid
// an extra import to `flag` just to call Arg.
func Arg(i int) string {
	return flag.Arg(i)
}

// NArg just calls `flag.NArg`. It's included here to avoid
// an extra import to `flag` just to call NArg.
func NArg() int {
	return flag.NArg()
}

func FlagParse(positional string, desc string) {
	for _, fl := range commonFlags {
		if fl.use {
			fl.set()
		}
	}

	flag.Usage = func() {
		log.Printf("Usage: %s [flags] %s\n\n",
			path.Base(os.Args[0]), positional)
		if len(desc) > 0 {
			log.Printf("%s\n", desc)
		}
		flag.VisitAll(func(fl *flag.Flag) {
			var def string
			if len(fl.DefValue) > 0 {
				def = fmt.Sprintf(" (default: %s)", fl.DefValue)
			}

			usage := strings.Replace(fl.Usage, "\n", "\n    ", -1)
			log.Printf("-%s%s\n", fl.Name, def)
			log.Printf("    %s\n", usage)
		})
		os.Exit(1)
	}
	flag.Parse()

	for _, fl := range commonFlags {
		if fl.use && fl.init != nil {
			fl.init()
		}
	}
}

// ParseBox parses box lengths written as 'x,y,z', or as a single length for
// a cubic box.
func ParseBox(s string) mindist.Box {
	fields := strings.Split(s, ",")
	if len(fields) == 1 {
		fields = []string{fields[0], fields[0], fields[0]}
	}
	if len(fields) != 3 {
		Fatalf("Box '%s' must have 1 or 3 lengths.", s)
	}
	var lengths mgl64.Vec3
	for i, f := range fields {
		l, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		Assert(err, "Could not parse box length '%s'", f)
		lengths[i] = l
	}
	box, err := mindist.NewBox(lengths)
	Assert(err, "Invalid box '%s'", s)
	return box
}

// Logger returns a debug logger on stderr when the "verbose" flag is set,
// and nil otherwise.
func Logger() *slog.Logger {
	if !FlagVerbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
