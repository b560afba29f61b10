package util

import (
	"os"

	"github.com/BurntSushi/rigidalign/mindist"
	"github.com/BurntSushi/rigidalign/rigid"
)

func TopologyRead(path string) *rigid.Topology {
	f := OpenFile(path)
	defer f.Close()

	top, err := rigid.ReadTopology(f)
	Assert(err, "Could not read topology '%s'", path)
	return top
}

func ConfigurationRead(path string) (rigid.Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return rigid.ReadConfiguration(f)
}

func ConfigurationWrite(path string, x rigid.Configuration) {
	f := CreateFile(path)
	defer f.Close()
	Assert(rigid.WriteConfiguration(f, x),
		"Could not write configuration '%s'", path)
}

// OptionsRead reads search options from the file named by the "options"
// flag, or returns the defaults if it is empty. The logger is set from the
// "verbose" flag.
func OptionsRead() mindist.Options {
	opts := mindist.DefaultOptions()
	if len(FlagOptions) > 0 {
		f := OpenFile(FlagOptions)
		defer f.Close()

		var err error
		opts, err = mindist.LoadOptions(f)
		Assert(err, "Could not read options '%s'", FlagOptions)
	}
	opts.Logger = Logger()
	return opts
}

func OpenFile(path string) *os.File {
	f, err := os.Open(path)
	Assert(err, "Could not open file '%s'", path)
	return f
}

func CreateFile(path string) *os.File {
	f, err := os.Create(path)
	Assert(err, "Could not create file '%s'", path)
	return f
}
