package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path"
	"time"

	"github.com/BurntSushi/rigidalign/cmd/util"
	"github.com/BurntSushi/rigidalign/mindist"
)

var (
	flagMatch   = false
	flagAligned = ""
)

func init() {
	flag.BoolVar(&flagMatch, "match", flagMatch,
		"When set, print whether each candidate is the same structure as\n"+
			"the reference instead of the distance between them.")
	flag.StringVar(&flagAligned, "aligned", flagAligned,
		"When set, the aligned copy of each candidate is written to this\n"+
			"directory.")

	util.FlagUse("cpu", "verbose", "box", "options", "seed")
	util.FlagParse("topology reference candidate ...",
		"Compares a reference configuration of rigid bodies with each\n"+
			"candidate configuration.")
	util.AssertLeastNArg(3)
}

func main() {
	top := util.TopologyRead(util.Arg(0))
	ref, err := util.ConfigurationRead(util.Arg(1))
	util.Assert(err, "Could not read reference configuration '%s'", util.Arg(1))
	util.Assert(top.Check(ref),
		"Reference configuration '%s' does not fit the topology", util.Arg(1))

	var candidates []string
	for _, arg := range flag.Args()[2:] {
		if arg == "-" {
			candidates = append(candidates, util.ReadLines(os.Stdin)...)
		} else {
			candidates = append(candidates, arg)
		}
	}

	opts := util.OptionsRead()
	var compare comparer
	if flagMatch {
		em, err := mindist.NewExactMatch(util.FlagBox, top, opts)
		util.Assert(err, "Could not set up exact matching")
		compare = matcher(ref, em)
	} else {
		seed := util.FlagSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		util.Verbosef("Using random seed %d.", seed)
		mp, err := mindist.NewMinPermDist(util.FlagBox, top, opts,
			rand.New(rand.NewSource(seed)))
		util.Assert(err, "Could not set up minimization")
		compare = minimizer(ref, mp)
	}

	p := newWorkers(compare, max(1, util.FlagCpu))
	results := make([]result, len(candidates))
	collected := make(chan struct{})
	progress := util.NewProgress(len(candidates))
	go func() {
		for r := range p.results {
			results[r.index] = r
			progress.JobDone(r.err)
		}
		collected <- struct{}{}
	}()
	for i, cand := range candidates {
		p.enqueue(job{index: i, path: cand})
	}
	p.done()
	<-collected
	failed := progress.Close()

	for _, r := range results {
		if r.err != nil {
			continue
		}
		if flagMatch {
			fmt.Printf("%s\t%v\n", r.path, r.match)
		} else {
			fmt.Printf("%s\t%.12f\n", r.path, r.dist)
		}
		if len(flagAligned) > 0 && r.aligned != nil {
			util.ConfigurationWrite(
				path.Join(flagAligned, path.Base(r.path)), r.aligned)
		}
	}
	if failed > 0 {
		util.Fatalf("%d of %d comparisons failed.", failed, len(candidates))
	}
}
