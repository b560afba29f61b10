package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/BurntSushi/rigidalign/cmd/util"
	"github.com/BurntSushi/rigidalign/mindist"
	"github.com/BurntSushi/rigidalign/rigid"
)

type job struct {
	index int
	path  string
}

type result struct {
	job
	dist    float64
	match   bool
	aligned rigid.Configuration
	err     error
}

type pool struct {
	wg      *sync.WaitGroup
	jobs    chan job
	results chan result
}

// comparer compares the reference configuration with a candidate.
type comparer func(candidate rigid.Configuration) result

func minimizer(ref rigid.Configuration, mp *mindist.MinPermDist) comparer {
	return func(cand rigid.Configuration) result {
		res, err := mp.Minimize(context.Background(), ref, cand)
		return result{dist: res.Dist, aligned: res.B, err: err}
	}
}

func matcher(ref rigid.Configuration, em *mindist.ExactMatch) comparer {
	return func(cand rigid.Configuration) result {
		aligned, ok, err := em.Align(ref, cand)
		return result{match: ok, aligned: aligned, err: err}
	}
}

func newWorkers(compare comparer, numWorkers int) pool {
	jobs := make(chan job, numWorkers*2)
	results := make(chan result, numWorkers*2)
	wg := &sync.WaitGroup{}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				cand, err := util.ConfigurationRead(j.path)
				if err != nil {
					results <- result{job: j, err: fmt.Errorf(
						"Could not read configuration '%s': %s", j.path, err)}
					continue
				}
				r := compare(cand)
				r.job = j
				if r.err != nil {
					r.err = fmt.Errorf("Could not compare '%s': %s", j.path, r.err)
				}
				results <- r
			}
		}()
	}
	return pool{wg, jobs, results}
}

func (p pool) done() {
	close(p.jobs)
	p.wg.Wait() // wait for workers to finish sending results
	close(p.results)
}

func (p pool) enqueue(j job) {
	p.jobs <- j
}
