package mindist

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/BurntSushi/rigidalign/rigid"
	"github.com/BurntSushi/rigidalign/rmsd"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a minimization. B is a transformed copy of the
// second configuration aligned with A, which is a copy of the first, and
// Dist is the distance between them.
type Result struct {
	Dist float64
	A, B rigid.Configuration
}

// MinPermDist minimizes the distance between two configurations over global
// rotations, translations and permutations of identical bodies.
//
// The search starts from a set of seeds. One seed is the identity. The
// others pair a body of the first configuration (the anchor) with a body of
// the same permutation group in the second (the partner), and start from the
// best-fit rotation of the partner's sites onto each symmetric orientation
// of the anchor's sites, translated so that the two centers coincide. Seeds
// whose rotation is not well defined are skipped.
//
// Each seed is refined by repeating three steps: relabel the bodies with
// Measure.Permutation, translate by the mean minimum image separation of the
// centers, then apply the best-fit rotation of all centers and sites. The
// loop stops when a round improves the squared distance by less than
// Options.ConvergenceThreshold, and a round that makes things worse is
// discarded. Seeds are refined concurrently.
//
// A MinPermDist may be used from multiple goroutines.
type MinPermDist struct {
	measure *Measure
	tr      *Transform
	opts    Options
	sup     rmsd.Superposer
	log     *slog.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

type seed struct {
	rot             mgl64.Mat3
	trans           mgl64.Vec3
	anchor, partner int
}

// NewMinPermDist returns a minimizer for configurations of top in box. The
// pairs of bodies used as seeds are drawn from rng; if rng is nil, a source
// seeded with the current time is used.
func NewMinPermDist(
	box Box,
	top *rigid.Topology,
	opts Options,
	rng *rand.Rand,
) (*MinPermDist, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m, err := NewMeasure(box, top, opts.RotationTranslationWeight)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MinPermDist{
		measure: m,
		tr:      NewTransform(top),
		opts:    opts,
		sup:     opts.superposer(),
		log:     opts.logger(),
		rng:     rng,
	}, nil
}

// Measure returns the metric being minimized.
func (mp *MinPermDist) Measure() *Measure {
	return mp.measure
}

// Minimize returns the smallest distance it finds between a and a
// transformed copy of b. Neither a nor b is modified.
//
// The result is never worse than the distance between a and b as given. If
// every rotation seed is degenerate, the error wraps ErrDegenerate. If ctx
// is cancelled, no more seeds are started and ctx.Err() is returned.
func (mp *MinPermDist) Minimize(ctx context.Context, a, b rigid.Configuration) (Result, error) {
	if err := mp.measure.Check(a, b); err != nil {
		return Result{}, err
	}
	seeds, err := mp.seeds(a, b)
	if err != nil {
		return Result{}, err
	}

	type outcome struct {
		x  rigid.Configuration
		d2 float64
	}
	results := make([]outcome, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mp.workers())
	for i, s := range seeds {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			x, d2, err := mp.refine(a, b, s)
			if err != nil {
				return err
			}
			results[i] = outcome{x, d2}
			mp.log.Debug("refined seed",
				slog.Int("anchor", s.anchor),
				slog.Int("partner", s.partner),
				slog.Float64("dist", math.Sqrt(d2)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	best := outcome{b.Copy(), mp.measure.Dist2(a, b)}
	for _, r := range results {
		if r.x != nil && r.d2 < best.d2 {
			best = r
		}
	}
	return Result{Dist: math.Sqrt(best.d2), A: a.Copy(), B: best.x}, nil
}

// seeds draws up to Options.NumSeeds (anchor, partner) pairs and turns each
// into starting transforms. The identity always comes first.
func (mp *MinPermDist) seeds(a, b rigid.Configuration) ([]seed, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	top := mp.measure.top
	seeds := []seed{{rot: mgl64.Ident3(), anchor: -1, partner: -1}}
	pairs, degenerate := 0, 0
pairing:
	for _, i := range mp.rng.Perm(top.NumBodies()) {
		group := top.PermGroups()[top.Group(i)]
		for _, r := range mp.rng.Perm(len(group)) {
			if pairs >= mp.opts.NumSeeds {
				break pairing
			}
			pairs++
			j := group[r]
			if mp.opts.FixRotation {
				seeds = append(seeds, seed{
					rot:     mgl64.Ident3(),
					trans:   a.Center(i).Sub(b.Center(j)),
					anchor:  i,
					partner: j,
				})
				continue
			}

			frag := top.Fragment(i)
			xs := frag.Oriented(b.Rotation(j))
			Ra := a.Rotation(i)
			for _, S := range frag.Symmetries {
				R, err := mp.sup.Superpose(xs, frag.Oriented(Ra.Mul3(S)))
				if err != nil {
					degenerate++
					mp.log.Debug("skipping degenerate seed",
						slog.Int("anchor", i), slog.Int("partner", j))
					continue
				}
				seeds = append(seeds, seed{
					rot:     R,
					trans:   a.Center(i).Sub(R.Mul3x1(b.Center(j))),
					anchor:  i,
					partner: j,
				})
			}
		}
	}
	if !mp.opts.FixRotation && len(seeds) == 1 {
		return nil, fmt.Errorf("%w: all %d rotation seeds are degenerate",
			ErrDegenerate, degenerate)
	}
	return seeds, nil
}

// refine applies s to a copy of b and improves it until convergence or the
// iteration cap. It returns the best configuration seen and its squared
// distance to a.
func (mp *MinPermDist) refine(a, b rigid.Configuration, s seed) (rigid.Configuration, float64, error) {
	x := b.Copy()
	mp.tr.Rotate(x, s.rot)
	mp.tr.Translate(x, s.trans)
	best := mp.measure.Dist2(a, x)
	for it := 0; it < mp.opts.MaxIterations; it++ {
		y, err := mp.step(a, x)
		if err != nil {
			return nil, 0, err
		}
		d2 := mp.measure.Dist2(a, y)
		if !(d2 < best) {
			break
		}
		improvement := best - d2
		x, best = y, d2
		if improvement < mp.opts.ConvergenceThreshold {
			break
		}
	}
	return x, best, nil
}

// step is one round of refinement. x is not modified.
func (mp *MinPermDist) step(a, x rigid.Configuration) (rigid.Configuration, error) {
	perm, err := mp.measure.Permutation(a, x, mp.opts.MatchingCutoff)
	if err != nil {
		return nil, err
	}
	y := x.Copy()
	if err := mp.tr.Permute(y, perm); err != nil {
		return nil, err
	}
	mp.tr.Translate(y, mp.meanOffset(a, y))
	if !mp.opts.FixRotation {
		mp.alignRotation(a, y)
	}
	return y, nil
}

// meanOffset returns the mean minimum image separation from the centers of
// y to those of a.
func (mp *MinPermDist) meanOffset(a, y rigid.Configuration) mgl64.Vec3 {
	var sum mgl64.Vec3
	n := y.NumBodies()
	for i := 0; i < n; i++ {
		sum = sum.Add(mp.measure.box.MinImage(a.Center(i).Sub(y.Center(i))))
	}
	return sum.Mul(1 / float64(n))
}

// alignRotation rotates and translates y in place to best fit a. The points
// fitted are the centers of y and its sites, scaled about their centers by
// the square root of the orientation weight. Their targets are the periodic
// images of the centers of a nearest to y, and the sites of a in their best
// symmetric orientation. y is left alone if the fit is degenerate.
func (mp *MinPermDist) alignRotation(a, y rigid.Configuration) {
	m := mp.measure
	w := math.Sqrt(m.weight)
	var xs, ys []mgl64.Vec3
	for i := 0; i < y.NumBodies(); i++ {
		cy := y.Center(i)
		ca := cy.Add(m.box.MinImage(a.Center(i).Sub(cy)))
		xs = append(xs, cy)
		ys = append(ys, ca)
		if w == 0 {
			continue
		}

		Ra, Ry := a.Rotation(i), y.Rotation(i)
		S, _ := m.orientation(i, Ra, Ry)
		RaS := Ra.Mul3(S)
		for _, s := range m.top.Fragment(i).Sites {
			xs = append(xs, cy.Add(Ry.Mul3x1(s).Mul(w)))
			ys = append(ys, ca.Add(RaS.Mul3x1(s).Mul(w)))
		}
	}

	R, err := mp.sup.Superpose(xs, ys)
	if err != nil {
		return
	}
	cx, cy := rmsd.Centroid(xs), rmsd.Centroid(ys)
	mp.tr.RotateAbout(y, R, cx)
	mp.tr.Translate(y, cy.Sub(cx))
}

func (mp *MinPermDist) workers() int {
	if mp.opts.Workers > 0 {
		return mp.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}
