package mindist

import (
	"log/slog"

	"github.com/BurntSushi/rigidalign/rigid"
	"github.com/go-gl/mathgl/mgl64"
)

// ExactMatch decides whether two configurations describe the same structure
// up to global rotation, translation, periodic images and permutations of
// identical bodies.
//
// The candidate transforms of the second configuration are the identity and,
// for one anchor body of the first configuration, every body of its
// permutation group in the second (up to Options.MaxAnchors of them): each
// such partner is moved onto the anchor by a pure translation and by the
// rotations that carry its orientation onto each symmetric orientation of
// the anchor. Every candidate is relabeled with Measure.Permutation and then
// scored. Periodic images need no candidates of their own, since both the
// metric and the relabeling use the minimum image convention.
//
// The anchor cap bounds the search. With a cap smaller than the anchor's
// group, a true match can be missed.
//
// An ExactMatch may be used from multiple goroutines.
type ExactMatch struct {
	measure *Measure
	tr      *Transform
	opts    Options
	log     *slog.Logger
}

// NewExactMatch returns a tester for configurations of top in box.
func NewExactMatch(box Box, top *rigid.Topology, opts Options) (*ExactMatch, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m, err := NewMeasure(box, top, opts.RotationTranslationWeight)
	if err != nil {
		return nil, err
	}
	return &ExactMatch{
		measure: m,
		tr:      NewTransform(top),
		opts:    opts,
		log:     opts.logger(),
	}, nil
}

// Measure returns the metric used to score candidates.
func (em *ExactMatch) Measure() *Measure {
	return em.measure
}

// Match returns true if a and b are within Options.Accuracy of each other
// after some candidate transform of b.
func (em *ExactMatch) Match(a, b rigid.Configuration) (bool, error) {
	_, ok, err := em.Align(a, b)
	return ok, err
}

// Align is like Match, but also returns the transformed copy of b that
// matched a, or nil. Neither a nor b is modified.
func (em *ExactMatch) Align(a, b rigid.Configuration) (rigid.Configuration, bool, error) {
	if err := em.measure.Check(a, b); err != nil {
		return nil, false, err
	}
	acc2 := em.opts.Accuracy * em.opts.Accuracy

	ncand := 0
	try := func(R mgl64.Mat3, t mgl64.Vec3) (rigid.Configuration, bool, error) {
		ncand++
		x := b.Copy()
		em.tr.Rotate(x, R)
		em.tr.Translate(x, t)
		perm, err := em.measure.Permutation(a, x, em.opts.MatchingCutoff)
		if err != nil {
			return nil, false, err
		}
		if err := em.tr.Permute(x, perm); err != nil {
			return nil, false, err
		}
		return x, em.measure.Dist2(a, x) < acc2, nil
	}

	if x, ok, err := try(mgl64.Ident3(), mgl64.Vec3{}); err != nil || ok {
		return x, ok, err
	}

	anchor := em.anchor()
	frag := em.measure.top.Fragment(anchor)
	Ra := a.Rotation(anchor)
	partners := em.measure.top.PermGroups()[em.measure.top.Group(anchor)]
	if em.opts.MaxAnchors > 0 && len(partners) > em.opts.MaxAnchors {
		partners = partners[:em.opts.MaxAnchors]
	}
	for _, j := range partners {
		t := a.Center(anchor).Sub(b.Center(j))
		if x, ok, err := try(mgl64.Ident3(), t); err != nil || ok {
			return x, ok, err
		}
		if em.opts.FixRotation {
			continue
		}

		RbT := b.Rotation(j).Transpose()
		for _, S := range frag.Symmetries {
			R := Ra.Mul3(S).Mul3(RbT)
			t := a.Center(anchor).Sub(R.Mul3x1(b.Center(j)))
			if x, ok, err := try(R, t); err != nil || ok {
				return x, ok, err
			}
		}
	}
	em.log.Debug("no exact match", slog.Int("candidates", ncand))
	return nil, false, nil
}

// anchor returns the first body of the smallest permutation group, which
// keeps the number of candidates down.
func (em *ExactMatch) anchor() int {
	groups := em.measure.top.PermGroups()
	best := groups[0]
	for _, g := range groups[1:] {
		if len(g) < len(best) {
			best = g
		}
	}
	return best[0]
}
