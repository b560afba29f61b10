package mindist

import (
	"fmt"
	"math"

	"github.com/BurntSushi/rigidalign/rigid"
	"github.com/go-gl/mathgl/mgl64"
)

// Measure is the periodic metric on configurations of a topology.
//
// The squared distance between a and b is
//
//	sum_i |mic(ca_i - cb_i)|^2 + w * min_S sum_k |Ra_i S s_k - Rb_i s_k|^2
//
// where mic is the minimum image of a center separation, s_k are the site
// offsets of body i and S ranges over the symmetries of its fragment. Bodies
// are compared slot by slot; Measure never permutes, rotates or translates.
//
// The orientation term compares site geometry instead of rotation vectors,
// so it does not depend on which of the equivalent rotation vectors is used
// for an orientation.
type Measure struct {
	box    Box
	top    *rigid.Topology
	weight float64
}

// NewMeasure returns the metric for the given box and topology. weight
// scales the orientation term and must not be negative.
func NewMeasure(box Box, top *rigid.Topology, weight float64) (*Measure, error) {
	if err := box.check(); err != nil {
		return nil, err
	}
	if top == nil || top.NumBodies() == 0 {
		return nil, fmt.Errorf("%w: topology has no bodies", ErrInvalidInput)
	}
	if !(weight >= 0) || math.IsInf(weight, 0) {
		return nil, fmt.Errorf("%w: weight %f must be non-negative",
			ErrInvalidInput, weight)
	}
	return &Measure{box: box, top: top, weight: weight}, nil
}

// Box returns the periodic box of the metric.
func (m *Measure) Box() Box {
	return m.box
}

// Topology returns the topology of the metric.
func (m *Measure) Topology() *rigid.Topology {
	return m.top
}

// Check returns an error wrapping ErrInvalidInput if a or b does not fit the
// topology.
func (m *Measure) Check(a, b rigid.Configuration) error {
	for _, x := range []rigid.Configuration{a, b} {
		if err := m.top.Check(x); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
	}
	return nil
}

// Dist2 returns the squared distance between a and b. It panics if either
// does not fit the topology.
func (m *Measure) Dist2(a, b rigid.Configuration) float64 {
	if err := m.Check(a, b); err != nil {
		panic(err.Error())
	}
	var sum float64
	for i := 0; i < m.top.NumBodies(); i++ {
		d := m.box.MinImage(a.Center(i).Sub(b.Center(i)))
		sum += d.Dot(d)
		if m.weight > 0 {
			_, rot := m.orientation(i, a.Rotation(i), b.Rotation(i))
			sum += m.weight * rot
		}
	}
	return sum
}

// Dist returns the distance between a and b.
func (m *Measure) Dist(a, b rigid.Configuration) float64 {
	return math.Sqrt(m.Dist2(a, b))
}

// orientation returns the symmetry S of body i minimizing
// sum_k |Ra S s_k - Rb s_k|^2, along with that sum.
func (m *Measure) orientation(i int, Ra, Rb mgl64.Mat3) (mgl64.Mat3, float64) {
	frag := m.top.Fragment(i)
	sb := frag.Oriented(Rb)
	best, bestS := math.Inf(1), mgl64.Ident3()
	for _, S := range frag.Symmetries {
		RS := Ra.Mul3(S)
		var sum float64
		for k, s := range frag.Sites {
			d := RS.Mul3x1(s).Sub(sb[k])
			sum += d.Dot(d)
		}
		if sum < best {
			best, bestS = sum, S
		}
	}
	return bestS, best
}
