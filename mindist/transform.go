package mindist

import (
	"fmt"

	"github.com/BurntSushi/rigidalign/rigid"
	"github.com/go-gl/mathgl/mgl64"
)

// Transform applies rigid motions and relabelings to configurations of a
// topology. Every method modifies its configuration in place; callers that
// need the original should pass a copy.
//
// No method wraps centers back into the box. Periodicity is handled by the
// metric.
type Transform struct {
	top *rigid.Topology
}

// NewTransform returns a Transform for configurations of top.
func NewTransform(top *rigid.Topology) *Transform {
	return &Transform{top}
}

// Translate adds t to every center of x.
func (tr *Transform) Translate(x rigid.Configuration, t mgl64.Vec3) {
	for i := 0; i < x.NumBodies(); i++ {
		x.SetCenter(i, x.Center(i).Add(t))
	}
}

// Rotate applies R about the origin: to every center of x, and to every
// orientation.
func (tr *Transform) Rotate(x rigid.Configuration, R mgl64.Mat3) {
	for i := 0; i < x.NumBodies(); i++ {
		x.SetCenter(i, R.Mul3x1(x.Center(i)))
		x.SetOrientation(i, rigid.Compose(R, x.Orientation(i)))
	}
}

// RotateAbout applies R about pivot.
func (tr *Transform) RotateAbout(x rigid.Configuration, R mgl64.Mat3, pivot mgl64.Vec3) {
	tr.Translate(x, pivot.Mul(-1))
	tr.Rotate(x, R)
	tr.Translate(x, pivot)
}

// Permute relabels the bodies of x so that body i of the result is body
// perm[i] of the input. perm must be a bijection that maps every body to a
// body of the same permutation group. Otherwise an error wrapping
// ErrInvalidInput is returned and x is left untouched.
func (tr *Transform) Permute(x rigid.Configuration, perm []int) error {
	if err := tr.top.Check(x); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := tr.checkPermutation(perm); err != nil {
		return err
	}
	old := x.Copy()
	for i, j := range perm {
		x.SetCenter(i, old.Center(j))
		x.SetOrientation(i, old.Orientation(j))
	}
	return nil
}

func (tr *Transform) checkPermutation(perm []int) error {
	n := tr.top.NumBodies()
	if len(perm) != n {
		return fmt.Errorf("%w: permutation has %d entries, but there are %d "+
			"bodies", ErrInvalidInput, len(perm), n)
	}
	seen := make([]bool, n)
	for i, j := range perm {
		if j < 0 || j >= n {
			return fmt.Errorf("%w: permutation maps body %d to %d, which "+
				"does not exist", ErrInvalidInput, i, j)
		}
		if seen[j] {
			return fmt.Errorf("%w: permutation uses body %d twice",
				ErrInvalidInput, j)
		}
		seen[j] = true
		if tr.top.Group(i) != tr.top.Group(j) {
			return fmt.Errorf("%w: permutation maps body %d to body %d, "+
				"which is in another permutation group",
				ErrInvalidInput, i, j)
		}
	}
	return nil
}
