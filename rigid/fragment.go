package rigid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// geometryTol is the tolerance used when comparing site offsets, both for
// grouping identical fragments and for validating symmetries.
const geometryTol = 1e-8

// maxSymmetries bounds the size of a fragment's symmetry group.
const maxSymmetries = 240

// Fragment is the local geometry of one kind of rigid body: the offsets of
// its sites from the body center, in the body frame.
//
// Symmetries are body-frame rotations that map the set of sites onto itself.
// Two orientations that differ by a symmetry describe the same physical
// body. The identity is always the first symmetry, and the set is closed
// under composition.
type Fragment struct {
	Sites      []mgl64.Vec3
	Symmetries []mgl64.Mat3
}

// NewFragment builds a fragment from its site offsets and, optionally, the
// generators of its symmetry group. An error is returned if there are no
// sites, if a symmetry is not a proper rotation that permutes the sites, or
// if the generated group is too large to enumerate.
func NewFragment(sites []mgl64.Vec3, symmetries ...mgl64.Mat3) (*Fragment, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("%w: a fragment needs at least one site",
			ErrTopology)
	}
	f := &Fragment{
		Sites:      append([]mgl64.Vec3(nil), sites...),
		Symmetries: []mgl64.Mat3{mgl64.Ident3()},
	}
	for i, S := range symmetries {
		if err := f.checkSymmetry(S); err != nil {
			return nil, fmt.Errorf("%w: symmetry %d: %s", ErrTopology, i, err)
		}
		if !f.hasSymmetry(S) {
			f.Symmetries = append(f.Symmetries, S)
		}
	}

	// Close the set under composition, so that every symmetry's inverse is
	// present too.
	for changed := true; changed; {
		changed = false
		for _, A := range f.Symmetries {
			for _, B := range f.Symmetries {
				AB := A.Mul3(B)
				if f.hasSymmetry(AB) {
					continue
				}
				if len(f.Symmetries) >= maxSymmetries {
					return nil, fmt.Errorf("%w: symmetry group has more "+
						"than %d elements", ErrTopology, maxSymmetries)
				}
				f.Symmetries = append(f.Symmetries, AB)
				changed = true
			}
		}
	}
	return f, nil
}

func (f *Fragment) hasSymmetry(S mgl64.Mat3) bool {
	for _, T := range f.Symmetries {
		if approxMat(T, S, geometryTol) {
			return true
		}
	}
	return false
}

func (f *Fragment) checkSymmetry(S mgl64.Mat3) error {
	if !approxMat(S.Mul3(S.Transpose()), mgl64.Ident3(), geometryTol) {
		return fmt.Errorf("matrix is not orthogonal")
	}
	if math.Abs(S.Det()-1) > geometryTol {
		return fmt.Errorf("matrix is not a proper rotation")
	}
	for k, s := range f.Sites {
		if f.siteAt(S.Mul3x1(s)) < 0 {
			return fmt.Errorf("site %d is not mapped onto another site", k)
		}
	}
	return nil
}

// siteAt returns the index of the site at position p, or -1.
func (f *Fragment) siteAt(p mgl64.Vec3) int {
	for k, s := range f.Sites {
		if approxVec(s, p, geometryTol) {
			return k
		}
	}
	return -1
}

// NumSites returns the number of sites of the fragment.
func (f *Fragment) NumSites() int {
	return len(f.Sites)
}

// Oriented returns the site offsets rotated by R. It is the site geometry of
// a body with rotation matrix R, relative to its center.
func (f *Fragment) Oriented(R mgl64.Mat3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(f.Sites))
	for k, s := range f.Sites {
		out[k] = R.Mul3x1(s)
	}
	return out
}

// SameGeometry returns true if f and g have the same sites, in the same
// order, and the same symmetry group. Bodies with the same geometry may be
// permuted with one another.
func (f *Fragment) SameGeometry(g *Fragment) bool {
	if f == g {
		return true
	}
	if len(f.Sites) != len(g.Sites) || len(f.Symmetries) != len(g.Symmetries) {
		return false
	}
	for k := range f.Sites {
		if !approxVec(f.Sites[k], g.Sites[k], geometryTol) {
			return false
		}
	}
	for _, S := range g.Symmetries {
		if !f.hasSymmetry(S) {
			return false
		}
	}
	return true
}

// approxVec and approxMat compare componentwise with an absolute tolerance.
// The mgl64 comparisons are relative, which is too strict near zero.
func approxVec(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func approxMat(a, b mgl64.Mat3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
