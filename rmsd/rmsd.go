package rmsd

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerate is returned by a Superposer when the best-fit rotation is
// not unique, e.g., when one of the point sets is collinear or a single
// point.
var ErrDegenerate = errors.New("rmsd: point set is degenerate, " +
	"the best-fit rotation is not unique")

// degenerateTol is the smallest ratio between the second and first singular
// values of the covariance matrix that still pins down a unique rotation.
const degenerateTol = 1e-8

// Superposer finds the rotation R minimizing the sum over i of
// |R(x_i - cx) - (y_i - cy)|^2, where cx and cy are the centroids of xs and
// ys. Implementations must be safe for concurrent use.
//
// Superpose panics if xs and ys have different lengths.
type Superposer interface {
	Superpose(xs, ys []mgl64.Vec3) (mgl64.Mat3, error)
}

// Kabsch implements a version of the Kabsch alogrithm that is described here:
// http://cnx.org/content/m11608/latest/
//
// A brief, high-level overview:
//
// Build the 3xN matrices X and Y containing, for the sets x and y
// respectively, the coordinates for each of the N points after centering
// the points by subtracting the centroids.
//
// Compute the covariance matrix C=X(Y^T)
//
// Compute the SVD (Singular Value Decomposition) of C=US(V^T)
//
// Compute d=sign(det(V(U^T)))
//
// Compute the optimal rotation R as R = V([1 0 0] [0 1 0] [0 0 d])(U^T)
type Kabsch struct{}

// Superpose returns the rotation that best maps xs onto ys. If the second
// singular value of the covariance matrix vanishes (collinear or single
// point input), the rotation is still optimal but not unique and
// ErrDegenerate is returned alongside it.
func (Kabsch) Superpose(xs, ys []mgl64.Vec3) (mgl64.Mat3, error) {
	mustSameLength(xs, ys)

	R, s := kabsch(xs, ys)
	if s[0] == 0 || s[1] <= degenerateTol*s[0] {
		return R.mat3(), ErrDegenerate
	}
	return R.mat3(), nil
}

func kabsch(xs, ys []mgl64.Vec3) (matrix3, [3]float64) {
	X, Y := Centered(xs), Centered(ys)

	// Compute the covariance matrix C = X(Y^T)
	C := covariance(X, Y)

	// Compute the Singular Value Decomposition of C = US(V^T)
	U, s, V := C.svd()

	// If the determinant of V(U^T) is negative, then we have to correct for
	// something called an "improper rotation" in that the matrix doesn't
	// constitute a "right handed system". To correct for it, we multiply
	// V by ( [1 0 0] [0 1 0] [0 0 -1] ). This makes the rotation "proper".
	//
	// N.B. The sign is taken from V(U^T) rather than from C. When the points
	// are planar, det(C) is zero up to rounding and its sign is noise.
	UT := U.transpose()
	if V.mult(UT).det() < 0 {
		adjust := matrix3{
			1, 0, 0,
			0, 1, 0,
			0, 0, -1,
		}
		V = V.mult(adjust)
	}
	return V.mult(UT), s
}

// RMSD computes the root mean square deviation between xs and ys after
// optimal superposition with the Kabsch algorithm. Degenerate input is fine
// here: any optimal rotation yields the same deviation.
//
// Note that RMSD will panic if the lengths of xs and ys differ.
func RMSD(xs, ys []mgl64.Vec3) float64 {
	mustSameLength(xs, ys)
	if len(xs) == 0 {
		return 0
	}

	R, _ := kabsch(xs, ys)
	return deviation(R.mat3(), Centered(xs), Centered(ys))
}

// RMSDWith is like RMSD, but uses the given Superposer to find the rotation.
func RMSDWith(sup Superposer, xs, ys []mgl64.Vec3) (float64, error) {
	mustSameLength(xs, ys)
	if len(xs) == 0 {
		return 0, nil
	}

	R, err := sup.Superpose(xs, ys)
	if err != nil && err != ErrDegenerate {
		return 0, err
	}
	return deviation(R, Centered(xs), Centered(ys)), nil
}

func deviation(R mgl64.Mat3, X, Y []mgl64.Vec3) float64 {
	var sum float64
	for i := range X {
		d := R.Mul3x1(X[i]).Sub(Y[i])
		sum += d.Dot(d)
	}
	return math.Sqrt(sum / float64(len(X)))
}

// Centroid calculates the average position of a set of points.
func Centroid(xs []mgl64.Vec3) mgl64.Vec3 {
	var c mgl64.Vec3
	for _, x := range xs {
		c = c.Add(x)
	}
	return c.Mul(1 / float64(len(xs)))
}

// Centered returns a copy of xs translated so that its centroid is the
// origin.
func Centered(xs []mgl64.Vec3) []mgl64.Vec3 {
	c := Centroid(xs)
	centered := make([]mgl64.Vec3, len(xs))
	for i, x := range xs {
		centered[i] = x.Sub(c)
	}
	return centered
}

// Collinear returns true if all points of xs lie on a single line (which
// includes the cases of zero, one or two points).
func Collinear(xs []mgl64.Vec3) bool {
	if len(xs) < 3 {
		return true
	}
	X := Centered(xs)

	// The point farthest from the centroid fixes the candidate line. Every
	// other point must be parallel to it.
	var far mgl64.Vec3
	var farLen float64
	for _, x := range X {
		if l := x.Len(); l > farLen {
			far, farLen = x, l
		}
	}
	if farLen == 0 {
		return true
	}
	for _, x := range X {
		if far.Cross(x).Len() > degenerateTol*farLen*farLen {
			return false
		}
	}
	return true
}

func mustSameLength(xs, ys []mgl64.Vec3) {
	if len(xs) != len(ys) {
		panic(fmt.Sprintf("Superposing two point sets requires that "+
			"they have equal length. But the lengths of the two sets "+
			"provided are %d and %d.", len(xs), len(ys)))
	}
}
