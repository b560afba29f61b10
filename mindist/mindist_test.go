package mindist

import (
	"math"
	"math/rand"
	"testing"

	"github.com/BurntSushi/rigidalign/rigid"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const numBodies = 30

var boxLengths = mgl64.Vec3{10, 10, 10}

// triangleSites is a bent three-site molecule centered on the origin.
func triangleSites() []mgl64.Vec3 {
	s, c := math.Sin(7*math.Pi/24), math.Cos(7*math.Pi/24)
	return []mgl64.Vec3{
		{0, -2. / 3 * s, 0},
		{c, 1. / 3 * s, 0},
		{-c, 1. / 3 * s, 0},
	}
}

// twofold swaps the two outer sites of the triangle.
var twofold = mgl64.Mat3{-1, 0, 0, 0, 1, 0, 0, 0, -1}

func triangles(t *testing.T, n int, symmetries ...mgl64.Mat3) *rigid.Topology {
	f, err := rigid.NewFragment(triangleSites(), symmetries...)
	require.NoError(t, err)
	frags := make([]*rigid.Fragment, n)
	for i := range frags {
		frags[i] = f
	}
	return rigid.NewTopology(frags)
}

const (
	numMixedTriangles = 20
	numMixedPyramids  = 5
	numMixed          = numMixedTriangles + numMixedPyramids
)

// mixed returns a topology of triangles followed by four-site pyramids. The
// pyramids form the smaller permutation group, so body numMixedTriangles
// is the exact match anchor.
func mixed(t *testing.T) *rigid.Topology {
	tri, err := rigid.NewFragment(triangleSites())
	require.NoError(t, err)
	pyramid, err := rigid.NewFragment([]mgl64.Vec3{
		{0, 0, 0.5},
		{0.5, 0, -0.2},
		{-0.25, 0.43, -0.2},
		{-0.25, -0.43, -0.2},
	})
	require.NoError(t, err)

	frags := make([]*rigid.Fragment, numMixed)
	for i := range frags {
		if i < numMixedTriangles {
			frags[i] = tri
		} else {
			frags[i] = pyramid
		}
	}
	top := rigid.NewTopology(frags)
	require.Len(t, top.PermGroups(), 2)
	return top
}

// mixedPermutation shuffles the triangles and cycles the pyramids, so that
// no pyramid keeps its label. The first pyramid of a ends up second.
func mixedPermutation(rng *rand.Rand) []int {
	perm := make([]int, numMixed)
	for i, j := range rng.Perm(numMixedTriangles) {
		perm[i] = j
	}
	for k := 0; k < numMixedPyramids; k++ {
		perm[numMixedTriangles+k] = numMixedTriangles + (k+numMixedPyramids-1)%numMixedPyramids
	}
	return perm
}

func testBox(t *testing.T) Box {
	box, err := NewBox(boxLengths)
	require.NoError(t, err)
	return box
}

func randomConfiguration(rng *rand.Rand, n int) rigid.Configuration {
	x := rigid.NewConfiguration(n)
	for i := 0; i < n; i++ {
		var c, p mgl64.Vec3
		for k := 0; k < 3; k++ {
			c[k] = (rng.Float64() - 0.5) * boxLengths[k]
			p[k] = 5 * rng.Float64()
		}
		x.SetCenter(i, c)
		x.SetOrientation(i, p)
	}
	return x
}

func randomRotation(rng *rand.Rand) mgl64.Mat3 {
	axis := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	return rigid.RotationMatrix(axis.Normalize().Mul(rng.Float64() * math.Pi))
}

func randomShift(rng *rand.Rand) mgl64.Vec3 {
	return mgl64.Vec3{
		rng.Float64() * boxLengths[0],
		rng.Float64() * boxLengths[1],
		rng.Float64() * boxLengths[2],
	}
}

func testMeasure(t *testing.T, top *rigid.Topology) *Measure {
	m, err := NewMeasure(testBox(t), top, 1)
	require.NoError(t, err)
	return m
}

func testMinimizer(t *testing.T, top *rigid.Topology, opts Options, seed int64) *MinPermDist {
	mp, err := NewMinPermDist(testBox(t), top, opts, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return mp
}

func testMatcher(t *testing.T, top *rigid.Topology, opts Options) *ExactMatch {
	em, err := NewExactMatch(testBox(t), top, opts)
	require.NoError(t, err)
	return em
}

func TestBoxMinImage(t *testing.T) {
	box := testBox(t)
	assert.Equal(t, mgl64.Vec3{-4, 4, 5}, box.MinImage(mgl64.Vec3{6, -6, 5}))
	assert.Equal(t, mgl64.Vec3{5, 5, 0.5}, box.MinImage(mgl64.Vec3{-5, 15, 20.5}))
	assert.Equal(t, mgl64.Vec3{}, box.MinImage(mgl64.Vec3{10, -20, 0}))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		d := mgl64.Vec3{rng.NormFloat64() * 30, rng.NormFloat64() * 30, 0}
		got := box.MinImage(d)
		for k := 0; k < 3; k++ {
			require.Greater(t, got[k], -boxLengths[k]/2)
			require.LessOrEqual(t, got[k], boxLengths[k]/2)
			n := (d[k] - got[k]) / boxLengths[k]
			require.InDelta(t, math.Round(n), n, 1e-9)
		}
	}

	for _, bad := range []mgl64.Vec3{{1, 0, 1}, {1, -1, 1}, {math.NaN(), 1, 1}, {1, 1, math.Inf(1)}} {
		_, err := NewBox(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "%v", bad)
	}
}

func TestMeasureSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	m := testMeasure(t, triangles(t, numBodies, twofold))
	for i := 0; i < 20; i++ {
		a := randomConfiguration(rng, numBodies)
		b := randomConfiguration(rng, numBodies)
		require.InDelta(t, m.Dist2(a, b), m.Dist2(b, a), 1e-9)
		require.InDelta(t, 0, m.Dist2(a, a), 1e-20)
	}
}

func TestMeasureOrientationRepresentation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := testMeasure(t, triangles(t, numBodies, twofold))
	a := randomConfiguration(rng, numBodies)
	b := randomConfiguration(rng, numBodies)
	want := m.Dist2(a, b)

	// The same orientations, written with angles past 2 pi.
	wrapped := b.Copy()
	// The same physical bodies, turned by their symmetry.
	turned := b.Copy()
	for i := 0; i < numBodies; i++ {
		p := b.Orientation(i)
		theta := p.Len()
		wrapped.SetOrientation(i, p.Mul((theta+2*math.Pi)/theta))
		turned.SetOrientation(i,
			rigid.RotationVector(b.Rotation(i).Mul3(twofold)))
	}
	assert.InDelta(t, want, m.Dist2(a, wrapped), 1e-9)
	assert.InDelta(t, want, m.Dist2(a, turned), 1e-9)
	assert.InDelta(t, 0, m.Dist2(b, turned), 1e-18)
}

func TestMeasurePeriodic(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	m := testMeasure(t, triangles(t, numBodies))
	a := randomConfiguration(rng, numBodies)
	b := a.Copy()
	b.SetCenter(0, b.Center(0).Add(boxLengths))
	b.SetCenter(7, b.Center(7).Sub(mgl64.Vec3{0, 20, 0}))
	assert.InDelta(t, 0, m.Dist2(a, b), 1e-20)

	// Centers only.
	m, err := NewMeasure(testBox(t), triangles(t, numBodies), 0)
	require.NoError(t, err)
	c := a.Copy()
	c.SetCenter(3, c.Center(3).Add(mgl64.Vec3{0.5, 0, 0}))
	c.SetOrientation(3, mgl64.Vec3{1, 1, 1})
	assert.InDelta(t, 0.25, m.Dist2(a, c), 1e-12)
	assert.InDelta(t, 0.5, m.Dist(a, c), 1e-12)
}

func TestMeasureInvalid(t *testing.T) {
	top := triangles(t, 2)
	m := testMeasure(t, top)
	assert.ErrorIs(t, m.Check(rigid.NewConfiguration(2), rigid.NewConfiguration(3)),
		ErrInvalidInput)
	assert.Panics(t, func() {
		m.Dist2(rigid.NewConfiguration(2), rigid.NewConfiguration(3))
	})

	_, err := NewMeasure(Box{}, top, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = NewMeasure(testBox(t), top, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = NewMeasure(testBox(t), rigid.NewTopology(nil), 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
