package rigid

import (
	"bytes"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(t *testing.T) *Fragment {
	f, err := NewFragment([]mgl64.Vec3{
		{0, -2. / 3 * math.Sin(7*math.Pi/24), 0},
		{math.Cos(7 * math.Pi / 24), 1. / 3 * math.Sin(7*math.Pi/24), 0},
		{-math.Cos(7 * math.Pi / 24), 1. / 3 * math.Sin(7*math.Pi/24), 0},
	})
	require.NoError(t, err)
	return f
}

func TestRotationMatrixQuarterTurn(t *testing.T) {
	R := RotationMatrix(mgl64.Vec3{0, 0, math.Pi / 2})
	got := R.Mul3x1(mgl64.Vec3{1, 0, 0})
	assert.True(t, approxVec(got, mgl64.Vec3{0, 1, 0}, 1e-12),
		"x axis rotated a quarter turn about z: %v", got)
	assert.Equal(t, mgl64.Ident3(), RotationMatrix(mgl64.Vec3{}))
}

func TestRotationRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		axis := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Normalize()
		p := axis.Mul(rng.Float64() * 3)

		R := RotationMatrix(p)
		require.InDelta(t, 1, R.Det(), 1e-12)
		require.True(t,
			approxMat(R.Mul3(R.Transpose()), mgl64.Ident3(), 1e-12))

		back := RotationVector(R)
		require.True(t, approxVec(back, p, 1e-9),
			"round trip of %v gave %v", p, back)
	}
}

func TestRotationVectorNotUnique(t *testing.T) {
	p := mgl64.Vec3{0.3, -1.2, 0.5}
	theta := p.Len()
	wrapped := p.Mul((theta + 2*math.Pi) / theta)
	flipped := p.Mul((theta - 2*math.Pi) / theta)

	R := RotationMatrix(p)
	assert.True(t, approxMat(R, RotationMatrix(wrapped), 1e-12))
	assert.True(t, approxMat(R, RotationMatrix(flipped), 1e-12))
	assert.True(t, approxVec(RotationVector(RotationMatrix(wrapped)), p, 1e-9))
}

func TestCompose(t *testing.T) {
	p := mgl64.Vec3{0.1, 0.2, 0.3}
	R := RotationMatrix(mgl64.Vec3{-0.4, 0, 0.9})
	got := RotationMatrix(Compose(R, p))
	assert.True(t, approxMat(got, R.Mul3(RotationMatrix(p)), 1e-12))
}

func TestConfigurationAccessors(t *testing.T) {
	x := NewConfiguration(2)
	x.SetCenter(1, mgl64.Vec3{1, 2, 3})
	x.SetOrientation(0, mgl64.Vec3{4, 5, 6})

	assert.Equal(t, 2, x.NumBodies())
	assert.Equal(t, Configuration{0, 0, 0, 1, 2, 3, 4, 5, 6, 0, 0, 0}, x)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, x.Center(1))
	assert.Equal(t, mgl64.Vec3{4, 5, 6}, x.Orientation(0))

	y := x.Copy()
	y[0] = 42
	assert.Equal(t, 0.0, x[0])

	assert.Panics(t, func() { Configuration{1, 2, 3}.NumBodies() })
}

func TestToAtomistic(t *testing.T) {
	f, err := NewFragment([]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}})
	require.NoError(t, err)
	top := NewTopology([]*Fragment{f, f})

	x := NewConfiguration(2)
	x.SetCenter(0, mgl64.Vec3{10, 0, 0})
	x.SetCenter(1, mgl64.Vec3{0, 0, 5})
	x.SetOrientation(1, mgl64.Vec3{0, 0, math.Pi / 2})

	atoms := top.ToAtomistic(x)
	want := []mgl64.Vec3{{11, 0, 0}, {10, 1, 0}, {0, 1, 5}, {-1, 0, 5}}
	require.Len(t, atoms, len(want))
	for i := range want {
		assert.True(t, approxVec(atoms[i], want[i], 1e-12),
			"site %d: want %v, got %v", i, want[i], atoms[i])
	}

	assert.Panics(t, func() { top.ToAtomistic(NewConfiguration(3)) })
	assert.ErrorIs(t, top.Check(NewConfiguration(3)), ErrTopology)
}

func TestTopologyGroups(t *testing.T) {
	tri := triangle(t)
	other := triangle(t)
	dimer, err := NewFragment([]mgl64.Vec3{{-0.5, 0, 0}, {0.5, 0, 0}})
	require.NoError(t, err)

	top := NewTopology([]*Fragment{tri, dimer, other, dimer})
	assert.Equal(t, [][]int{{0, 2}, {1, 3}}, top.PermGroups())
	assert.Equal(t, 0, top.Group(2))
	assert.Equal(t, 1, top.Group(3))

	require.NoError(t, top.SetPermGroups([][]int{{2, 0}}))
	assert.Equal(t, [][]int{{2, 0}, {1}, {3}}, top.PermGroups())
	assert.Equal(t, 1, top.Group(1))

	assert.ErrorIs(t, top.SetPermGroups([][]int{{0, 1}}), ErrTopology)
	assert.ErrorIs(t, top.SetPermGroups([][]int{{0, 2}, {2}}), ErrTopology)
	assert.ErrorIs(t, top.SetPermGroups([][]int{{7}}), ErrTopology)
	assert.ErrorIs(t, top.SetPermGroups([][]int{{}}), ErrTopology)
}

func TestTopologyGroupsBySymmetry(t *testing.T) {
	// Same sites, different twofold axes: the bodies are not interchangeable.
	square := []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {-1, 0, 0}, {0, -1, 0}}
	aboutZ, err := NewFragment(square, mgl64.Mat3{-1, 0, 0, 0, -1, 0, 0, 0, 1})
	require.NoError(t, err)
	aboutX, err := NewFragment(square, mgl64.Mat3{1, 0, 0, 0, -1, 0, 0, 0, -1})
	require.NoError(t, err)
	require.Len(t, aboutZ.Symmetries, 2)
	require.Len(t, aboutX.Symmetries, 2)

	assert.False(t, aboutZ.SameGeometry(aboutX))
	assert.False(t, aboutX.SameGeometry(aboutZ))

	again, err := NewFragment(square, mgl64.Mat3{-1, 0, 0, 0, -1, 0, 0, 0, 1})
	require.NoError(t, err)
	assert.True(t, aboutZ.SameGeometry(again))

	top := NewTopology([]*Fragment{aboutZ, aboutX, again, aboutX})
	assert.Equal(t, [][]int{{0, 2}, {1, 3}}, top.PermGroups())
}

func TestFragmentSymmetries(t *testing.T) {
	// A twofold axis along y swaps the two outer sites of the triangle.
	c2 := RotationMatrix(mgl64.Vec3{0, math.Pi, 0})
	tri := triangle(t)
	f, err := NewFragment(tri.Sites, c2, mgl64.Ident3())
	require.NoError(t, err)
	assert.Len(t, f.Symmetries, 2)
	assert.Equal(t, mgl64.Ident3(), f.Symmetries[0])

	c3 := RotationMatrix(mgl64.Vec3{0, 0, 2 * math.Pi / 3})
	_, err = NewFragment(tri.Sites, c3)
	assert.ErrorIs(t, err, ErrTopology)

	reflection := mgl64.Mat3{-1, 0, 0, 0, 1, 0, 0, 0, 1}
	_, err = NewFragment(tri.Sites, reflection)
	assert.ErrorIs(t, err, ErrTopology)

	_, err = NewFragment(nil)
	assert.ErrorIs(t, err, ErrTopology)

	// A quarter turn generates the whole cyclic group of the square.
	square := []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {-1, 0, 0}, {0, -1, 0}}
	f, err = NewFragment(square, RotationMatrix(mgl64.Vec3{0, 0, math.Pi / 2}))
	require.NoError(t, err)
	assert.Len(t, f.Symmetries, 4)
}

func TestReadTopology(t *testing.T) {
	src := `
fragments:
  water:
    sites: [[0, -0.5, 0], [0.6, 0.25, 0], [-0.6, 0.25, 0]]
    symmetries: [[-1, 0, 0, 0, 1, 0, 0, 0, -1]]
  argon:
    sites: [[0, 0, 0]]
bodies:
  - fragment: water
    count: 3
  - fragment: argon
    count: 2
`
	top, err := ReadTopology(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 5, top.NumBodies())
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4}}, top.PermGroups())
	assert.Len(t, top.Fragment(0).Symmetries, 2)
	assert.Same(t, top.Fragment(0), top.Fragment(2))

	withGroups := src + "groups: [[0, 1]]\n"
	top, err = ReadTopology(strings.NewReader(withGroups))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {2}, {3}, {4}}, top.PermGroups())

	_, err = ReadTopology(strings.NewReader(
		"bodies:\n  - fragment: nope\n    count: 1\n"))
	assert.ErrorIs(t, err, ErrTopology)
}

func TestReadWriteConfiguration(t *testing.T) {
	x := Configuration{1, 2, 3, 4, 5, 6, 0.1, 0.2, 0.3, -0.1, -0.2, -0.3}
	var buf bytes.Buffer
	require.NoError(t, WriteConfiguration(&buf, x))

	y, err := ReadConfiguration(&buf)
	require.NoError(t, err)
	assert.InDeltaSlice(t, x, y, 1e-12)

	y, err = ReadConfiguration(strings.NewReader(
		"# two bodies\n1 2 3 4 5 6\n0 0 0 0 0 1 # orientations\n"))
	require.NoError(t, err)
	assert.Equal(t, Configuration{1, 2, 3, 4, 5, 6, 0, 0, 0, 0, 0, 1}, y)

	_, err = ReadConfiguration(strings.NewReader("1 2 3"))
	assert.ErrorIs(t, err, ErrTopology)
	_, err = ReadConfiguration(strings.NewReader("1 2 x"))
	assert.Error(t, err)
}
