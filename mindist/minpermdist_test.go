package mindist

import (
	"context"
	"math/rand"
	"testing"

	"github.com/BurntSushi/rigidalign/rigid"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimizeTranslation(t *testing.T) {
	rng := rand.New(rand.NewSource(20))
	top := triangles(t, numBodies)
	mp := testMinimizer(t, top, DefaultOptions(), 20)
	em := testMatcher(t, top, DefaultOptions())
	tr := NewTransform(top)

	a := randomConfiguration(rng, numBodies)
	b := a.Copy()
	tr.Translate(b, randomShift(rng))

	ok, err := em.Match(a, b)
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := mp.Minimize(context.Background(), a, b)
	require.NoError(t, err)
	assert.Less(t, res.Dist, 1e-5)
	assert.Equal(t, a, res.A)
	assert.InDelta(t, res.Dist, mp.Measure().Dist(res.A, res.B), 1e-12)
}

func TestMinimizeLargeTranslation(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	top := triangles(t, numBodies)
	tr := NewTransform(top)
	a := randomConfiguration(rng, numBodies)
	b := a.Copy()
	tr.Translate(b, mgl64.Vec3{13.5, -27.25, 6})

	for _, fix := range []bool{false, true} {
		opts := DefaultOptions()
		opts.FixRotation = fix
		res, err := testMinimizer(t, top, opts, 21).Minimize(context.Background(), a, b)
		require.NoError(t, err)
		assert.Less(t, res.Dist, 1e-5, "fixed rotation: %v", fix)
	}
}

func TestMinimizeRotation(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	for _, sup := range []string{"kabsch", "qcp"} {
		top := triangles(t, numBodies)
		opts := DefaultOptions()
		opts.Superposer = sup
		mp := testMinimizer(t, top, opts, 22)
		tr := NewTransform(top)

		a := randomConfiguration(rng, numBodies)
		b := a.Copy()
		tr.Rotate(b, randomRotation(rng))
		require.NoError(t, tr.Permute(b, rng.Perm(numBodies)))

		res, err := mp.Minimize(context.Background(), a, b)
		require.NoError(t, err)
		assert.Less(t, res.Dist, 1e-5, sup)
	}
}

func TestMinimizeImproves(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	top := triangles(t, numBodies)
	mp := testMinimizer(t, top, DefaultOptions(), 23)
	em := testMatcher(t, top, DefaultOptions())
	for i := 0; i < 10; i++ {
		a := randomConfiguration(rng, numBodies)
		b := randomConfiguration(rng, numBodies)
		before := mp.Measure().Dist(a, b)

		res, err := mp.Minimize(context.Background(), a, b)
		require.NoError(t, err)
		require.LessOrEqual(t, res.Dist, before)

		// The aligned copy is the same structure as b.
		ok, err := em.Match(b, res.B)
		require.NoError(t, err)
		require.True(t, ok, "aligned copy %d no longer matches", i)
	}
}

func TestMinimizeDoesNotModifyInput(t *testing.T) {
	rng := rand.New(rand.NewSource(24))
	top := triangles(t, 5)
	mp := testMinimizer(t, top, DefaultOptions(), 24)
	a := randomConfiguration(rng, 5)
	b := randomConfiguration(rng, 5)
	a0, b0 := a.Copy(), b.Copy()

	_, err := mp.Minimize(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, a0, a)
	assert.Equal(t, b0, b)
}

func TestMinimizeReproducible(t *testing.T) {
	rng := rand.New(rand.NewSource(25))
	top := triangles(t, 12)
	a := randomConfiguration(rng, 12)
	b := randomConfiguration(rng, 12)

	opts := DefaultOptions()
	opts.NumSeeds = 8
	opts.Workers = 3
	first, err := testMinimizer(t, top, opts, 99).Minimize(context.Background(), a, b)
	require.NoError(t, err)
	second, err := testMinimizer(t, top, opts, 99).Minimize(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMinimizeDegenerate(t *testing.T) {
	point, err := rigid.NewFragment([]mgl64.Vec3{{0, 0, 0}})
	require.NoError(t, err)
	top := rigid.NewTopology([]*rigid.Fragment{point, point, point, point})

	rng := rand.New(rand.NewSource(26))
	a := randomConfiguration(rng, 4)
	b := a.Copy()
	NewTransform(top).Translate(b, mgl64.Vec3{1, 2, 3})

	_, err = testMinimizer(t, top, DefaultOptions(), 26).Minimize(context.Background(), a, b)
	assert.ErrorIs(t, err, ErrDegenerate)

	// Without the rotational search there is nothing to solve for.
	opts := DefaultOptions()
	opts.FixRotation = true
	res, err := testMinimizer(t, top, opts, 26).Minimize(context.Background(), a, b)
	require.NoError(t, err)
	assert.Less(t, res.Dist, 1e-9)
}

func TestMinimizeInvalid(t *testing.T) {
	top := triangles(t, 3)
	mp := testMinimizer(t, top, DefaultOptions(), 27)
	_, err := mp.Minimize(context.Background(),
		rigid.NewConfiguration(3), rigid.NewConfiguration(4))
	assert.ErrorIs(t, err, ErrInvalidInput)

	opts := DefaultOptions()
	opts.NumSeeds = 0
	_, err = NewMinPermDist(testBox(t), top, opts, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewMinPermDist(Box{}, top, DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMinimizeCancelled(t *testing.T) {
	rng := rand.New(rand.NewSource(28))
	top := triangles(t, numBodies)
	mp := testMinimizer(t, top, DefaultOptions(), 28)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mp.Minimize(ctx,
		randomConfiguration(rng, numBodies), randomConfiguration(rng, numBodies))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMinimizeMixedGroups(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	top := mixed(t)
	tr := NewTransform(top)
	em := testMatcher(t, top, DefaultOptions())

	for i := 0; i < 3; i++ {
		a := randomConfiguration(rng, numMixed)
		b := a.Copy()
		tr.Rotate(b, randomRotation(rng))
		tr.Translate(b, randomShift(rng))
		require.NoError(t, tr.Permute(b, mixedPermutation(rng)))

		res, err := testMinimizer(t, top, DefaultOptions(), int64(30+i)).
			Minimize(context.Background(), a, b)
		require.NoError(t, err)
		assert.Less(t, res.Dist, 1e-5)

		ok, err := em.Match(b, res.B)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	opts := DefaultOptions()
	opts.FixRotation = true
	a := randomConfiguration(rng, numMixed)
	b := a.Copy()
	tr.Translate(b, randomShift(rng))
	require.NoError(t, tr.Permute(b, mixedPermutation(rng)))
	res, err := testMinimizer(t, top, opts, 33).Minimize(context.Background(), a, b)
	require.NoError(t, err)
	assert.Less(t, res.Dist, 1e-5)
}
