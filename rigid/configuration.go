package rigid

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Configuration is the flat coordinate vector of N rigid bodies: the 3N
// center coordinates followed by the 3N rotation vector coordinates.
//
// A rotation vector's direction is the rotation axis and its magnitude the
// rotation angle.
type Configuration []float64

// NewConfiguration returns the zero configuration of n bodies: every center
// at the origin and every orientation the identity.
func NewConfiguration(n int) Configuration {
	return make(Configuration, 6*n)
}

// NumBodies returns the number of bodies described by x. It panics if the
// length of x is not a multiple of 6.
func (x Configuration) NumBodies() int {
	if len(x)%6 != 0 {
		panic(fmt.Sprintf("A rigid body configuration must have 6 "+
			"coordinates per body, but %d coordinates were given.", len(x)))
	}
	return len(x) / 6
}

// Center returns the center of body i.
func (x Configuration) Center(i int) mgl64.Vec3 {
	return mgl64.Vec3{x[3*i], x[3*i+1], x[3*i+2]}
}

// SetCenter sets the center of body i.
func (x Configuration) SetCenter(i int, c mgl64.Vec3) {
	x[3*i], x[3*i+1], x[3*i+2] = c[0], c[1], c[2]
}

// Orientation returns the rotation vector of body i.
func (x Configuration) Orientation(i int) mgl64.Vec3 {
	off := len(x) / 2
	return mgl64.Vec3{x[off+3*i], x[off+3*i+1], x[off+3*i+2]}
}

// SetOrientation sets the rotation vector of body i.
func (x Configuration) SetOrientation(i int, p mgl64.Vec3) {
	off := len(x) / 2
	x[off+3*i], x[off+3*i+1], x[off+3*i+2] = p[0], p[1], p[2]
}

// Rotation returns the rotation matrix of body i.
func (x Configuration) Rotation(i int) mgl64.Mat3 {
	return RotationMatrix(x.Orientation(i))
}

// Centers returns a copy of every body's center.
func (x Configuration) Centers() []mgl64.Vec3 {
	cs := make([]mgl64.Vec3, x.NumBodies())
	for i := range cs {
		cs[i] = x.Center(i)
	}
	return cs
}

// Copy returns a deep copy of x.
func (x Configuration) Copy() Configuration {
	return append(Configuration(nil), x...)
}
