package mindist

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is a rectangular periodic cell with its edges along the axes. The zero
// Box is not valid; use NewBox.
type Box struct {
	lengths mgl64.Vec3
}

// NewBox returns a box with the given edge lengths, all of which must be
// positive and finite.
func NewBox(lengths mgl64.Vec3) (Box, error) {
	for i, l := range lengths {
		if !(l > 0) || math.IsInf(l, 0) {
			return Box{}, fmt.Errorf("%w: box length %d is %f, but it must "+
				"be positive", ErrInvalidInput, i, l)
		}
	}
	return Box{lengths}, nil
}

// Lengths returns the edge lengths of the box.
func (b Box) Lengths() mgl64.Vec3 {
	return b.lengths
}

// MinImage returns the periodic image of the separation d that is closest to
// the origin. Every component of the result lies in (-L/2, L/2].
func (b Box) MinImage(d mgl64.Vec3) mgl64.Vec3 {
	for i, l := range b.lengths {
		d[i] -= l * math.Round(d[i]/l)
		if d[i] <= -l/2 {
			d[i] += l
		}
	}
	return d
}

func (b Box) check() error {
	_, err := NewBox(b.lengths)
	return err
}
