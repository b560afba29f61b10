package rigid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// smallAngle is the rotation angle below which a rotation vector is treated
// as the identity.
const smallAngle = 1e-12

// RotationMatrix maps a rotation vector to its rotation matrix with the
// Rodrigues formula
//
//	R = I + sin(t) K + (1 - cos(t)) K^2
//
// where t = |p| and K is the cross product matrix of the unit axis p/t.
func RotationMatrix(p mgl64.Vec3) mgl64.Mat3 {
	theta := p.Len()
	if theta < smallAngle {
		return mgl64.Ident3()
	}
	k := p.Mul(1 / theta)
	K := mgl64.Mat3{
		0, k[2], -k[1],
		-k[2], 0, k[0],
		k[1], -k[0], 0,
	}
	return mgl64.Ident3().
		Add(K.Mul(math.Sin(theta))).
		Add(K.Mul3(K).Mul(1 - math.Cos(theta)))
}

// RotationVector is the inverse of RotationMatrix. The returned vector has
// magnitude in [0, pi].
//
// m must be a proper rotation matrix.
func RotationVector(m mgl64.Mat3) mgl64.Vec3 {
	q := mgl64.Mat4ToQuat(m.Mat4()).Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	s := q.V.Len()
	if s < smallAngle {
		return mgl64.Vec3{}
	}
	angle := 2 * math.Atan2(s, q.W)
	return q.V.Mul(angle / s)
}

// Compose returns the rotation vector of the rotation R applied after the
// rotation described by p.
func Compose(R mgl64.Mat3, p mgl64.Vec3) mgl64.Vec3 {
	return RotationVector(R.Mul3(RotationMatrix(p)))
}
