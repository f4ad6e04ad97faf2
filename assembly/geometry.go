package assembly

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// rotationBetween returns a rotation (as a plain vector function, matching
// bricks.Compose's style) carrying unit vector from onto unit vector to,
// via Rodrigues' rotation formula. If the two vectors are already aligned
// it returns the identity; if they are exactly opposed, it rotates 180
// degrees about an arbitrary axis perpendicular to from.
func rotationBetween(from, to r3.Vec) func(r3.Vec) r3.Vec {
	from = r3.Unit(from)
	to = r3.Unit(to)
	cosAngle := r3.Dot(from, to)
	axis := r3.Cross(from, to)
	sinAngle := r3.Norm(axis)

	const eps = 1e-9
	if sinAngle < eps {
		if cosAngle > 0 {
			return func(v r3.Vec) r3.Vec { return v }
		}
		axis = perpendicular(from)
		return rotateAboutAxis(axis, math.Pi)
	}
	axis = r3.Scale(1/sinAngle, axis)
	angle := math.Atan2(sinAngle, cosAngle)
	return rotateAboutAxis(axis, angle)
}

func rotateAboutAxis(axis r3.Vec, angle float64) func(r3.Vec) r3.Vec {
	cosA, sinA := math.Cos(angle), math.Sin(angle)
	return func(v r3.Vec) r3.Vec {
		term1 := r3.Scale(cosA, v)
		term2 := r3.Scale(sinA, r3.Cross(axis, v))
		term3 := r3.Scale(r3.Dot(axis, v)*(1-cosA), axis)
		return r3.Add(r3.Add(term1, term2), term3)
	}
}

func perpendicular(v r3.Vec) r3.Vec {
	if math.Abs(v.X) < 0.9 {
		return r3.Unit(r3.Cross(v, r3.Vec{X: 1}))
	}
	return r3.Unit(r3.Cross(v, r3.Vec{Y: 1}))
}

func translate(v r3.Vec) func(r3.Vec) r3.Vec {
	return func(p r3.Vec) r3.Vec { return r3.Add(p, v) }
}

// faceNormal returns the outward unit normal of a triangle given its three
// world-space vertices in the order a face's spin implies.
func faceNormal(a, b, c r3.Vec) r3.Vec {
	return r3.Unit(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

func centroid3(a, b, c r3.Vec) r3.Vec {
	return r3.Scale(1.0/3.0, r3.Add(r3.Add(a, b), c))
}
