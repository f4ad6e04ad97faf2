package shape

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// rotationMatrixTo builds the 4x4 homogeneous matrix (about the origin)
// that carries unit-or-not vector from onto the direction of to, via
// Rodrigues' rotation formula, suitable for fabric.Fabric.ApplyMatrix.
func rotationMatrixTo(from, to r3.Vec) *mat.Dense {
	from = r3.Unit(from)
	to = r3.Unit(to)
	cosAngle := r3.Dot(from, to)
	axis := r3.Cross(from, to)
	sinAngle := r3.Norm(axis)

	const eps = 1e-9
	var k *mat.Dense
	if sinAngle < eps {
		if cosAngle > 0 {
			return identity4()
		}
		axis = perpendicularTo(from)
		k = crossProductMatrix(axis)
		return rodrigues(k, math.Pi)
	}
	axis = r3.Scale(1/sinAngle, axis)
	angle := math.Atan2(sinAngle, cosAngle)
	k = crossProductMatrix(axis)
	return rodrigues(k, angle)
}

func perpendicularTo(v r3.Vec) r3.Vec {
	if math.Abs(v.X) < 0.9 {
		return r3.Unit(r3.Cross(v, r3.Vec{X: 1}))
	}
	return r3.Unit(r3.Cross(v, r3.Vec{Y: 1}))
}

// crossProductMatrix returns the 3x3 skew-symmetric matrix K such that
// K*v == cross(axis, v) for any v.
func crossProductMatrix(axis r3.Vec) *mat.Dense {
	k := mat.NewDense(3, 3, []float64{
		0, -axis.Z, axis.Y,
		axis.Z, 0, -axis.X,
		-axis.Y, axis.X, 0,
	})
	return k
}

// rodrigues computes R = I + sin(angle)*K + (1-cos(angle))*K^2 and embeds
// it in a 4x4 homogeneous matrix.
func rodrigues(k *mat.Dense, angle float64) *mat.Dense {
	var k2 mat.Dense
	k2.Mul(k, k)

	r3x3 := mat.NewDense(3, 3, nil)
	r3x3.Scale(math.Sin(angle), k)
	var term2 mat.Dense
	term2.Scale(1-math.Cos(angle), &k2)
	r3x3.Add(r3x3, &term2)
	for i := 0; i < 3; i++ {
		r3x3.Set(i, i, r3x3.At(i, i)+1)
	}

	out := identity4()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, r3x3.At(i, j))
		}
	}
	return out
}

func identity4() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return m
}
