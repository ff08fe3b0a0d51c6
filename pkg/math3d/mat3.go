package math3d

import "math"

// Mat3 is a 3x3 matrix in column-major order. It carries normal matrices,
// which only need the linear part of a transform.
type Mat3 [9]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Mat3FromMat4 returns the upper-left 3x3 of m.
func Mat3FromMat4(m Mat4) Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Determinant returns the determinant of the matrix.
func (m Mat3) Determinant() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[3]*(m[1]*m[8]-m[2]*m[7]) +
		m[6]*(m[1]*m[5]-m[2]*m[4])
}

// Invert returns the inverse and false if the matrix is singular.
func (m Mat3) Invert() (Mat3, bool) {
	c0 := m[8]*m[4] - m[5]*m[7]
	c1 := m[5]*m[6] - m[8]*m[3]
	c2 := m[7]*m[3] - m[4]*m[6]

	det := m[0]*c0 + m[1]*c1 + m[2]*c2
	if det == 0 {
		return Mat3{}, false
	}
	d := 1 / det

	return Mat3{
		c0 * d,
		(m[2]*m[7] - m[8]*m[1]) * d,
		(m[5]*m[1] - m[2]*m[4]) * d,
		c1 * d,
		(m[8]*m[0] - m[2]*m[6]) * d,
		(m[2]*m[3] - m[5]*m[0]) * d,
		c2 * d,
		(m[1]*m[6] - m[7]*m[0]) * d,
		(m[4]*m[0] - m[1]*m[3]) * d,
	}, true
}

// MulVec3 transforms v by the matrix.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// ApproxEqual reports whether every element differs by at most eps.
func (m Mat3) ApproxEqual(o Mat3, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// NormalMatrix returns the inverse-transpose of the upper-left 3x3 of the
// model-view matrix. A singular model-view falls back to its plain 3x3.
func NormalMatrix(mv Mat4) Mat3 {
	m := Mat3FromMat4(mv)
	inv, ok := m.Transpose().Invert()
	if !ok {
		return m
	}
	return inv
}
