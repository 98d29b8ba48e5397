// Package rotation builds and composes 3×3 rotation matrices.
//
// Storage is row-major: m[i][j] is row i, column j, exactly as the matrix is
// written on paper. Every matrix in this repository is built and multiplied
// through Matrix3 so the layout is fixed in one place.
package rotation

import (
	"math"

	"github.com/ZoussCity/stardome/internal/frames"
	"gonum.org/v1/gonum/mat"
)

// Matrix3 is a row-major 3×3 matrix of float64.
type Matrix3 [3][3]float64

// Identity returns the 3×3 identity matrix.
func Identity() Matrix3 {
	return Matrix3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Mul returns the product m·n.
func (m Matrix3) Mul(n Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return out
}

// Apply returns m·p.
func (m Matrix3) Apply(p frames.Position) frames.Position {
	return frames.Position{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z,
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z,
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z,
	}
}

// Transpose returns mᵗ. For a rotation this is also the inverse.
func (m Matrix3) Transpose() Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// Rows returns the nine elements in row-major order.
func (m Matrix3) Rows() []float64 {
	out := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		out = append(out, m[i][0], m[i][1], m[i][2])
	}
	return out
}

// FromRows builds a Matrix3 from nine row-major elements.
// It panics if len(v) != 9.
func FromRows(v []float64) Matrix3 {
	if len(v) != 9 {
		panic("rotation: FromRows needs 9 elements")
	}
	var m Matrix3
	for i := 0; i < 3; i++ {
		m[i][0], m[i][1], m[i][2] = v[3*i], v[3*i+1], v[3*i+2]
	}
	return m
}

// Dense returns a gonum copy of m.
func (m Matrix3) Dense() *mat.Dense {
	return mat.NewDense(3, 3, m.Rows())
}

// Det returns the determinant of m.
func (m Matrix3) Det() float64 {
	return mat.Det(m.Dense())
}

// IsRotation reports whether m is orthonormal with determinant +1, each
// element of m·mᵗ within tol of the identity and |det-1| <= tol.
func (m Matrix3) IsRotation(tol float64) bool {
	p := m.Mul(m.Transpose())
	id := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !(math.Abs(p[i][j]-id[i][j]) <= tol) {
				return false
			}
		}
	}
	return math.Abs(m.Det()-1) <= tol
}
