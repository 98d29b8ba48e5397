package rotation

import (
	"fmt"
	"math"
)

// Axis is a coordinate axis.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Rotation returns the elemental rotation about axis by angle radians.
//
// The matrix rotates a vector counter-clockwise by angle (right-hand rule)
// when applied as R·v. Re-expressing a vector in a frame that was itself
// rotated by θ is therefore Rotation(axis, -θ). Callers that follow the
// frame-rotation (SOFA) convention negate the angle.
//
// NaN or infinite angles yield NaN entries; there is no validation. An axis
// outside X, Y, Z yields the identity.
func Rotation(axis Axis, angle float64) Matrix3 {
	s, c := math.Sincos(angle)

	switch axis {
	case X:
		return Matrix3{
			{1, 0, 0},
			{0, c, -s},
			{0, s, c},
		}
	case Y:
		return Matrix3{
			{c, 0, s},
			{0, 1, 0},
			{-s, 0, c},
		}
	case Z:
		return Matrix3{
			{c, -s, 0},
			{s, c, 0},
			{0, 0, 1},
		}
	default:
		return Identity()
	}
}
