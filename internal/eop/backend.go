package eop

import (
	"math"

	"github.com/ZoussCity/stardome/internal/rotation"
)

// Backend is the numeric contract the transform engine consumes. All methods
// must be pure and safe for concurrent use.
//
// The elemental and composition routines follow the IAU SOFA conventions:
// an angle rotates the reference frame, and a matrix argument is never
// modified (the composed matrix is returned).
type Backend interface {
	// GMST82 returns Greenwich Mean Sidereal Time (IAU 1982 model) in
	// radians, normalized to [0, 2π).
	GMST82(t UT1) float64

	// ERA00 returns the Earth Rotation Angle (IAU 2000) in radians.
	ERA00(t UT1) float64

	// Rx, Ry and Rz return R(φ)·r for a frame rotation of φ about the axis.
	Rx(phi float64, r rotation.Matrix3) rotation.Matrix3
	Ry(phi float64, r rotation.Matrix3) rotation.Matrix3
	Rz(phi float64, r rotation.Matrix3) rotation.Matrix3

	// PolarMotion returns the polar-motion matrix W for pole coordinates
	// xp, yp and TIO locator sp, all in radians.
	PolarMotion(xp, yp, sp float64) rotation.Matrix3

	// C2TCIO composes the celestial-to-terrestrial matrix from the
	// celestial-to-intermediate matrix, the Earth rotation angle and the
	// polar-motion matrix: rpom · R3(era) · rc2i.
	C2TCIO(rc2i rotation.Matrix3, era float64, rpom rotation.Matrix3) rotation.Matrix3
}

// Native implements Backend in pure Go with the closed-form SOFA formulas.
type Native struct{}

var _ Backend = Native{}

// GMST82 coefficients, seconds of UT1. A is offset by half a day because the
// fractional part of the Julian Date starts at noon.
const (
	gmstA = 24110.54841 - secondsPerDay/2.0
	gmstB = 8640184.812866
	gmstC = 0.093104
	gmstD = -6.2e-6
)

const (
	secondsPerDay    = 86400.0
	daysPerCentury   = 36525.0
	secondsToRadians = 2 * math.Pi / secondsPerDay
)

// GMST82 computes Greenwich Mean Sidereal Time per the 1982 model.
// Reference: Vallado, "Fundamentals of Astrodynamics", Eq 3-47, SOFA iauGmst82.
func (Native) GMST82(t UT1) float64 {
	d1, d2 := t.Whole, t.Fraction
	if d1 >= d2 {
		d1, d2 = d2, d1
	}
	tu := (d1 + (d2 - j2000)) / daysPerCentury

	// Fractional part of the day, in seconds.
	f := secondsPerDay * (math.Mod(d1, 1.0) + math.Mod(d2, 1.0))

	return NormalizeAngle(secondsToRadians * ((gmstA + (gmstB+(gmstC+gmstD*tu)*tu)*tu) + f))
}

// ERA00 computes the Earth Rotation Angle, IAU 2000 (SOFA iauEra00).
func (Native) ERA00(t UT1) float64 {
	d1, d2 := t.Whole, t.Fraction
	if d1 >= d2 {
		d1, d2 = d2, d1
	}
	tu := d1 + (d2 - j2000)
	f := math.Mod(d1, 1.0) + math.Mod(d2, 1.0)

	return NormalizeAngle(2 * math.Pi * (f + 0.7790572732640 + 0.00273781191135448*tu))
}

func (Native) Rx(phi float64, r rotation.Matrix3) rotation.Matrix3 {
	return rotation.Rotation(rotation.X, -phi).Mul(r)
}

func (Native) Ry(phi float64, r rotation.Matrix3) rotation.Matrix3 {
	return rotation.Rotation(rotation.Y, -phi).Mul(r)
}

func (Native) Rz(phi float64, r rotation.Matrix3) rotation.Matrix3 {
	return rotation.Rotation(rotation.Z, -phi).Mul(r)
}

// PolarMotion builds W = R1(-yp)·R2(-xp)·R3(sp) (SOFA iauPom00).
func (n Native) PolarMotion(xp, yp, sp float64) rotation.Matrix3 {
	w := rotation.Identity()
	w = n.Rz(sp, w)
	w = n.Ry(-xp, w)
	w = n.Rx(-yp, w)
	return w
}

// C2TCIO composes rpom · R3(era) · rc2i (SOFA iauC2tcio).
func (n Native) C2TCIO(rc2i rotation.Matrix3, era float64, rpom rotation.Matrix3) rotation.Matrix3 {
	return rpom.Mul(n.Rz(era, rc2i))
}

// NormalizeAngle maps a into [0, 2π). NaN stays NaN.
func NormalizeAngle(a float64) float64 {
	w := math.Mod(a, 2*math.Pi)
	if w < 0 {
		w += 2 * math.Pi
	}
	return w
}
