package eop

import (
	"math"

	"github.com/soniakeys/unit"
)

// PolarMotion holds the pole coordinates xp, yp in radians: the offset of the
// Celestial Intermediate Pole from the ITRS pole.
type PolarMotion struct {
	Xp, Yp float64
}

// PolarMotionFromArcsec converts pole coordinates published in arcseconds
// (the IERS convention) to radians.
func PolarMotionFromArcsec(x, y float64) PolarMotion {
	return PolarMotion{
		Xp: unit.AngleFromSec(x).Rad(),
		Yp: unit.AngleFromSec(y).Rad(),
	}
}

// Arcsec returns xp, yp in arcseconds.
func (pm PolarMotion) Arcsec() (x, y float64) {
	return unit.Angle(pm.Xp).Sec(), unit.Angle(pm.Yp).Sec()
}

// IsFinite reports whether both angles are finite.
func (pm PolarMotion) IsFinite() bool {
	return !math.IsNaN(pm.Xp) && !math.IsInf(pm.Xp, 0) &&
		!math.IsNaN(pm.Yp) && !math.IsInf(pm.Yp, 0)
}
