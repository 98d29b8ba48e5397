package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/ZoussCity/stardome/internal/eop"
	"github.com/ZoussCity/stardome/internal/frames"
	"github.com/ZoussCity/stardome/internal/rotation"
)

// MaxPolarMotion bounds |xp| and |yp| in radians (about 20.6 arcsec).
// Observed polar motion stays below 1 arcsec.
const MaxPolarMotion = 1e-4

// Accepted UT1 Julian dates: 4713 BC January 1 through 9999 December 31.
// Far outside this range the GMST polynomial overflows.
const (
	MinUT1JD = 0.0
	MaxUT1JD = 5373484.5
)

// rotationTolerance bounds the orthonormality error of a checked matrix.
const rotationTolerance = 1e-9

var (
	// ErrInvalidEarthOrientationInput reports a non-finite UT1 epoch or
	// polar-motion angle, or a polar-motion angle above MaxPolarMotion.
	ErrInvalidEarthOrientationInput = errors.New("invalid Earth orientation input")

	// ErrInvalidPosition reports a position with NaN or infinite components.
	ErrInvalidPosition = errors.New("invalid position")
)

// ValidateInputs checks the Earth orientation inputs of a transform.
func ValidateInputs(t eop.UT1, xp, yp float64) error {
	if !t.IsFinite() {
		return fmt.Errorf("%w: UT1 epoch (%v, %v) is not finite", ErrInvalidEarthOrientationInput, t.Whole, t.Fraction)
	}
	if jd := t.JD(); jd < MinUT1JD || jd > MaxUT1JD {
		return fmt.Errorf("%w: UT1 Julian date %g outside [%g, %g]", ErrInvalidEarthOrientationInput, jd, MinUT1JD, MaxUT1JD)
	}
	if !(eop.PolarMotion{Xp: xp, Yp: yp}).IsFinite() {
		return fmt.Errorf("%w: polar motion (%v, %v) is not finite", ErrInvalidEarthOrientationInput, xp, yp)
	}
	if math.Abs(xp) > MaxPolarMotion || math.Abs(yp) > MaxPolarMotion {
		return fmt.Errorf("%w: polar motion (%g, %g) rad exceeds %g rad", ErrInvalidEarthOrientationInput, xp, yp, MaxPolarMotion)
	}
	return nil
}

// TEMEToITRSChecked validates its inputs before calling TEMEToITRS.
func (e *Engine) TEMEToITRSChecked(p frames.TEME, t eop.UT1, xp, yp float64) (frames.ITRS, error) {
	if err := ValidateInputs(t, xp, yp); err != nil {
		return frames.ITRS{}, err
	}
	if !p.Position().IsFinite() {
		return frames.ITRS{}, fmt.Errorf("%w: %v", ErrInvalidPosition, p.Position())
	}
	out := e.TEMEToITRS(p, t, xp, yp)
	if !out.Position().IsFinite() {
		return frames.ITRS{}, fmt.Errorf("%w: %v overflows", ErrInvalidPosition, p.Position())
	}
	return out, nil
}

// TEMEToITRSMatrixChecked validates its inputs before calling TEMEToITRSMatrix.
func (e *Engine) TEMEToITRSMatrixChecked(t eop.UT1, xp, yp float64) (rotation.Matrix3, error) {
	if err := ValidateInputs(t, xp, yp); err != nil {
		return rotation.Matrix3{}, err
	}
	m := e.TEMEToITRSMatrix(t, xp, yp)
	if !m.IsRotation(rotationTolerance) {
		return rotation.Matrix3{}, fmt.Errorf("%w: matrix at UT1 (%v, %v) is not a rotation (det %g)", ErrInvalidEarthOrientationInput, t.Whole, t.Fraction, m.Det())
	}
	return m, nil
}

// ValidateOutputs reports the first position in ps with a NaN or infinite
// component, which happens when a finite input overflows.
func ValidateOutputs(ps []frames.ITRS) error {
	for i, p := range ps {
		if !p.Position().IsFinite() {
			return fmt.Errorf("%w: result %d overflows (%v)", ErrInvalidPosition, i, p.Position())
		}
	}
	return nil
}

// TEMEToITRSChecked validates and converts using the default engine.
func TEMEToITRSChecked(p frames.TEME, t eop.UT1, xp, yp float64) (frames.ITRS, error) {
	return defaultEngine.TEMEToITRSChecked(p, t, xp, yp)
}

// TEMEToITRSMatrixChecked validates and builds the matrix using the default engine.
func TEMEToITRSMatrixChecked(t eop.UT1, xp, yp float64) (rotation.Matrix3, error) {
	return defaultEngine.TEMEToITRSMatrixChecked(t, xp, yp)
}
