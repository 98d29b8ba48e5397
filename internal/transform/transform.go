// Package transform converts satellite positions from TEME (the SGP4 output
// frame) to ITRS (Earth-fixed).
//
// Two paths are provided and they are alternative approximations of the same
// transform:
//
//   - TEMEToITRS rotates by GMST82 about Z, then applies an elemental
//     polar-motion correction. Reference: Vallado et al., "Revisiting
//     Spacetrack Report #3", AIAA 2006-6753, p. 32.
//   - TEMEToITRSMatrix composes a celestial-to-terrestrial matrix with the
//     CIO-based routine, using GMST82 as the rotation angle and identity for
//     the celestial-to-intermediate matrix. TEME is not the CIO-based
//     intermediate frame, so the identity is an approximation.
//
// With zero polar motion the paths agree to rounding. With non-zero polar
// motion they apply the pole offsets about different axes and differ by
// meters at LEO radii, so they must not be expected to match.
//
// All functions are pure and safe for concurrent use. Non-finite inputs
// propagate to non-finite outputs; use the Checked variants to reject them.
package transform

import (
	"github.com/ZoussCity/stardome/internal/eop"
	"github.com/ZoussCity/stardome/internal/frames"
	"github.com/ZoussCity/stardome/internal/rotation"
)

// Engine performs TEME→ITRS conversions on top of a numeric backend.
// The zero value is not usable; use NewEngine.
type Engine struct {
	backend eop.Backend
}

// NewEngine returns an Engine using backend, or the native backend if nil.
func NewEngine(backend eop.Backend) *Engine {
	if backend == nil {
		backend = eop.Native{}
	}
	return &Engine{backend: backend}
}

var defaultEngine = NewEngine(nil)

// TEMEToITRS converts p using the default engine. See Engine.TEMEToITRS.
func TEMEToITRS(p frames.TEME, t eop.UT1, xp, yp float64) frames.ITRS {
	return defaultEngine.TEMEToITRS(p, t, xp, yp)
}

// TEMEToITRSMatrix builds the conversion matrix using the default engine.
// See Engine.TEMEToITRSMatrix.
func TEMEToITRSMatrix(t eop.UT1, xp, yp float64) rotation.Matrix3 {
	return defaultEngine.TEMEToITRSMatrix(t, xp, yp)
}

// GMST82 returns the sidereal angle the default engine rotates by at t.
func GMST82(t eop.UT1) float64 {
	return defaultEngine.GMST82(t)
}

// GMST82 returns the sidereal angle, in radians, both paths rotate by at t.
func (e *Engine) GMST82(t eop.UT1) float64 {
	return e.backend.GMST82(t)
}

// TEMEToITRS converts a TEME position to ITRS at UT1 epoch t with pole
// coordinates xp, yp (radians):
//
//	r_ITRS = W · R3 · r_TEME
//	W      = Rotation(X, -xp) · Rotation(Y, -yp)
//	R3     = Rotation(Z, -gmst)
//
// The negated angles are part of the model; changing any sign changes the
// output frame.
func (e *Engine) TEMEToITRS(p frames.TEME, t eop.UT1, xp, yp float64) frames.ITRS {
	gmst := e.backend.GMST82(t)

	w := rotation.Rotation(rotation.X, -xp).Mul(rotation.Rotation(rotation.Y, -yp))
	r3 := rotation.Rotation(rotation.Z, -gmst)

	return frames.NewITRS(w.Mul(r3).Apply(p.Position()))
}

// TEMEToITRSMatrix returns the TEME→ITRS matrix at UT1 epoch t, composed
// as rpom · R3(gmst) · rc2i with rc2i = I and the TIO locator s' = 0.
//
// Build it once per epoch and apply it to many positions with ApplyMatrix.
func (e *Engine) TEMEToITRSMatrix(t eop.UT1, xp, yp float64) rotation.Matrix3 {
	gst := e.backend.GMST82(t)
	rpom := e.backend.PolarMotion(xp, yp, 0)

	// TODO: replace the identity with a TEME→CIRS matrix (equation of the
	// equinoxes plus precession-nutation) once a GCRS path exists.
	rc2i := rotation.Identity()

	return e.backend.C2TCIO(rc2i, gst, rpom)
}

// ApplyMatrix applies a TEME→ITRS matrix to one position.
func ApplyMatrix(m rotation.Matrix3, p frames.TEME) frames.ITRS {
	return frames.NewITRS(m.Apply(p.Position()))
}

// ApplyMatrixBatch applies m to every position. The output has the same
// length and order as ps.
func ApplyMatrixBatch(m rotation.Matrix3, ps []frames.TEME) []frames.ITRS {
	out := make([]frames.ITRS, len(ps))
	for i, p := range ps {
		out[i] = frames.NewITRS(m.Apply(p.Position()))
	}
	return out
}
