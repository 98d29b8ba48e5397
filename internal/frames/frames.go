// Package frames binds raw 3-vectors to a named reference frame.
//
// Each frame is its own nominal type wrapping a Position. There is no
// arithmetic between frame types and no implicit conversion: the only way
// from one frame to another is a named transform function (see package
// transform). All types are plain values, safe to copy and share.
//
// Units are not tracked; positions produced by SGP4 are in kilometers and
// every transform in this repository preserves whatever unit it is given.
package frames

import "math"

// Position is a Cartesian 3-vector (x, y, z).
type Position struct {
	X, Y, Z float64
}

// Norm returns the Euclidean length of the vector.
func (p Position) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// IsFinite reports whether every component is neither NaN nor infinite.
func (p Position) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
}

// Array returns the components as [x, y, z].
func (p Position) Array() [3]float64 {
	return [3]float64{p.X, p.Y, p.Z}
}

// FromArray builds a Position from [x, y, z].
func FromArray(a [3]float64) Position {
	return Position{X: a[0], Y: a[1], Z: a[2]}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Frame names a reference frame. It is used for labels in logs, metrics and
// wire formats, never to change how a value is interpreted.
type Frame string

// Frame names, one per tagged position type.
const (
	FrameBCRS Frame = "BCRS"
	FrameICRS Frame = "ICRS"
	FrameGCRS Frame = "GCRS"
	FrameITRS Frame = "ITRS"
	FrameTEME Frame = "TEME"
)

// BCRS is a position in the Barycentric Celestial Reference System.
type BCRS struct{ p Position }

// ICRS is a position in the International Celestial Reference System.
type ICRS struct{ p Position }

// GCRS is a position in the Geocentric Celestial Reference System.
type GCRS struct{ p Position }

// ITRS is a position in the International Terrestrial Reference System.
type ITRS struct{ p Position }

// TEME is a position in the True Equator, Mean Equinox frame used by SGP4.
type TEME struct{ p Position }

// NewBCRS tags p as a BCRS position.
func NewBCRS(p Position) BCRS { return BCRS{p: p} }

// NewICRS tags p as an ICRS position.
func NewICRS(p Position) ICRS { return ICRS{p: p} }

// NewGCRS tags p as a GCRS position.
func NewGCRS(p Position) GCRS { return GCRS{p: p} }

// NewITRS tags p as an ITRS position.
func NewITRS(p Position) ITRS { return ITRS{p: p} }

// NewTEME tags p as a TEME position.
func NewTEME(p Position) TEME { return TEME{p: p} }

// Position returns the untagged vector.
func (f BCRS) Position() Position { return f.p }

// Position returns the untagged vector.
func (f ICRS) Position() Position { return f.p }

// Position returns the untagged vector.
func (f GCRS) Position() Position { return f.p }

// Position returns the untagged vector.
func (f ITRS) Position() Position { return f.p }

// Position returns the untagged vector.
func (f TEME) Position() Position { return f.p }

// Frame returns FrameBCRS.
func (BCRS) Frame() Frame { return FrameBCRS }

// Frame returns FrameICRS.
func (ICRS) Frame() Frame { return FrameICRS }

// Frame returns FrameGCRS.
func (GCRS) Frame() Frame { return FrameGCRS }

// Frame returns FrameITRS.
func (ITRS) Frame() Frame { return FrameITRS }

// Frame returns FrameTEME.
func (TEME) Frame() Frame { return FrameTEME }
