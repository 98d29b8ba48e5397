package transform

import (
	"math"

	"github.com/ZoussCity/stardome/internal/frames"
	"github.com/ZoussCity/stardome/internal/rotation"
)

// WGS-84 ellipsoid, kilometers to match SGP4 output.
const (
	wgs84A  = 6378.137              // semi-major axis (km)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

const (
	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi
)

// GeodeticPoint is a WGS-84 geodetic position: latitude and longitude in
// degrees, altitude in kilometers above the ellipsoid.
type GeodeticPoint struct {
	LatDeg, LonDeg, AltKm float64
}

// Observer is a ground site. Its ITRS position and the ITRS→SEZ rotation are
// computed once so they can be reused across many look-angle queries.
type Observer struct {
	Geodetic GeodeticPoint
	ITRS     frames.ITRS
	toSEZ    rotation.Matrix3
}

// LookAngles holds azimuth, elevation, and range from observer to target.
type LookAngles struct {
	AzimuthDeg   float64 // 0 = North, clockwise
	ElevationDeg float64 // 0 = horizon, 90 = zenith
	RangeKm      float64
}

// NewObserver builds an Observer from geodetic coordinates in degrees and
// altitude in kilometers above the WGS-84 ellipsoid.
func NewObserver(latDeg, lonDeg, altKm float64) Observer {
	lat := latDeg * deg2rad
	lon := lonDeg * deg2rad

	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	// Radius of curvature in the prime vertical.
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	pos := frames.Position{
		X: (n + altKm) * cosLat * cosLon,
		Y: (n + altKm) * cosLat * sinLon,
		Z: (n*(1-wgs84E2) + altKm) * sinLat,
	}

	// Frame rotations R2(90°-lat)·R3(lon), expressed as active rotations.
	toSEZ := rotation.Rotation(rotation.Y, lat-math.Pi/2).Mul(rotation.Rotation(rotation.Z, -lon))

	return Observer{
		Geodetic: GeodeticPoint{LatDeg: latDeg, LonDeg: lonDeg, AltKm: altKm},
		ITRS:     frames.NewITRS(pos),
		toSEZ:    toSEZ,
	}
}

// Geodetic converts an ITRS position in kilometers to WGS-84 geodetic
// coordinates with Bowring's iteration. Five passes are enough for any
// orbit above the surface.
func Geodetic(p frames.ITRS) GeodeticPoint {
	r := p.Position()
	lon := math.Atan2(r.Y, r.X)
	rho := math.Hypot(r.X, r.Y)

	lat := math.Atan2(r.Z, rho*(1-wgs84E2))
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(r.Z+wgs84E2*n*sinLat, rho)
	}

	sinLat, cosLat := math.Sincos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = rho/cosLat - n
	} else {
		alt = math.Abs(r.Z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return GeodeticPoint{
		LatDeg: lat * rad2deg,
		LonDeg: lon * rad2deg,
		AltKm:  alt,
	}
}

// Look computes azimuth, elevation, and range from obs to an ITRS target,
// through the topocentric South-East-Zenith frame (Vallado §4.4).
func (obs Observer) Look(target frames.ITRS) LookAngles {
	t, o := target.Position(), obs.ITRS.Position()
	sez := obs.toSEZ.Apply(frames.Position{X: t.X - o.X, Y: t.Y - o.Y, Z: t.Z - o.Z})

	rng := sez.Norm()
	el := math.Asin(math.Max(-1, math.Min(1, sez.Z/rng)))

	// North is -South in SEZ.
	az := math.Atan2(sez.Y, -sez.X)
	if az < 0 {
		az += 2 * math.Pi
	}

	return LookAngles{
		AzimuthDeg:   az * rad2deg,
		ElevationDeg: el * rad2deg,
		RangeKm:      rng,
	}
}
