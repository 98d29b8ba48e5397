// Package eop supplies Earth orientation: UT1 epochs, polar motion, the
// numeric routines that turn them into angles and matrices, and an IERS
// data provider that looks both up for a UTC instant.
package eop

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// j2000 is the Julian Date of the J2000.0 epoch.
const j2000 = 2451545.0

// mjdOffset converts Julian Date to Modified Julian Date.
const mjdOffset = 2400000.5

// UT1 is a Julian Date on the UT1 time scale, split in two parts to keep
// precision. Any split is valid; the usual one is the JD at 0h plus the
// fraction of the day.
type UT1 struct {
	Whole    float64
	Fraction float64
}

// NewUT1 returns the two-part UT1 date whole+fraction.
func NewUT1(whole, fraction float64) UT1 {
	return UT1{Whole: whole, Fraction: fraction}
}

// JD returns the date as a single Julian Date.
func (u UT1) JD() float64 {
	return u.Whole + u.Fraction
}

// IsFinite reports whether both parts are finite.
func (u UT1) IsFinite() bool {
	return !math.IsNaN(u.Whole) && !math.IsInf(u.Whole, 0) &&
		!math.IsNaN(u.Fraction) && !math.IsInf(u.Fraction, 0)
}

// UT1FromTime converts a UTC instant and UT1-UTC offset to a two-part UT1 date.
// Whole is the Julian Date of 0h on the (UT1) calendar day; Fraction is the
// elapsed part of that day.
func UT1FromTime(t time.Time, dut1 time.Duration) UT1 {
	t = t.UTC().Add(dut1)
	whole := julian.CalendarGregorianToJD(t.Year(), int(t.Month()), float64(t.Day()))

	sec := float64(t.Hour()*3600+t.Minute()*60+t.Second()) + float64(t.Nanosecond())/1e9
	return UT1{Whole: whole, Fraction: sec / 86400.0}
}

// DUT1 converts a UT1-UTC value in seconds to a time.Duration.
func DUT1(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// MJD returns the Modified Julian Date of a UTC instant.
func MJD(t time.Time) float64 {
	return julian.TimeToJD(t.UTC()) - mjdOffset
}
