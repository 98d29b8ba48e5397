package eop

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrNoDataset is returned when no EOP data has been loaded.
	ErrNoDataset = errors.New("no EOP dataset loaded")

	// ErrOutOfRange is returned for instants outside the loaded table.
	ErrOutOfRange = errors.New("instant outside EOP table range")
)

// At returns the Earth orientation at UTC instant t, interpolating linearly
// between the daily rows that bracket it.
//
// UT1-UTC steps by one second across a leap second; the step is removed
// (using the DAT column) before interpolating so the result stays smooth
// until the end of the leap day. Rows without a DAT column get no
// correction.
func (d *Dataset) At(t time.Time) (Orientation, error) {
	if d == nil || len(d.Entries) == 0 {
		return Orientation{}, ErrNoDataset
	}

	mjd := MJD(t)
	if mjd < d.Range.Min || mjd > d.Range.Max {
		return Orientation{}, fmt.Errorf("%w: MJD %.5f not in [%.1f, %.1f]", ErrOutOfRange, mjd, d.Range.Min, d.Range.Max)
	}

	// First entry strictly after mjd.
	i := sort.Search(len(d.Entries), func(i int) bool { return d.Entries[i].MJD > mjd })
	if i == len(d.Entries) {
		// mjd == Range.Max
		last := d.Entries[i-1]
		return orientationAt(t, last.Polar, last.DUT1, last.Predicted), nil
	}
	e0, e1 := d.Entries[i-1], d.Entries[i]

	f := (mjd - e0.MJD) / (e1.MJD - e0.MJD)
	next := e1.DUT1
	if e0.DAT != 0 && e1.DAT != 0 {
		next -= float64(e1.DAT - e0.DAT)
	}

	pm := PolarMotion{
		Xp: lerp(e0.Polar.Xp, e1.Polar.Xp, f),
		Yp: lerp(e0.Polar.Yp, e1.Polar.Yp, f),
	}
	return orientationAt(t, pm, lerp(e0.DUT1, next, f), e0.Predicted || e1.Predicted), nil
}

func orientationAt(t time.Time, pm PolarMotion, dut1 float64, predicted bool) Orientation {
	return Orientation{
		UT1:       UT1FromTime(t, DUT1(dut1)),
		Polar:     pm,
		DUT1:      dut1,
		Predicted: predicted,
	}
}

func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}
