package eop

import "time"

// Entry is one daily row of Earth orientation parameters at 0h UTC.
type Entry struct {
	Date      time.Time
	MJD       float64
	Polar     PolarMotion // radians
	DUT1      float64     // UT1-UTC, seconds
	LOD       float64     // excess length of day, seconds
	DAT       int         // TAI-UTC, whole seconds; 0 if the row has no DAT column
	Predicted bool
}

// MJDRange is the first and last MJD covered by a dataset.
type MJDRange struct {
	Min float64
	Max float64
}

// Dataset is a complete, immutable EOP table. Entries are sorted by MJD.
type Dataset struct {
	Source    string
	FetchedAt time.Time
	Range     MJDRange
	Entries   []Entry
}

// Orientation is the Earth orientation at one instant, ready for the
// transform engine.
type Orientation struct {
	UT1       UT1
	Polar     PolarMotion
	DUT1      float64 // seconds
	Predicted bool
}
