package eop

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Parse reads Celestrak EOP-All style data from r.
//
// Data rows are whitespace separated:
//
//	YYYY MM DD MJD x(") y(") UT1-UTC(s) LOD(s) dPsi dEps dX dY DAT
//
// Rows between BEGIN PREDICTED and END PREDICTED are flagged as predicted.
// Header lines, comments and the BEGIN/END markers of other sections are
// ignored. Malformed rows are skipped with a warning log. The result is
// sorted by MJD with duplicates removed (last one wins).
func Parse(r io.Reader, logger *slog.Logger) ([]Entry, error) {
	scanner := bufio.NewScanner(r)

	var entries []Entry
	predicted := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "BEGIN "):
			predicted = strings.Contains(line, "PREDICTED")
			continue
		case strings.HasPrefix(line, "END "):
			predicted = false
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 7 || !isYear(fields[0]) {
			// Header keywords such as VERSION or NUM_OBSERVED_POINTS.
			continue
		}

		e, err := parseRow(fields)
		if err != nil {
			logger.Warn("skipping malformed EOP row", "line", lineNo, "error", err)
			continue
		}
		e.Predicted = predicted
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading EOP data: %w", err)
	}

	return dedupe(entries), nil
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

func parseRow(fields []string) (Entry, error) {
	ints := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return Entry{}, fmt.Errorf("invalid date field %q: %w", fields[i], err)
		}
		ints[i] = n
	}
	year, month, day := ints[0], ints[1], ints[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Entry{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}

	nums := make([]float64, 0, len(fields)-3)
	for _, f := range fields[3:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("invalid numeric field %q: %w", f, err)
		}
		nums = append(nums, v)
	}

	e := Entry{
		Date:  time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		MJD:   nums[0],
		Polar: PolarMotionFromArcsec(nums[1], nums[2]),
		DUT1:  nums[3],
	}
	if len(nums) > 4 {
		e.LOD = nums[4]
	}
	// DAT is the last column of a full row.
	if len(nums) >= 10 {
		e.DAT = int(nums[9])
	}

	if want := MJD(e.Date); math.Abs(want-e.MJD) > 1e-6 {
		return Entry{}, fmt.Errorf("MJD %.1f does not match date %s (want %.1f)", e.MJD, e.Date.Format("2006-01-02"), want)
	}
	return e, nil
}

func dedupe(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].MJD < entries[j].MJD
	})
	out := entries[:0]
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].MJD == e.MJD {
			out[n-1] = e
			continue
		}
		out = append(out, e)
	}
	return out
}

// NewDataset builds a Dataset from parsed entries.
func NewDataset(source string, fetchedAt time.Time, entries []Entry) (*Dataset, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no EOP entries")
	}
	return &Dataset{
		Source:    source,
		FetchedAt: fetchedAt,
		Range: MJDRange{
			Min: entries[0].MJD,
			Max: entries[len(entries)-1].MJD,
		},
		Entries: entries,
	}, nil
}
