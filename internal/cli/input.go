package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ZoussCity/stardome/internal/eop"
	"github.com/ZoussCity/stardome/internal/frames"
)

// epochInput is the epoch and Earth orientation part of an input file.
// Polar motion is in arcseconds.
type epochInput struct {
	UT1  []float64 `yaml:"ut1"`
	Time string    `yaml:"time"`
	DUT1 *float64  `yaml:"dut1"`
	Xp   *float64  `yaml:"xp"`
	Yp   *float64  `yaml:"yp"`
	EOP  string    `yaml:"eop"`
}

// transformInput is the document read by --input. YAML and JSON both parse.
//
//	time: 2004-04-06T07:51:28.386Z
//	dut1: -0.439961
//	xp: -0.140682
//	yp: 0.333309
//	method: matrix
//	positions:
//	  - [-1033.4793830, 7901.2952754, 6380.3565958]
type transformInput struct {
	Epoch     epochInput  `yaml:",inline"`
	Method    string      `yaml:"method"`
	Positions [][]float64 `yaml:"positions"`
}

// epochFlags are the flags shared by every command that needs an epoch.
type epochFlags struct {
	jd       float64
	fraction float64
	time     string
	dut1     float64
	xp       float64
	yp       float64
	eopFile  string
}

func addEpochFlags(cmd *cobra.Command, f *epochFlags) {
	cmd.Flags().Float64Var(&f.jd, "jd", 0, "UT1 Julian date, whole part")
	cmd.Flags().Float64Var(&f.fraction, "fraction", 0, "UT1 Julian date, fractional part")
	cmd.Flags().StringVar(&f.time, "time", "", "UTC instant (RFC3339), instead of --jd")
	cmd.Flags().Float64Var(&f.dut1, "dut1", 0, "UT1-UTC in seconds, with --time")
	cmd.Flags().Float64Var(&f.xp, "xp", 0, "polar motion x in arcseconds")
	cmd.Flags().Float64Var(&f.yp, "yp", 0, "polar motion y in arcseconds")
	cmd.Flags().StringVar(&f.eopFile, "eop", "", "EOP file in Celestrak EOP-All layout; replaces --dut1, --xp and --yp")
}

// apply overlays the flags the user set on in.
func (f *epochFlags) apply(cmd *cobra.Command, in *epochInput) {
	flags := cmd.Flags()
	if flags.Changed("jd") || flags.Changed("fraction") {
		if len(in.UT1) != 2 {
			in.UT1 = []float64{0, 0}
		}
		if flags.Changed("jd") {
			in.UT1[0] = f.jd
		}
		if flags.Changed("fraction") {
			in.UT1[1] = f.fraction
		}
	}
	if flags.Changed("time") {
		in.Time = f.time
	}
	if flags.Changed("dut1") {
		in.DUT1 = &f.dut1
	}
	if flags.Changed("xp") {
		in.Xp = &f.xp
	}
	if flags.Changed("yp") {
		in.Yp = &f.yp
	}
	if flags.Changed("eop") {
		in.EOP = f.eopFile
	}
}

// resolvedEpoch holds UT1 and polar motion in radians.
type resolvedEpoch struct {
	UT1       eop.UT1
	Xp, Yp    float64
	DUT1      *float64
	Predicted bool
	Source    string
}

func (in epochInput) resolve(logger *slog.Logger) (resolvedEpoch, error) {
	hasUT1, hasTime := in.UT1 != nil, in.Time != ""
	switch {
	case hasUT1 && hasTime:
		return resolvedEpoch{}, NewExitError(ExitCommandError, "give either --jd or --time, not both")
	case !hasUT1 && !hasTime:
		return resolvedEpoch{}, NewExitError(ExitCommandError, "one of --jd or --time is required")
	}

	var xs, ys float64
	if in.Xp != nil {
		xs = *in.Xp
	}
	if in.Yp != nil {
		ys = *in.Yp
	}
	pm := eop.PolarMotionFromArcsec(xs, ys)

	if hasUT1 {
		if len(in.UT1) != 2 {
			return resolvedEpoch{}, NewExitError(ExitCommandError, fmt.Sprintf("ut1 needs two values, got %d", len(in.UT1)))
		}
		if in.DUT1 != nil || in.EOP != "" {
			return resolvedEpoch{}, NewExitError(ExitCommandError, "--dut1 and --eop apply only with --time")
		}
		return resolvedEpoch{UT1: eop.NewUT1(in.UT1[0], in.UT1[1]), Xp: pm.Xp, Yp: pm.Yp}, nil
	}

	t, err := time.Parse(time.RFC3339Nano, in.Time)
	if err != nil {
		return resolvedEpoch{}, WrapExitError(ExitCommandError, "invalid --time", err)
	}

	if in.EOP == "" {
		var dut1 float64
		if in.DUT1 != nil {
			dut1 = *in.DUT1
		}
		return resolvedEpoch{
			UT1:  eop.UT1FromTime(t, eop.DUT1(dut1)),
			Xp:   pm.Xp,
			Yp:   pm.Yp,
			DUT1: &dut1,
		}, nil
	}

	if in.DUT1 != nil || in.Xp != nil || in.Yp != nil {
		return resolvedEpoch{}, NewExitError(ExitCommandError, "--eop replaces --dut1, --xp and --yp")
	}
	ds, err := loadEOPFile(in.EOP, logger)
	if err != nil {
		return resolvedEpoch{}, err
	}
	o, err := ds.At(t)
	if err != nil {
		return resolvedEpoch{}, WrapExitError(ExitFailure, "EOP lookup failed", err)
	}
	return resolvedEpoch{
		UT1:       o.UT1,
		Xp:        o.Polar.Xp,
		Yp:        o.Polar.Yp,
		DUT1:      &o.DUT1,
		Predicted: o.Predicted,
		Source:    ds.Source,
	}, nil
}

func loadEOPFile(path string, logger *slog.Logger) (*eop.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open EOP file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "stat EOP file", err)
	}
	entries, err := eop.Parse(f, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "parse EOP file", err)
	}
	ds, err := eop.NewDataset(path, info.ModTime(), entries)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load EOP file", err)
	}
	return ds, nil
}

// readInput decodes the --input document; "-" reads stdin.
func readInput(cmd *cobra.Command, path string) (transformInput, error) {
	var in transformInput
	if path == "" {
		return in, nil
	}

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return in, WrapExitError(ExitCommandError, "open input", err)
		}
		defer f.Close()
		r = f
	}

	if err := yaml.NewDecoder(r).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return in, WrapExitError(ExitCommandError, "decode input", err)
	}
	return in, nil
}

// parsePosition parses "x,y,z" in kilometers.
func parsePosition(s string) (frames.Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return frames.Position{}, fmt.Errorf("position %q: want x,y,z", s)
	}
	var v [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return frames.Position{}, fmt.Errorf("position %q: %w", s, err)
		}
		v[i] = f
	}
	return frames.FromArray(v), nil
}

func toTEME(rows [][]float64, flags []string) ([]frames.TEME, error) {
	out := make([]frames.TEME, 0, len(rows)+len(flags))
	for i, row := range rows {
		if len(row) != 3 {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("positions[%d]: want 3 components, got %d", i, len(row)))
		}
		out = append(out, frames.NewTEME(frames.FromArray([3]float64{row[0], row[1], row[2]})))
	}
	for _, s := range flags {
		p, err := parsePosition(s)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --pos", err)
		}
		out = append(out, frames.NewTEME(p))
	}
	return out, nil
}

func cliLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
