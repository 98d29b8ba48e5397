package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZoussCity/stardome/internal/eop"
)

// OrientationResult is the output of the eop command.
type OrientationResult struct {
	Source    string     `json:"source"`
	Time      time.Time  `json:"time"`
	MJD       float64    `json:"mjd"`
	UT1       [2]float64 `json:"ut1"`
	DUT1      float64    `json:"dut1"`
	XpArcsec  float64    `json:"xp_arcsec"`
	YpArcsec  float64    `json:"yp_arcsec"`
	Predicted bool       `json:"predicted"`
}

// WriteText prints the interpolated values.
func (r OrientationResult) WriteText(w io.Writer) {
	fmt.Fprintf(w, "mjd       %.6f\n", r.MJD)
	fmt.Fprintf(w, "dut1      %+.7f s\n", r.DUT1)
	fmt.Fprintf(w, "xp        %+.6f arcsec\n", r.XpArcsec)
	fmt.Fprintf(w, "yp        %+.6f arcsec\n", r.YpArcsec)
	fmt.Fprintf(w, "predicted %t\n", r.Predicted)
}

// NewEOPCommand creates the eop command.
func NewEOPCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "eop FILE",
		Short:         "Interpolate Earth orientation parameters from an EOP file",
		Example:       `  framectl eop EOP-All.txt --time 2024-03-01T12:00:00Z`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEOP(args[0], at, rootOpts, cmd)
		},
	}

	cmd.Flags().StringVar(&at, "time", "", "UTC instant (RFC3339), default now")
	return cmd
}

func runEOP(file, at string, rootOpts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	t := time.Now().UTC()
	if at != "" {
		parsed, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "invalid --time", err))
		}
		t = parsed.UTC()
	}

	ds, err := loadEOPFile(file, cliLogger(rootOpts, cmd))
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("loaded %d entries, MJD %.1f to %.1f", len(ds.Entries), ds.Range.Min, ds.Range.Max)

	o, err := ds.At(t)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitFailure, "EOP lookup failed", err))
	}
	xs, ys := o.Polar.Arcsec()
	return formatter.Success(OrientationResult{
		Source:    ds.Source,
		Time:      t,
		MJD:       eop.MJD(t),
		UT1:       [2]float64{o.UT1.Whole, o.UT1.Fraction},
		DUT1:      o.DUT1,
		XpArcsec:  xs,
		YpArcsec:  ys,
		Predicted: o.Predicted,
	})
}
