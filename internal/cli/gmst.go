package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/ZoussCity/stardome/internal/transform"
)

// GMSTResult is the output of the gmst command.
type GMSTResult struct {
	UT1     [2]float64 `json:"ut1"`
	Radians float64    `json:"radians"`
	Degrees float64    `json:"degrees"`
	Hours   float64    `json:"hours"`
}

// WriteText prints the angle in radians, degrees and hours.
func (r GMSTResult) WriteText(w io.Writer) {
	fmt.Fprintf(w, "%.15f rad  %.10f deg  %.10f h\n", r.Radians, r.Degrees, r.Hours)
}

// NewGMSTCommand creates the gmst command.
func NewGMSTCommand(rootOpts *RootOptions) *cobra.Command {
	var flags epochFlags

	cmd := &cobra.Command{
		Use:           "gmst",
		Short:         "Print Greenwich mean sidereal time (IAU 1982) for an epoch",
		Example:       `  framectl gmst --jd 2451545`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGMST(&flags, rootOpts, cmd)
		},
	}

	addEpochFlags(cmd, &flags)
	return cmd
}

func runGMST(flags *epochFlags, rootOpts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	var in epochInput
	flags.apply(cmd, &in)
	ep, err := in.resolve(cliLogger(rootOpts, cmd))
	if err != nil {
		return formatter.Fail(err)
	}
	if err := transform.ValidateInputs(ep.UT1, 0, 0); err != nil {
		return formatter.Fail(WrapExitError(ExitFailure, "gmst failed", err))
	}

	theta := transform.GMST82(ep.UT1)
	return formatter.Success(GMSTResult{
		UT1:     [2]float64{ep.UT1.Whole, ep.UT1.Fraction},
		Radians: theta,
		Degrees: theta * 180 / math.Pi,
		Hours:   theta * 12 / math.Pi,
	})
}
