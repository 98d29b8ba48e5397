package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ZoussCity/stardome/internal/transform"
)

// MatrixResult is the output of the matrix command.
type MatrixResult struct {
	UT1    [2]float64 `json:"ut1"`
	Xp     float64    `json:"xp"`
	Yp     float64    `json:"yp"`
	GMST   float64    `json:"gmst"`
	Matrix []float64  `json:"matrix"`
}

// WriteText prints the matrix as three rows.
func (r MatrixResult) WriteText(w io.Writer) {
	for i := 0; i < 3; i++ {
		fmt.Fprintf(w, "%+.15f %+.15f %+.15f\n", r.Matrix[3*i], r.Matrix[3*i+1], r.Matrix[3*i+2])
	}
}

// NewMatrixCommand creates the matrix command.
func NewMatrixCommand(rootOpts *RootOptions) *cobra.Command {
	var flags epochFlags

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the TEME→ITRS rotation matrix for an epoch",
		Example: `  framectl matrix --jd 2453101.5 --fraction 0.3274067829525463 --xp -0.140682 --yp 0.333309
  framectl matrix --time 2024-03-01T00:00:00Z --eop EOP-All.txt --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(&flags, rootOpts, cmd)
		},
	}

	addEpochFlags(cmd, &flags)
	return cmd
}

func runMatrix(flags *epochFlags, rootOpts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	var in epochInput
	flags.apply(cmd, &in)
	ep, err := in.resolve(cliLogger(rootOpts, cmd))
	if err != nil {
		return formatter.Fail(err)
	}

	m, err := transform.TEMEToITRSMatrixChecked(ep.UT1, ep.Xp, ep.Yp)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitFailure, "matrix failed", err))
	}
	formatter.VerboseLog("det=%.15f", m.Det())

	return formatter.Success(MatrixResult{
		UT1:    [2]float64{ep.UT1.Whole, ep.UT1.Fraction},
		Xp:     ep.Xp,
		Yp:     ep.Yp,
		GMST:   transform.GMST82(ep.UT1),
		Matrix: m.Rows(),
	})
}
