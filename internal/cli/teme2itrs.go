package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ZoussCity/stardome/internal/frames"
	"github.com/ZoussCity/stardome/internal/transform"
)

const (
	methodDirect = "direct"
	methodMatrix = "matrix"
)

// TEME2ITRSOptions holds flags for the teme2itrs command.
type TEME2ITRSOptions struct {
	Epoch     epochFlags
	Method    string
	Positions []string
	Input     string
}

// TransformResult is the output of teme2itrs.
type TransformResult struct {
	Frame     frames.Frame `json:"frame"`
	Method    string       `json:"method"`
	UT1       [2]float64   `json:"ut1"`
	Xp        float64      `json:"xp"`
	Yp        float64      `json:"yp"`
	GMST      float64      `json:"gmst"`
	DUT1      *float64     `json:"dut1,omitempty"`
	Predicted bool         `json:"predicted,omitempty"`
	Matrix    []float64    `json:"matrix,omitempty"`
	Positions [][3]float64 `json:"positions"`
}

// WriteText prints one "x y z" line per position, in kilometers.
func (r TransformResult) WriteText(w io.Writer) {
	for _, p := range r.Positions {
		fmt.Fprintf(w, "%.9f %.9f %.9f\n", p[0], p[1], p[2])
	}
}

// NewTEME2ITRSCommand creates the teme2itrs command.
func NewTEME2ITRSCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TEME2ITRSOptions{}

	cmd := &cobra.Command{
		Use:   "teme2itrs",
		Short: "Convert TEME positions to ITRS",
		Long: `Convert TEME positions (km) to ITRS.

Positions come from repeated --pos x,y,z flags, from an --input YAML/JSON
document, or both. Flags override the epoch fields of the document.

The direct method applies the three elemental rotations. The matrix method
builds one TEME→ITRS matrix and applies it to every position.`,
		Example: `  framectl teme2itrs --jd 2451545 --pos 7000,0,0
  framectl teme2itrs --time 2004-04-06T07:51:28.386Z --dut1 -0.439961 \
      --xp -0.140682 --yp 0.333309 --method matrix --pos=-1033.479,7901.295,6380.356
  framectl teme2itrs --input positions.yaml --eop EOP-All.txt --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTEME2ITRS(opts, rootOpts, cmd)
		},
	}

	addEpochFlags(cmd, &opts.Epoch)
	cmd.Flags().StringVar(&opts.Method, "method", methodDirect, "direct or matrix")
	cmd.Flags().StringArrayVar(&opts.Positions, "pos", nil, "TEME position x,y,z in km (repeatable)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "YAML or JSON input document (- for stdin)")

	return cmd
}

func runTEME2ITRS(opts *TEME2ITRSOptions, rootOpts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)
	logger := cliLogger(rootOpts, cmd)

	in, err := readInput(cmd, opts.Input)
	if err != nil {
		return formatter.Fail(err)
	}
	opts.Epoch.apply(cmd, &in.Epoch)

	method := in.Method
	if cmd.Flags().Changed("method") || method == "" {
		method = opts.Method
	}
	if method != methodDirect && method != methodMatrix {
		return formatter.Fail(NewExitError(ExitCommandError, fmt.Sprintf("method must be %q or %q", methodDirect, methodMatrix)))
	}

	positions, err := toTEME(in.Positions, opts.Positions)
	if err != nil {
		return formatter.Fail(err)
	}
	if len(positions) == 0 {
		return formatter.Fail(NewExitError(ExitCommandError, "no positions: use --pos or --input"))
	}

	ep, err := in.Epoch.resolve(logger)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("epoch: ut1=(%.1f, %.12f) xp=%g yp=%g rad", ep.UT1.Whole, ep.UT1.Fraction, ep.Xp, ep.Yp)
	if ep.Source != "" {
		formatter.VerboseLog("earth orientation from %s (predicted=%t)", ep.Source, ep.Predicted)
	}

	result := TransformResult{
		Frame:     frames.FrameITRS,
		Method:    method,
		UT1:       [2]float64{ep.UT1.Whole, ep.UT1.Fraction},
		Xp:        ep.Xp,
		Yp:        ep.Yp,
		GMST:      transform.GMST82(ep.UT1),
		DUT1:      ep.DUT1,
		Predicted: ep.Predicted,
		Positions: make([][3]float64, 0, len(positions)),
	}

	switch method {
	case methodMatrix:
		m, err := transform.TEMEToITRSMatrixChecked(ep.UT1, ep.Xp, ep.Yp)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitFailure, "transform failed", err))
		}
		result.Matrix = m.Rows()
		out := transform.ApplyMatrixBatch(m, positions)
		if err := transform.ValidateOutputs(out); err != nil {
			return formatter.Fail(WrapExitError(ExitFailure, "transform failed", err))
		}
		for _, p := range out {
			result.Positions = append(result.Positions, p.Position().Array())
		}
	default:
		for _, p := range positions {
			out, err := transform.TEMEToITRSChecked(p, ep.UT1, ep.Xp, ep.Yp)
			if err != nil {
				return formatter.Fail(WrapExitError(ExitFailure, "transform failed", err))
			}
			result.Positions = append(result.Positions, out.Position().Array())
		}
	}

	return formatter.Success(result)
}
