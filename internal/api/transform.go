package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ZoussCity/stardome/internal/eop"
	"github.com/ZoussCity/stardome/internal/frames"
	"github.com/ZoussCity/stardome/internal/httputil"
	"github.com/ZoussCity/stardome/internal/metrics"
	"github.com/ZoussCity/stardome/internal/transform"
)

const (
	methodDirect = "direct"
	methodMatrix = "matrix"

	// Each position costs at most ~80 bytes of JSON.
	bytesPerPosition = 96
	minBodyBytes     = 4096
)

// transformRequest selects the epoch either as a two-part UT1 Julian date
// or as a UTC instant. With time and no xp/yp, Earth orientation comes from
// the loaded EOP table.
type transformRequest struct {
	UT1       *[2]float64  `json:"ut1,omitempty"`
	Time      *time.Time   `json:"time,omitempty"`
	DUT1      *float64     `json:"dut1,omitempty"` // seconds, with time and explicit xp/yp
	Xp        *float64     `json:"xp,omitempty"`   // radians
	Yp        *float64     `json:"yp,omitempty"`   // radians
	Method    string       `json:"method,omitempty"`
	Positions [][3]float64 `json:"positions"`
}

type eopInfo struct {
	Source    string  `json:"source"`
	DUT1      float64 `json:"dut1"`
	Predicted bool    `json:"predicted"`
}

type transformResponse struct {
	Frame     frames.Frame `json:"frame"`
	Method    string       `json:"method"`
	UT1       [2]float64   `json:"ut1"`
	Xp        float64      `json:"xp"`
	Yp        float64      `json:"yp"`
	GMST      float64      `json:"gmst"`
	EOP       *eopInfo     `json:"eop,omitempty"`
	Matrix    []float64    `json:"matrix,omitempty"`
	Positions [][3]float64 `json:"positions"`
}

// epoch is a fully resolved set of Earth orientation inputs.
type epoch struct {
	ut1    eop.UT1
	xp, yp float64
	info   *eopInfo
}

// requestError carries the HTTP status a resolution failure maps to.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, err: fmt.Errorf(format, args...)}
}

func writeRequestError(w http.ResponseWriter, err error) {
	var re *requestError
	if errors.As(err, &re) {
		httputil.WriteError(w, re.status, re.Error())
		return
	}
	httputil.WriteError(w, http.StatusInternalServerError, err.Error())
}

// resolveEpoch turns the request's time fields into UT1 and polar motion.
func resolveEpoch(req transformRequest, store *eop.Store) (epoch, error) {
	if (req.Xp == nil) != (req.Yp == nil) {
		return epoch{}, badRequest("xp and yp must be given together")
	}

	switch {
	case req.UT1 != nil && req.Time != nil:
		return epoch{}, badRequest("give either ut1 or time, not both")

	case req.UT1 != nil:
		if req.DUT1 != nil {
			return epoch{}, badRequest("dut1 applies only with time")
		}
		ep := epoch{ut1: eop.NewUT1(req.UT1[0], req.UT1[1])}
		if req.Xp != nil {
			ep.xp, ep.yp = *req.Xp, *req.Yp
		}
		return ep, nil

	case req.Time != nil && req.Xp != nil:
		var dut1 float64
		if req.DUT1 != nil {
			dut1 = *req.DUT1
		}
		return epoch{
			ut1: eop.UT1FromTime(*req.Time, eop.DUT1(dut1)),
			xp:  *req.Xp,
			yp:  *req.Yp,
		}, nil

	case req.Time != nil:
		if req.DUT1 != nil {
			return epoch{}, badRequest("dut1 requires explicit xp and yp")
		}
		return epochFromStore(*req.Time, store)

	default:
		return epoch{}, badRequest("one of ut1 or time is required")
	}
}

func epochFromStore(t time.Time, store *eop.Store) (epoch, error) {
	ds := store.Get()
	o, err := ds.At(t)
	switch {
	case errors.Is(err, eop.ErrNoDataset):
		return epoch{}, &requestError{status: http.StatusServiceUnavailable, err: err}
	case errors.Is(err, eop.ErrOutOfRange):
		return epoch{}, &requestError{status: http.StatusUnprocessableEntity, err: err}
	case err != nil:
		return epoch{}, err
	}
	return epoch{
		ut1:  o.UT1,
		xp:   o.Polar.Xp,
		yp:   o.Polar.Yp,
		info: &eopInfo{Source: ds.Source, DUT1: o.DUT1, Predicted: o.Predicted},
	}, nil
}

func transformHandler(logger *slog.Logger, deps Deps) http.HandlerFunc {
	maxBody := int64(max(minBodyBytes, deps.MaxPositions*bytesPerPosition))

	return func(w http.ResponseWriter, r *http.Request) {
		var req transformRequest
		if err := httputil.DecodeJSON(w, r, &req, maxBody); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		method := req.Method
		if method == "" {
			method = methodDirect
		}
		if method != methodDirect && method != methodMatrix {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("method must be %q or %q", methodDirect, methodMatrix))
			return
		}

		if deps.MaxPositions > 0 && len(req.Positions) > deps.MaxPositions {
			httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"error":         fmt.Sprintf("too many positions: %d", len(req.Positions)),
				"max_positions": deps.MaxPositions,
			})
			return
		}

		ep, err := resolveEpoch(req, deps.Store)
		if err != nil {
			metrics.RecordTransform(method, 0, 0, err)
			writeRequestError(w, err)
			return
		}
		if err := transform.ValidateInputs(ep.ut1, ep.xp, ep.yp); err != nil {
			metrics.RecordTransform(method, 0, 0, err)
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		in := make([]frames.TEME, len(req.Positions))
		for i, p := range req.Positions {
			in[i] = frames.NewTEME(frames.FromArray(p))
		}

		start := time.Now()
		resp := transformResponse{
			Frame:  frames.FrameITRS,
			Method: method,
			UT1:    [2]float64{ep.ut1.Whole, ep.ut1.Fraction},
			Xp:     ep.xp,
			Yp:     ep.yp,
			GMST:   deps.Engine.GMST82(ep.ut1),
			EOP:    ep.info,
		}

		var out []frames.ITRS
		switch method {
		case methodMatrix:
			m := deps.Engine.TEMEToITRSMatrix(ep.ut1, ep.xp, ep.yp)
			resp.Matrix = m.Rows()
			out, err = deps.Pool.ApplyMatrix(r.Context(), m, in)
			if err != nil {
				metrics.RecordTransform(method, 0, 0, err)
				logger.Warn("transform aborted", "component", "api", "error", err)
				httputil.WriteError(w, http.StatusServiceUnavailable, "request cancelled")
				return
			}
		default:
			out = make([]frames.ITRS, len(in))
			for i, p := range in {
				out[i] = deps.Engine.TEMEToITRS(p, ep.ut1, ep.xp, ep.yp)
			}
		}
		if err := transform.ValidateOutputs(out); err != nil {
			metrics.RecordTransform(method, 0, 0, err)
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		metrics.RecordTransform(method, len(out), time.Since(start), nil)

		resp.Positions = make([][3]float64, len(out))
		for i, p := range out {
			resp.Positions[i] = p.Position().Array()
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

type matrixResponse struct {
	UT1    [2]float64 `json:"ut1"`
	Xp     float64    `json:"xp"`
	Yp     float64    `json:"yp"`
	GMST   float64    `json:"gmst"`
	Matrix []float64  `json:"matrix"`
}

// matrixHandler serves the TEME→ITRS matrix for ?jd=&fraction=&xp=&yp=.
// fraction, xp and yp default to zero.
func matrixHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Get("jd") == "" {
			httputil.WriteError(w, http.StatusBadRequest, "jd is required")
			return
		}
		vals := make(map[string]float64, 4)
		for _, name := range []string{"jd", "fraction", "xp", "yp"} {
			s := q.Get(name)
			if s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, s))
				return
			}
			vals[name] = v
		}

		ut1 := eop.NewUT1(vals["jd"], vals["fraction"])
		m, err := deps.Engine.TEMEToITRSMatrixChecked(ut1, vals["xp"], vals["yp"])
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		httputil.WriteJSON(w, http.StatusOK, matrixResponse{
			UT1:    [2]float64{ut1.Whole, ut1.Fraction},
			Xp:     vals["xp"],
			Yp:     vals["yp"],
			GMST:   deps.Engine.GMST82(ut1),
			Matrix: m.Rows(),
		})
	}
}
