package transform

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/ZoussCity/stardome/internal/eop"
	"github.com/ZoussCity/stardome/internal/frames"
	"github.com/ZoussCity/stardome/internal/rotation"
)

// Vallado, "Revisiting Spacetrack Report #3", Example: 2004-04-06
// 07:51:28.386009 UTC, dUT1 = -0.4399619 s, xp = -0.140682", yp = 0.333309".
var (
	valladoUT1   = eop.NewUT1(2453101.5, 0.3274067829525463)
	valladoPolar = eop.PolarMotionFromArcsec(-0.140682, 0.333309)
	valladoTEME  = frames.NewTEME(frames.Position{X: 5094.18016, Y: 6127.64465, Z: 6380.34453})

	// Published ITRF position for the same epoch (km).
	valladoITRF = frames.Position{X: -1033.4793830, Y: 7901.2952754, Z: 6380.3565958}
)

func dist(a, b frames.Position) float64 {
	return math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y) + (a.Z-b.Z)*(a.Z-b.Z))
}

func TestGMST82Vallado(t *testing.T) {
	got := GMST82(valladoUT1)
	want := 5.459562586617345
	if diff := math.Abs(got - want); diff > 1e-12 {
		t.Errorf("GMST82 = %.15f, want %.15f (diff=%.2e)", got, want, diff)
	}
}

func TestTEMEToITRS(t *testing.T) {
	tests := []struct {
		name   string
		teme   frames.Position
		ut1    eop.UT1
		xp, yp float64
		want   frames.Position
		tol    float64 // km
	}{
		{
			name: "J2000 equatorial, no polar motion",
			teme: frames.Position{X: 7000, Y: 0, Z: 0},
			ut1:  eop.NewUT1(2451545.0, 0),
			want: frames.Position{X: 1270.9175712278939, Y: 6883.659530158663, Z: 0},
			tol:  1e-6,
		},
		{
			name: "Vallado epoch with polar motion",
			teme: valladoTEME.Position(),
			ut1:  valladoUT1,
			xp:   valladoPolar.Xp,
			yp:   valladoPolar.Yp,
			want: frames.Position{X: -1033.485344452591, Y: 7901.301224782075, Z: 6380.348249019888},
			tol:  1e-6,
		},
		{
			name: "zero vector",
			ut1:  valladoUT1,
			xp:   valladoPolar.Xp,
			yp:   valladoPolar.Yp,
			want: frames.Position{},
			tol:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TEMEToITRS(frames.NewTEME(tt.teme), tt.ut1, tt.xp, tt.yp).Position()
			if d := dist(got, tt.want); d > tt.tol {
				t.Errorf("TEMEToITRS = %+v, want %+v (diff=%.3e km)", got, tt.want, d)
			}
		})
	}
}

// TestTEMEToITRSMatchesGoSatellite validates the direct path at zero polar
// motion against go-satellite's ECIToECEF, which rotates by GMST about Z.
func TestTEMEToITRSMatchesGoSatellite(t *testing.T) {
	tests := []struct {
		name string
		teme frames.Position
		time time.Time
	}{
		{"ISS-like LEO", frames.Position{X: 6778, Y: 0, Z: 0}, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)},
		{"Vallado position", valladoTEME.Position(), time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC)},
		{"polar orbit", frames.Position{X: 0, Y: 0, Z: 6978}, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"GEO", frames.Position{X: -29000, Y: 30000, Z: 12}, time.Date(2019, 3, 1, 18, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ut1 := eop.UT1FromTime(tt.time, 0)
			gmst := GMST82(ut1)

			ref := satellite.ECIToECEF(satellite.Vector3{X: tt.teme.X, Y: tt.teme.Y, Z: tt.teme.Z}, gmst)
			want := frames.Position{X: ref.X, Y: ref.Y, Z: ref.Z}

			got := TEMEToITRS(frames.NewTEME(tt.teme), ut1, 0, 0).Position()
			if d := dist(got, want); d > 1e-9 {
				t.Errorf("position mismatch:\n  ours: %+v\n  ref:  %+v\n  diff: %.3e km", got, want, d)
			}
		})
	}
}

func TestTEMEToITRSMatrixVallado(t *testing.T) {
	m := TEMEToITRSMatrix(valladoUT1, valladoPolar.Xp, valladoPolar.Yp)
	got := ApplyMatrix(m, valladoTEME).Position()

	want := frames.Position{X: -1033.479385964473, Y: 7901.295266284371, Z: 6380.356593051117}
	if d := dist(got, want); d > 1e-6 {
		t.Errorf("matrix path = %+v, want %+v (diff=%.3e km)", got, want, d)
	}

	// Within 5 cm of the published ITRF answer.
	if d := dist(got, valladoITRF); d > 5e-5 {
		t.Errorf("matrix path is %.3e km from published ITRF %+v", d, valladoITRF)
	}

	if !m.IsRotation(1e-12) {
		t.Errorf("TEMEToITRSMatrix is not a proper rotation: %v", m)
	}
}

// TestPathsAgreeWithoutPolarMotion checks the direct and matrix paths give
// the same answer when xp = yp = 0.
func TestPathsAgreeWithoutPolarMotion(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		ut1 := eop.NewUT1(2451545.0+float64(rng.Intn(20000)-10000)+0.5, rng.Float64())
		p := frames.NewTEME(frames.Position{
			X: (rng.Float64()*2 - 1) * 42000,
			Y: (rng.Float64()*2 - 1) * 42000,
			Z: (rng.Float64()*2 - 1) * 42000,
		})

		direct := TEMEToITRS(p, ut1, 0, 0).Position()
		viaMatrix := ApplyMatrix(TEMEToITRSMatrix(ut1, 0, 0), p).Position()

		if d := dist(direct, viaMatrix); d > 1e-9*math.Max(1, p.Position().Norm()) {
			t.Fatalf("case %d: direct %+v != matrix %+v (diff=%.3e)", i, direct, viaMatrix, d)
		}
	}
}

// TestPathsDifferWithPolarMotion documents that the two paths are not
// interchangeable once polar motion is non-zero.
func TestPathsDifferWithPolarMotion(t *testing.T) {
	direct := TEMEToITRS(valladoTEME, valladoUT1, valladoPolar.Xp, valladoPolar.Yp).Position()
	viaMatrix := ApplyMatrix(TEMEToITRSMatrix(valladoUT1, valladoPolar.Xp, valladoPolar.Yp), valladoTEME).Position()

	d := dist(direct, viaMatrix)
	if d < 1e-4 || d > 0.1 {
		t.Errorf("path difference = %.3e km, want meter level", d)
	}
}

func TestTEMEToITRSPreservesNorm(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		ut1 := eop.NewUT1(2440000.5+float64(rng.Intn(40000)), rng.Float64())
		xp := (rng.Float64()*2 - 1) * MaxPolarMotion
		yp := (rng.Float64()*2 - 1) * MaxPolarMotion
		p := frames.Position{
			X: (rng.Float64()*2 - 1) * 50000,
			Y: (rng.Float64()*2 - 1) * 50000,
			Z: (rng.Float64()*2 - 1) * 50000,
		}

		got := TEMEToITRS(frames.NewTEME(p), ut1, xp, yp).Position()
		if diff := math.Abs(got.Norm() - p.Norm()); diff > 1e-9*math.Max(1, p.Norm()) {
			t.Fatalf("case %d: |ITRS| = %.12f, |TEME| = %.12f", i, got.Norm(), p.Norm())
		}

		m := TEMEToITRSMatrix(ut1, xp, yp)
		if !m.IsRotation(1e-12) {
			t.Fatalf("case %d: matrix not orthonormal: %v", i, m)
		}
	}
}

func TestMatrixTransposeRoundTrip(t *testing.T) {
	m := TEMEToITRSMatrix(valladoUT1, valladoPolar.Xp, valladoPolar.Yp)
	itrs := ApplyMatrix(m, valladoTEME)

	back := m.Transpose().Apply(itrs.Position())
	if d := dist(back, valladoTEME.Position()); d > 1e-9 {
		t.Errorf("round trip = %+v, want %+v (diff=%.3e)", back, valladoTEME.Position(), d)
	}
}

func TestApplyMatrixBatch(t *testing.T) {
	m := TEMEToITRSMatrix(valladoUT1, valladoPolar.Xp, valladoPolar.Yp)

	in := []frames.TEME{
		valladoTEME,
		frames.NewTEME(frames.Position{X: 7000}),
		frames.NewTEME(frames.Position{}),
	}
	out := ApplyMatrixBatch(m, in)
	if len(out) != len(in) {
		t.Fatalf("got %d positions, want %d", len(out), len(in))
	}
	for i := range in {
		if want := ApplyMatrix(m, in[i]); out[i] != want {
			t.Errorf("position %d = %+v, want %+v", i, out[i], want)
		}
	}

	if got := ApplyMatrixBatch(m, nil); len(got) != 0 {
		t.Errorf("empty batch returned %d positions", len(got))
	}
}

func TestNaNPropagates(t *testing.T) {
	p := frames.NewTEME(frames.Position{X: 7000, Y: 1, Z: 2})

	got := TEMEToITRS(p, eop.NewUT1(math.NaN(), 0), 0, 0).Position()
	if !math.IsNaN(got.X) || !math.IsNaN(got.Y) {
		t.Errorf("NaN epoch produced %+v, want NaN components", got)
	}

	got = TEMEToITRS(p, valladoUT1, math.NaN(), 0).Position()
	if got.IsFinite() {
		t.Errorf("NaN polar motion produced finite %+v", got)
	}

	m := TEMEToITRSMatrix(valladoUT1, 0, math.Inf(1))
	if ApplyMatrix(m, p).Position().IsFinite() {
		t.Error("infinite polar motion produced a finite matrix result")
	}
}

func TestValidateInputs(t *testing.T) {
	tests := []struct {
		name    string
		ut1     eop.UT1
		xp, yp  float64
		wantErr bool
	}{
		{"valid", valladoUT1, valladoPolar.Xp, valladoPolar.Yp, false},
		{"at bound", valladoUT1, MaxPolarMotion, -MaxPolarMotion, false},
		{"NaN whole", eop.NewUT1(math.NaN(), 0.1), 0, 0, true},
		{"Inf fraction", eop.NewUT1(2451545, math.Inf(-1)), 0, 0, true},
		{"split across parts", eop.NewUT1(0, 2451545), 0, 0, false},
		{"last accepted day", eop.NewUT1(MaxUT1JD, 0), 0, 0, false},
		{"JD far in the future", eop.NewUT1(1e200, 0), 0, 0, true},
		{"negative JD", eop.NewUT1(-1, 0.5), 0, 0, true},
		{"NaN xp", valladoUT1, math.NaN(), 0, true},
		{"Inf yp", valladoUT1, 0, math.Inf(1), true},
		{"xp in arcsec by mistake", valladoUT1, -0.140682, 0, true},
		{"yp too large", valladoUT1, 0, 2 * MaxPolarMotion, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputs(tt.ut1, tt.xp, tt.yp)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEarthOrientationInput) {
					t.Errorf("error = %v, want ErrInvalidEarthOrientationInput", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCheckedVariants(t *testing.T) {
	got, err := TEMEToITRSChecked(valladoTEME, valladoUT1, valladoPolar.Xp, valladoPolar.Yp)
	if err != nil {
		t.Fatalf("TEMEToITRSChecked failed: %v", err)
	}
	if want := TEMEToITRS(valladoTEME, valladoUT1, valladoPolar.Xp, valladoPolar.Yp); got != want {
		t.Errorf("checked = %+v, unchecked = %+v", got, want)
	}

	if _, err := TEMEToITRSChecked(valladoTEME, eop.NewUT1(math.NaN(), 0), 0, 0); !errors.Is(err, ErrInvalidEarthOrientationInput) {
		t.Errorf("NaN epoch error = %v, want ErrInvalidEarthOrientationInput", err)
	}

	bad := frames.NewTEME(frames.Position{X: math.NaN()})
	if _, err := TEMEToITRSChecked(bad, valladoUT1, 0, 0); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("NaN position error = %v, want ErrInvalidPosition", err)
	}

	huge := frames.NewTEME(frames.Position{X: 1.7e308, Y: 1.7e308})
	if _, err := TEMEToITRSChecked(huge, eop.NewUT1(2451545, 0), 0, 0); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("overflowing position error = %v, want ErrInvalidPosition", err)
	}
	if _, err := TEMEToITRSChecked(valladoTEME, eop.NewUT1(1e200, 0), 0, 0); !errors.Is(err, ErrInvalidEarthOrientationInput) {
		t.Errorf("huge epoch error = %v, want ErrInvalidEarthOrientationInput", err)
	}

	m, err := TEMEToITRSMatrixChecked(valladoUT1, valladoPolar.Xp, valladoPolar.Yp)
	if err != nil {
		t.Fatalf("TEMEToITRSMatrixChecked failed: %v", err)
	}
	if m != TEMEToITRSMatrix(valladoUT1, valladoPolar.Xp, valladoPolar.Yp) {
		t.Error("checked matrix differs from unchecked")
	}
	if _, err := TEMEToITRSMatrixChecked(valladoUT1, 1, 0); !errors.Is(err, ErrInvalidEarthOrientationInput) {
		t.Errorf("large xp error = %v, want ErrInvalidEarthOrientationInput", err)
	}
}

func TestValidateOutputs(t *testing.T) {
	m := TEMEToITRSMatrix(eop.NewUT1(2451545, 0), 0, 0)
	ps := []frames.TEME{
		frames.NewTEME(frames.Position{X: 7000}),
		frames.NewTEME(frames.Position{X: 1.7e308, Y: 1.7e308}),
	}
	out := ApplyMatrixBatch(m, ps)

	if err := ValidateOutputs(out[:1]); err != nil {
		t.Errorf("finite result rejected: %v", err)
	}
	if err := ValidateOutputs(out); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("overflowed result error = %v, want ErrInvalidPosition", err)
	}
}

// scaledComposition is a backend whose composed matrix is not a rotation.
type scaledComposition struct {
	eop.Native
}

func (s scaledComposition) C2TCIO(rc2i rotation.Matrix3, era float64, rpom rotation.Matrix3) rotation.Matrix3 {
	m := s.Native.C2TCIO(rc2i, era, rpom)
	for i := range m {
		for j := range m[i] {
			m[i][j] *= 1.001
		}
	}
	return m
}

func TestMatrixCheckedRejectsNonRotation(t *testing.T) {
	e := NewEngine(scaledComposition{})
	if _, err := e.TEMEToITRSMatrixChecked(valladoUT1, 0, 0); !errors.Is(err, ErrInvalidEarthOrientationInput) {
		t.Errorf("scaled matrix error = %v, want ErrInvalidEarthOrientationInput", err)
	}
}

// fixedAngle is a backend whose sidereal angle is pinned.
type fixedAngle struct {
	eop.Native
	angle float64
}

func (f fixedAngle) GMST82(eop.UT1) float64 { return f.angle }

func TestEngineUsesBackend(t *testing.T) {
	e := NewEngine(fixedAngle{angle: math.Pi / 2})
	p := frames.NewTEME(frames.Position{X: 1})

	// Rotating (1,0,0) by -90° about Z gives (0,-1,0).
	want := frames.Position{X: 0, Y: -1, Z: 0}

	if got := e.TEMEToITRS(p, valladoUT1, 0, 0).Position(); dist(got, want) > 1e-15 {
		t.Errorf("direct = %+v, want %+v", got, want)
	}
	if got := e.TEMEToITRSMatrix(valladoUT1, 0, 0).Apply(p.Position()); dist(got, want) > 1e-15 {
		t.Errorf("matrix = %+v, want %+v", got, want)
	}
}

func TestNewEngineNilBackend(t *testing.T) {
	e := NewEngine(nil)
	got := e.TEMEToITRS(valladoTEME, valladoUT1, valladoPolar.Xp, valladoPolar.Yp)
	if want := TEMEToITRS(valladoTEME, valladoUT1, valladoPolar.Xp, valladoPolar.Yp); got != want {
		t.Errorf("nil backend = %+v, want native %+v", got, want)
	}
}

// TestConcurrentTransforms runs the engine from many goroutines; run with
// -race to check for shared state.
func TestConcurrentTransforms(t *testing.T) {
	want := TEMEToITRS(valladoTEME, valladoUT1, valladoPolar.Xp, valladoPolar.Yp)
	wantM := TEMEToITRSMatrix(valladoUT1, valladoPolar.Xp, valladoPolar.Yp)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := TEMEToITRS(valladoTEME, valladoUT1, valladoPolar.Xp, valladoPolar.Yp); got != want {
					errs <- "direct result changed under concurrency"
					return
				}
				if got := TEMEToITRSMatrix(valladoUT1, valladoPolar.Xp, valladoPolar.Yp); got != wantM {
					errs <- "matrix result changed under concurrency"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestIdentityMatrixApply(t *testing.T) {
	p := frames.NewTEME(frames.Position{X: 1, Y: 2, Z: 3})
	if got := ApplyMatrix(rotation.Identity(), p).Position(); got != p.Position() {
		t.Errorf("identity apply = %+v, want %+v", got, p.Position())
	}
}
