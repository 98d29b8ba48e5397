package frames

import (
	"math"
	"testing"
)

func TestPositionNorm(t *testing.T) {
	tests := []struct {
		name string
		p    Position
		want float64
	}{
		{"zero", Position{}, 0},
		{"unit x", Position{X: 1}, 1},
		{"3-4-12", Position{X: 3, Y: 4, Z: 12}, 13},
		{"LEO", Position{X: 6778.0}, 6778.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Norm(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Norm(%v) = %.12f, want %.12f", tt.p, got, tt.want)
			}
		})
	}
}

func TestPositionIsFinite(t *testing.T) {
	tests := []struct {
		name string
		p    Position
		want bool
	}{
		{"finite", Position{X: 1, Y: -2, Z: 3}, true},
		{"NaN", Position{X: math.NaN()}, false},
		{"+Inf", Position{Y: math.Inf(1)}, false},
		{"-Inf", Position{Z: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsFinite(); got != tt.want {
				t.Errorf("IsFinite(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

// TestFrameWrapping verifies that wrapping never alters the vector and that
// each type reports its own frame.
func TestFrameWrapping(t *testing.T) {
	p := Position{X: 7000, Y: -12.5, Z: 3.25}

	cases := []struct {
		frame Frame
		got   Position
		tag   Frame
	}{
		{FrameBCRS, NewBCRS(p).Position(), NewBCRS(p).Frame()},
		{FrameICRS, NewICRS(p).Position(), NewICRS(p).Frame()},
		{FrameGCRS, NewGCRS(p).Position(), NewGCRS(p).Frame()},
		{FrameITRS, NewITRS(p).Position(), NewITRS(p).Frame()},
		{FrameTEME, NewTEME(p).Position(), NewTEME(p).Frame()},
	}

	for _, c := range cases {
		t.Run(string(c.frame), func(t *testing.T) {
			if c.got != p {
				t.Errorf("unwrap = %v, want %v", c.got, p)
			}
			if c.tag != c.frame {
				t.Errorf("Frame() = %q, want %q", c.tag, c.frame)
			}
		})
	}
}

func TestArrayRoundTrip(t *testing.T) {
	a := [3]float64{1.5, -2.5, 3.5}
	if got := FromArray(a).Array(); got != a {
		t.Errorf("FromArray(%v).Array() = %v", a, got)
	}
}
