package health

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeSource bool

func (f fakeSource) Loaded() bool { return bool(f) }

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	Healthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok\n" {
		t.Errorf("Healthz = %d %q, want 200 \"ok\\n\"", w.Code, w.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name     string
		loaded   bool
		wantCode int
		wantBody string
	}{
		{"loaded", true, http.StatusOK, "ready\n"},
		{"not loaded", false, http.StatusServiceUnavailable, "eop data not loaded\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Readyz(fakeSource(tt.loaded))(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}
