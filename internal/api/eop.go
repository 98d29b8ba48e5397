package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ZoussCity/stardome/internal/eop"
	"github.com/ZoussCity/stardome/internal/httputil"
	"github.com/ZoussCity/stardome/internal/metrics"
)

const fetchTimeout = 60 * time.Second

type eopMetadata struct {
	Loaded     bool       `json:"loaded"`
	Source     string     `json:"source,omitempty"`
	FetchedAt  *time.Time `json:"fetched_at,omitempty"`
	AgeSeconds float64    `json:"age_seconds,omitempty"`
	MJDMin     float64    `json:"mjd_min,omitempty"`
	MJDMax     float64    `json:"mjd_max,omitempty"`
	Entries    int        `json:"entries"`
	Predicted  int        `json:"predicted"`
}

func metadataOf(ds *eop.Dataset) eopMetadata {
	if ds == nil {
		return eopMetadata{}
	}
	fetched := ds.FetchedAt.UTC()
	md := eopMetadata{
		Loaded:     true,
		Source:     ds.Source,
		FetchedAt:  &fetched,
		AgeSeconds: time.Since(ds.FetchedAt).Seconds(),
		MJDMin:     ds.Range.Min,
		MJDMax:     ds.Range.Max,
		Entries:    len(ds.Entries),
	}
	for _, e := range ds.Entries {
		if e.Predicted {
			md.Predicted++
		}
	}
	return md
}

func eopMetadataHandler(store *eop.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, metadataOf(store.Get()))
	}
}

type orientationResponse struct {
	Time      time.Time  `json:"time"`
	MJD       float64    `json:"mjd"`
	UT1       [2]float64 `json:"ut1"`
	DUT1      float64    `json:"dut1"`
	Xp        float64    `json:"xp"`
	Yp        float64    `json:"yp"`
	XpArcsec  float64    `json:"xp_arcsec"`
	YpArcsec  float64    `json:"yp_arcsec"`
	Predicted bool       `json:"predicted"`
}

// eopOrientationHandler interpolates the loaded table at ?time=RFC3339
// (default now).
func eopOrientationHandler(store *eop.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := time.Now().UTC()
		if s := r.URL.Query().Get("time"); s != "" {
			parsed, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				httputil.WriteError(w, http.StatusBadRequest, "time must be RFC3339")
				return
			}
			t = parsed.UTC()
		}

		ep, err := epochFromStore(t, store)
		if err != nil {
			writeRequestError(w, err)
			return
		}

		pm := eop.PolarMotion{Xp: ep.xp, Yp: ep.yp}
		xs, ys := pm.Arcsec()
		httputil.WriteJSON(w, http.StatusOK, orientationResponse{
			Time:      t,
			MJD:       eop.MJD(t),
			UT1:       [2]float64{ep.ut1.Whole, ep.ut1.Fraction},
			DUT1:      ep.info.DUT1,
			Xp:        ep.xp,
			Yp:        ep.yp,
			XpArcsec:  xs,
			YpArcsec:  ys,
			Predicted: ep.info.Predicted,
		})
	}
}

// eopFetchHandler refreshes the EOP table from the configured source.
func eopFetchHandler(logger *slog.Logger, deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.EOPFetchEnabled || deps.Fetcher == nil {
			httputil.WriteError(w, http.StatusForbidden, "EOP fetch is disabled")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
		defer cancel()

		ds, err := eop.Refresh(ctx, deps.Fetcher, deps.Cache, deps.Store, logger)
		metrics.RecordEOPFetch(err)
		if err != nil {
			logger.Error("EOP fetch failed", "component", "api", "source", deps.Fetcher.SourceURL(), "error", err)
			status := http.StatusBadGateway
			if errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusGatewayTimeout
			}
			httputil.WriteError(w, status, "EOP fetch failed")
			return
		}
		metrics.SetEOPDatasetEntries(len(ds.Entries))
		metrics.SetEOPDatasetAge(0)

		httputil.WriteJSON(w, http.StatusOK, metadataOf(ds))
	}
}
