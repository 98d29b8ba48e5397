package eop

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// LoadCached populates store from the newest cache file, if any.
func LoadCached(cache *Cache, store *Store, logger *slog.Logger) (*Dataset, error) {
	data, ts, err := cache.LoadLatest()
	if err != nil {
		return nil, err
	}

	entries, err := Parse(bytes.NewReader(data), logger)
	if err != nil {
		return nil, fmt.Errorf("parsing cached EOP data: %w", err)
	}
	ds, err := NewDataset("cache", ts, entries)
	if err != nil {
		return nil, fmt.Errorf("cached EOP data: %w", err)
	}

	store.Set(ds)
	logger.Info("loaded EOP data from cache",
		"count", len(ds.Entries),
		"mjd_min", ds.Range.Min,
		"mjd_max", ds.Range.Max,
		"cached_at", ts.Format(time.RFC3339),
	)
	return ds, nil
}

// Refresh downloads a fresh table, writes it to the cache and swaps it into
// store. Concurrent refreshes are serialized; the store keeps serving the
// previous dataset until the new one has parsed successfully. A nil cache
// skips the disk write.
func Refresh(ctx context.Context, fetcher *Fetcher, cache *Cache, store *Store, logger *slog.Logger) (*Dataset, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := Parse(bytes.NewReader(data), logger)
	if err != nil {
		return nil, fmt.Errorf("parsing EOP data: %w", err)
	}

	now := time.Now().UTC()
	ds, err := NewDataset(fetcher.SourceURL(), now, entries)
	if err != nil {
		return nil, fmt.Errorf("EOP data from %s: %w", fetcher.SourceURL(), err)
	}

	if cache != nil {
		if err := cache.Write(data, now); err != nil {
			logger.Warn("failed to cache EOP data", "error", err)
		}
	}

	store.Set(ds)
	logger.Info("EOP dataset refreshed",
		"source_url", ds.Source,
		"count", len(ds.Entries),
		"mjd_min", ds.Range.Min,
		"mjd_max", ds.Range.Max,
	)
	return ds, nil
}
