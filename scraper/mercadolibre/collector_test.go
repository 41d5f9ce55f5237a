package mercadolibre

import (
	"context"
	"errors"
	"testing"
	"time"

	"meli-trends/utils"
)

type fakeFetcher struct {
	docs []string
	err  error
}

func (f fakeFetcher) Fetch(context.Context) ([]string, error) { return f.docs, f.err }

func newTestCollector(f Fetcher) *Collector {
	c := NewCollector(f, utils.Discard())
	c.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	return c
}

func TestCollectDeduplicatesByLink(t *testing.T) {
	c := newTestCollector(fakeFetcher{docs: []string{legacyPage, "", legacyPage, polyPage}})

	res, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if res.Pages != 3 {
		t.Errorf("Pages = %d; want 3", res.Pages)
	}
	// The "#" placeholder is not a real link, so listings without one are never merged.
	if len(res.Listings) != 4 {
		t.Errorf("Listings = %d; want 4", len(res.Listings))
	}
	if res.Dupes != 1 {
		t.Errorf("Dupes = %d; want 1", res.Dupes)
	}
	if res.Skipped != 4 {
		t.Errorf("Skipped = %d; want 4", res.Skipped)
	}
	for _, l := range res.Listings {
		if got := l.CaptureDate.Format("2006-01-02"); got != "2025-03-14" {
			t.Errorf("%q captured %s; want 2025-03-14", l.Title, got)
		}
	}
}

func TestCollectFetchErrorIsReturned(t *testing.T) {
	boom := errors.New("blocked")
	c := newTestCollector(fakeFetcher{err: boom})

	res, err := c.Collect(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Collect() error = %v; want %v", err, boom)
	}
	if res == nil || len(res.Listings) != 0 {
		t.Errorf("expected an empty result alongside the error, got %+v", res)
	}
}
