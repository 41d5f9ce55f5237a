// Package mercadolibre collects the best-selling listings from MercadoLibre
// Venezuela's results page.
package mercadolibre

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"meli-trends/models"
	"meli-trends/utils"
)

// DefaultSourceURL lists products ordered by number of buyer questions.
const DefaultSourceURL = "https://listado.mercadolibre.com.ve/_OrderId_MSGS*"

// Fetcher returns the HTML of each result page, in page order.
type Fetcher interface {
	Fetch(ctx context.Context) ([]string, error)
}

// Collector turns fetched result pages into listings.
type Collector struct {
	fetcher Fetcher
	logger  *utils.Logger
	now     func() time.Time
}

// NewCollector creates a Collector reading pages through fetcher.
func NewCollector(fetcher Fetcher, logger *utils.Logger) *Collector {
	return &Collector{fetcher: fetcher, logger: logger, now: time.Now}
}

// Collect fetches and parses every result page. Listings sharing a link are
// kept once. A fetch error is returned together with whatever was parsed.
func (c *Collector) Collect(ctx context.Context) (*models.CollectResult, error) {
	result := &models.CollectResult{}

	docs, fetchErr := c.fetcher.Fetch(ctx)
	if fetchErr != nil {
		c.logger.Error("[collector] Fetch failed: %v", fetchErr)
	}

	captureDate := c.now()
	seen := utils.NewURLSet()
	for i, html := range docs {
		if html == "" {
			continue
		}
		result.Pages++

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			c.logger.Warn("[collector] Page %d is not parseable HTML: %v", i+1, err)
			continue
		}

		listings, skipped := ParseListings(doc, captureDate)
		result.Items += len(listings) + skipped
		result.Skipped += skipped
		c.logger.Debug("[collector] Page %d: %d items, %d skipped", i+1, len(listings)+skipped, skipped)

		for _, l := range listings {
			if l.URL != missingLinkDefault && !seen.Add(l.URL) {
				result.Dupes++
				continue
			}
			result.Listings = append(result.Listings, l)
		}
	}

	if len(result.Listings) == 0 {
		c.logger.Warn("[collector] No listings found on %d page(s)", result.Pages)
	} else {
		c.logger.Info("[collector] Collected %d listings (%d skipped, %d duplicates)",
			len(result.Listings), result.Skipped, result.Dupes)
	}

	if fetchErr != nil {
		return result, fmt.Errorf("collector: fetch: %w", fetchErr)
	}
	return result, nil
}
