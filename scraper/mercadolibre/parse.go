package mercadolibre

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"meli-trends/models"
)

// Selectors cover both the legacy result layout and the current poly-card one.
const (
	itemSelector       = "li.ui-search-layout__item"
	polyItemSelector   = "div.poly-card"
	titleSelector      = ".ui-search-item__title, .poly-component__title"
	priceSelector      = ".andes-money-amount__fraction"
	linkSelector       = "a.ui-search-link, a.poly-component__title, h2 a, h3 a"
	questionsSelector  = ".ui-search-item__questions"
	salesSelector      = ".ui-search-item__quantity-label, .poly-component__sold"
	ratingSelector     = ".ui-search-reviews__rating-number, .poly-reviews__rating"
	freeShipSelector   = ".ui-search-item__shipping--free, .poly-component__shipping--free"
	officialSelector   = ".ui-search-official-store-label, .poly-component__official-store"
	missingLinkDefault = "#"
)

var (
	intPattern     = regexp.MustCompile(`\d+`)
	decimalPattern = regexp.MustCompile(`\d+\.\d+|\d+`)
)

// ParseListings extracts one listing per result item in doc. Items that cannot
// be read are skipped and counted instead of aborting the page.
func ParseListings(doc *goquery.Document, captureDate time.Time) ([]*models.Listing, int) {
	items := doc.Find(itemSelector)
	if items.Length() == 0 {
		items = doc.Find(polyItemSelector)
	}

	date := time.Date(captureDate.Year(), captureDate.Month(), captureDate.Day(), 0, 0, 0, 0, time.UTC)
	var (
		listings []*models.Listing
		skipped  int
	)
	items.Each(func(_ int, item *goquery.Selection) {
		l, err := parseItem(item, date)
		if err != nil {
			skipped++
			return
		}
		listings = append(listings, l)
	})
	return listings, skipped
}

func parseItem(item *goquery.Selection, date time.Time) (*models.Listing, error) {
	title := strings.TrimSpace(item.Find(titleSelector).First().Text())
	if title == "" {
		return nil, fmt.Errorf("item has no title")
	}

	price, err := parsePrice(item.Find(priceSelector).First().Text())
	if err != nil {
		return nil, err
	}

	link := missingLinkDefault
	if href, ok := item.Find(linkSelector).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		link = strings.TrimSpace(href)
	}

	return &models.Listing{
		Title:         title,
		Price:         price,
		SalesCount:    firstInt(item.Find(salesSelector).First().Text()),
		InquiryCount:  firstInt(item.Find(questionsSelector).First().Text()),
		Rating:        firstDecimal(item.Find(ratingSelector).First().Text()),
		FreeShipping:  item.Find(freeShipSelector).Length() > 0,
		OfficialStore: item.Find(officialSelector).Length() > 0,
		URL:           link,
		CaptureDate:   date,
		ClusterID:     -1,
	}, nil
}

// parsePrice reads a marketplace amount: "." groups thousands and "," marks
// decimals. An absent amount is zero.
func parsePrice(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	normalised := strings.ReplaceAll(strings.ReplaceAll(text, ".", ""), ",", ".")
	price, err := strconv.ParseFloat(normalised, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", text, err)
	}
	return price, nil
}

func firstInt(text string) int {
	m := intPattern.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func firstDecimal(text string) float64 {
	m := decimalPattern.FindString(text)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}
