package mercadolibre

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"

	"meli-trends/utils"
)

// ItemsPerPage is how many results the marketplace shows per listing page.
const ItemsPerPage = 50

// ErrDisallowed is returned when robots.txt forbids fetching the source URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// StaticFetcher downloads result pages over plain HTTP. It does not run
// scripts, so it only sees items present in the initial markup.
type StaticFetcher struct {
	URL            string
	Pages          int
	UserAgent      string
	RatePerSecond  float64
	MaxConcurrency int
	RespectRobots  bool

	Logger *utils.Logger
	Retry  *utils.RetryConfig

	once   sync.Once
	client *resty.Client
}

// Fetch downloads every page through a rate-limited worker pool. A page that
// still fails after retries is left empty; the call only fails when no page
// could be fetched at all.
func (f *StaticFetcher) Fetch(ctx context.Context) ([]string, error) {
	pages := f.Pages
	if pages < 1 {
		pages = 1
	}

	if f.RespectRobots {
		allowed, err := f.allowed(ctx, f.URL)
		if err != nil {
			f.Logger.Warn("[static] robots.txt unavailable, continuing: %v", err)
		} else if !allowed {
			return nil, fmt.Errorf("static: %s: %w", f.URL, ErrDisallowed)
		}
	}

	docs := make([]string, pages)
	var (
		mu      sync.Mutex
		lastErr error
		fetched int
	)

	pool := utils.NewWorkerPool(ctx, f.MaxConcurrency, f.RatePerSecond)
	for i := 0; i < pages; i++ {
		pageURL := PageURL(f.URL, i)
		pool.Submit(func(ctx context.Context) error {
			var body string
			err := f.retry().Do(ctx, fmt.Sprintf("fetch-page-%d", i+1), func(ctx context.Context) error {
				var err error
				body, err = f.get(ctx, pageURL)
				return err
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				f.Logger.Error("[static] Page %d (%s): %v", i+1, pageURL, err)
				lastErr = err
				return nil
			}
			docs[i] = body
			fetched++
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		return docs, fmt.Errorf("static: %w", err)
	}

	if fetched == 0 && lastErr != nil {
		return nil, fmt.Errorf("static: no page fetched: %w", lastErr)
	}
	f.Logger.Info("[static] Fetched %d/%d pages", fetched, pages)
	return docs, nil
}

// PageURL returns the address of the zero-based result page. Pages after the
// first carry a "_Desde_<offset>" segment ahead of any ordering suffix.
func PageURL(base string, page int) string {
	if page <= 0 {
		return base
	}
	segment := "_Desde_" + strconv.Itoa(page*ItemsPerPage+1)
	if i := strings.Index(base, "_OrderId"); i >= 0 {
		return base[:i] + segment + base[i:]
	}
	return strings.TrimSuffix(base, "/") + segment
}

func (f *StaticFetcher) get(ctx context.Context, pageURL string) (string, error) {
	status, body, err := f.download(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("GET %s: status %d", pageURL, status)
	}
	return string(body), nil
}

func (f *StaticFetcher) allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, err
	}

	status, body, err := f.download(ctx, u.Scheme+"://"+u.Host+"/robots.txt")
	if err != nil {
		return false, fmt.Errorf("fetch robots.txt: %w", err)
	}

	data, err := robotstxt.FromStatusAndBytes(status, body)
	if err != nil {
		return false, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data.TestAgent(u.EscapedPath(), f.UserAgent), nil
}

// download returns the status and decoded body. Compression is negotiated
// explicitly, so bodies are decoded here rather than by the transport.
func (f *StaticFetcher) download(ctx context.Context, target string) (int, []byte, error) {
	resp, err := f.httpClient().R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		return 0, nil, fmt.Errorf("GET %s: %w", target, err)
	}
	raw := resp.RawBody()
	defer raw.Close()

	body, err := decodeBody(resp.Header().Get("Content-Encoding"), raw)
	if err != nil {
		return 0, nil, fmt.Errorf("GET %s: %w", target, err)
	}
	return resp.StatusCode(), body, nil
}

func (f *StaticFetcher) httpClient() *resty.Client {
	f.once.Do(func() {
		f.client = resty.New().
			SetTimeout(30*time.Second).
			SetHeader("user-agent", f.UserAgent).
			SetHeader("accept", "text/html,application/xhtml+xml").
			SetHeader("accept-language", "es-VE,es;q=0.9").
			SetHeader("accept-encoding", "gzip, br")
	})
	return f.client
}

func (f *StaticFetcher) retry() *utils.RetryConfig {
	if f.Retry != nil {
		return f.Retry
	}
	return &utils.RetryConfig{MaxAttempts: 1, Logger: f.Logger}
}

func decodeBody(encoding string, body io.Reader) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case "br":
		return io.ReadAll(brotli.NewReader(body))
	default:
		return io.ReadAll(body)
	}
}
