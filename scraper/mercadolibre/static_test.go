package mercadolibre

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/andybalholm/brotli"

	"meli-trends/utils"
)

func TestPageURL(t *testing.T) {
	tests := []struct {
		base string
		page int
		want string
	}{
		{DefaultSourceURL, 0, DefaultSourceURL},
		{DefaultSourceURL, 1, "https://listado.mercadolibre.com.ve/_Desde_51_OrderId_MSGS*"},
		{DefaultSourceURL, 2, "https://listado.mercadolibre.com.ve/_Desde_101_OrderId_MSGS*"},
		{"https://listado.mercadolibre.com.ve/licuadora/", 1, "https://listado.mercadolibre.com.ve/licuadora_Desde_51"},
	}
	for _, tt := range tests {
		if got := PageURL(tt.base, tt.page); got != tt.want {
			t.Errorf("PageURL(%q, %d) = %q; want %q", tt.base, tt.page, got, tt.want)
		}
	}
}

func compress(t *testing.T, encoding, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch encoding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		w.Write([]byte(body))
		w.Close()
	case "br":
		w := brotli.NewWriter(&buf)
		w.Write([]byte(body))
		w.Close()
	default:
		buf.WriteString(body)
	}
	return buf.Bytes()
}

func TestStaticFetchDecodesPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/robots.txt":
			http.NotFound(w, r)
		case strings.Contains(r.URL.Path, "_Desde_51"):
			w.Header().Set("Content-Encoding", "br")
			w.Write(compress(t, "br", "page two"))
		default:
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(compress(t, "gzip", "page one"))
		}
	}))
	defer srv.Close()

	f := &StaticFetcher{
		URL:           srv.URL + "/licuadora",
		Pages:         2,
		RespectRobots: true,
		Logger:        utils.Discard(),
	}
	docs, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(docs) != 2 || docs[0] != "page one" || docs[1] != "page two" {
		t.Errorf("docs = %q; want [page one page two]", docs)
	}
}

func TestStaticFetchHonoursRobots(t *testing.T) {
	var pageHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		pageHits.Add(1)
		w.Write([]byte("page"))
	}))
	defer srv.Close()

	f := &StaticFetcher{URL: srv.URL + "/licuadora", RespectRobots: true, Logger: utils.Discard()}
	if _, err := f.Fetch(context.Background()); !errors.Is(err, ErrDisallowed) {
		t.Fatalf("Fetch() error = %v; want ErrDisallowed", err)
	}
	if pageHits.Load() != 0 {
		t.Errorf("fetched %d pages despite robots.txt", pageHits.Load())
	}

	f = &StaticFetcher{URL: srv.URL + "/licuadora", Logger: utils.Discard()}
	if _, err := f.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch with robots disabled: %v", err)
	}
}

func TestStaticFetchRetriesThenGivesUp(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := &StaticFetcher{
		URL:    srv.URL + "/licuadora",
		Logger: utils.Discard(),
		Retry:  &utils.RetryConfig{MaxAttempts: 3},
	}
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error when every page fails")
	}
	if hits.Load() != 3 {
		t.Errorf("server hit %d times; want 3", hits.Load())
	}
}
