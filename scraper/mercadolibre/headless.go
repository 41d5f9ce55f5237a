package mercadolibre

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"meli-trends/storage"
	"meli-trends/utils"
)

const (
	cookieButton = `//button[contains(normalize-space(.), 'Aceptar cookies')]`
	scrollPause  = 2 * time.Second
	cookieWait   = 5 * time.Second
	pageTimeout  = 2 * time.Minute
)

// HeadlessFetcher renders the results page in headless Chrome so lazily
// loaded items are present before the HTML is read.
type HeadlessFetcher struct {
	URL            string
	Scrolls        int
	ChromeBin      string
	UserAgent      string
	ScreenshotPath string // empty disables the debug screenshot

	Logger *utils.Logger
	Retry  *utils.RetryConfig
}

// Fetch loads the page once and returns its HTML as a single document.
func (f *HeadlessFetcher) Fetch(ctx context.Context) ([]string, error) {
	chromeBin := f.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	f.Logger.Info("[headless] Using browser binary: %q", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1280, 1024),
	)
	if f.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.UserAgent))
	}
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	var html string
	err := f.retry().Do(ctx, "headless-fetch", func(ctx context.Context) error {
		tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancelTab()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, pageTimeout)
		defer cancelTimeout()

		var err error
		html, err = f.load(tabCtx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("headless: %w", err)
	}
	return []string{html}, nil
}

func (f *HeadlessFetcher) load(ctx context.Context) (string, error) {
	f.Logger.Info("[headless] Loading %s", f.URL)
	if err := chromedp.Run(ctx,
		chromedp.Navigate(f.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}

	f.acceptCookies(ctx)

	for i := 0; i < f.Scrolls; i++ {
		if err := chromedp.Run(ctx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(scrollPause),
		); err != nil {
			return "", fmt.Errorf("scroll %d: %w", i+1, err)
		}
	}

	if f.ScreenshotPath != "" {
		f.screenshot(ctx)
	}

	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return html, nil
}

// acceptCookies dismisses the consent banner when it shows up in time.
func (f *HeadlessFetcher) acceptCookies(ctx context.Context) {
	clickCtx, cancel := context.WithTimeout(ctx, cookieWait)
	defer cancel()

	if err := chromedp.Run(clickCtx, chromedp.Click(cookieButton, chromedp.BySearch)); err != nil {
		f.Logger.Debug("[headless] No cookie banner: %v", err)
		return
	}
	f.Logger.Info("[headless] Cookies accepted")
}

func (f *HeadlessFetcher) screenshot(ctx context.Context) {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		f.Logger.Warn("[headless] Screenshot failed: %v", err)
		return
	}
	if err := storage.WriteFileAtomic(f.ScreenshotPath, buf); err != nil {
		f.Logger.Warn("[headless] Saving screenshot: %v", err)
		return
	}
	f.Logger.Info("[headless] Screenshot saved to %s", f.ScreenshotPath)
}

func (f *HeadlessFetcher) retry() *utils.RetryConfig {
	if f.Retry != nil {
		return f.Retry
	}
	return &utils.RetryConfig{MaxAttempts: 1, Logger: f.Logger}
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
