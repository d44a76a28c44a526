package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	DefaultWidth   = 1920
	DefaultHeight  = 1080
	DefaultTimeout = 30 * time.Second
	DefaultSettle  = 2 * time.Second
)

// Options control a single capture. Zero fields take the defaults above.
type Options struct {
	Width   int
	Height  int
	Timeout time.Duration
	Settle  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Settle < 0 {
		o.Settle = 0
	} else if o.Settle == 0 {
		o.Settle = DefaultSettle
	}
	return o
}

// Capturer writes a screenshot of a page to a file.
type Capturer interface {
	Capture(ctx context.Context, pageURL, outPath string, opts Options) error
}

// Chrome captures pages with a locally installed Chrome or Chromium.
type Chrome struct {
	// ExecPath overrides browser discovery when set.
	ExecPath string
	Logger   *slog.Logger
}

func (c *Chrome) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Capture loads pageURL in a viewport of opts.Width x opts.Height, waits for
// the page to settle and writes a full-page PNG to outPath.
func (c *Chrome) Capture(ctx context.Context, pageURL, outPath string, opts Options) error {
	opts = opts.withDefaults()
	log := c.logger().With("url", pageURL)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if c.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, opts.Timeout+opts.Settle)
	defer cancel()

	log.Info("taking screenshot", "width", opts.Width, "height", opts.Height)
	start := time.Now()

	var buf []byte
	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(opts.Settle),
		// Quality 100 makes chromedp request a lossless PNG.
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("capturing %s: timed out after %s", pageURL, opts.Timeout+opts.Settle)
		}
		return fmt.Errorf("capturing %s: %w", pageURL, err)
	}
	if len(buf) == 0 {
		return fmt.Errorf("capturing %s: browser returned an empty screenshot", pageURL)
	}
	if err := os.WriteFile(outPath, buf, 0o644); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}

	log.Info("screenshot saved", "path", outPath, "bytes", len(buf), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// NormalizeURL adds an https:// scheme to bare host names.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

var (
	unsafeChars = regexp.MustCompile(`[^\w.-]`)
	underscores = regexp.MustCompile(`_+`)
)

// StorageName derives a file-system safe name from a URL's host. A leading
// "www." is dropped so both spellings share a baseline.
func StorageName(raw string) string {
	host := raw
	if u, err := url.Parse(raw); err == nil {
		if u.Host != "" {
			host = u.Host
		} else if u.Path != "" {
			host = u.Path
		}
	}
	host = strings.TrimPrefix(host, "www.")
	host = unsafeChars.ReplaceAllString(host, "_")
	return underscores.ReplaceAllString(host, "_")
}
