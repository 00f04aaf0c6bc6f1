package plot

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable probes for a usable headless browser once per
// process; the result is cached.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		if cancel != nil {
			defer cancel()
		}
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

// RenderPNG renders the track page and screenshots it through headless
// chrome. Timeout <= 0 falls back to 20s.
func RenderPNG(ctx context.Context, input Input, timeout time.Duration) (ImageResult, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return ImageResult{}, err
	}
	html, desc, err := RenderHTML(input)
	if err != nil {
		return ImageResult{}, err
	}
	height := chartBaseHeightPx + len(input.Tracks)*chartHeightPx
	height *= len(input.Limits)
	if height < 400 {
		height = 400
	}
	png, err := renderHTMLToPNG(ctx, html, chartWidthPx, height, timeout)
	if err != nil {
		return ImageResult{}, err
	}
	return ImageResult{
		Bytes:       png,
		Base64:      base64.StdEncoding.EncodeToString(png),
		Filename:    pngFilename(input.Title),
		Description: desc,
	}, nil
}

func pngFilename(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "tracks"
	}
	return fmt.Sprintf("%s.png", slug)
}

const defaultPNGTimeout = 20 * time.Second

// renderHTMLToPNG loads the chart page into a headless browser through a
// data URI and captures a full-page screenshot. The short sleep lets
// echarts finish drawing before the capture.
func renderHTMLToPNG(ctx context.Context, html []byte, width, height int, timeout time.Duration) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		timeout = defaultPNGTimeout
	}
	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	page := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var shot []byte
	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(page),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.FullScreenshot(&shot, 0),
	)
	if err != nil {
		return nil, err
	}
	return shot, nil
}
