package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// BrowserSource renders pages in headless Chrome, for when the score strip
// is filled in client side
type BrowserSource struct {
	timeout time.Duration
	settle  time.Duration
}

// NewBrowserSource creates a BrowserSource. Each fetch launches a fresh
// browser and is bounded by timeout.
func NewBrowserSource(timeout time.Duration) *BrowserSource {
	if timeout <= 0 {
		timeout = Timeout
	}
	return &BrowserSource{
		timeout: timeout,
		settle:  2 * time.Second,
	}
}

// Fetch navigates to url and returns the rendered document
func (s *BrowserSource) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	userAgent := UserAgent
	extra := network.Headers{}
	for name, value := range headers {
		if http.CanonicalHeaderKey(name) == "User-Agent" {
			userAgent = value
			continue
		}
		extra[name] = value
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var markup string
	actions := []chromedp.Action{network.Enable()}
	if len(extra) > 0 {
		actions = append(actions, network.SetExtraHTTPHeaders(extra))
	}
	actions = append(actions,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.settle),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("rendering page: %w", err)}
	}

	return []byte(markup), nil
}
