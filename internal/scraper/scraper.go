package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/cricscore/internal/cache"
	"github.com/pfrederiksen/cricscore/internal/extractor"
	"github.com/pfrederiksen/cricscore/internal/logger"
	"github.com/pfrederiksen/cricscore/internal/match"
)

// DefaultCacheTTL is how long a successful scrape is reused
const DefaultCacheTTL = 10 * time.Minute

// Result is the outcome of one fetch and extract pass
type Result struct {
	Matches   []*match.Match `json:"matches"`
	FetchedAt time.Time      `json:"fetched_at"`
	Cached    bool           `json:"cached"`
}

// Scraper fetches the live scores page and extracts match records
type Scraper struct {
	source    Source
	extractor *extractor.Extractor
	url       string
	headers   map[string]string
	memo      *cache.Memo[[]*match.Match]
}

// Option configures a Scraper
type Option func(*Scraper)

// WithURL overrides LiveScoresURL
func WithURL(url string) Option {
	return func(s *Scraper) {
		s.url = url
	}
}

// WithHeaders sets the request headers sent to the source
func WithHeaders(headers map[string]string) Option {
	return func(s *Scraper) {
		s.headers = make(map[string]string, len(headers))
		for k, v := range headers {
			s.headers[k] = v
		}
	}
}

// WithCacheTTL sets how long a result is reused; zero disables the memo
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Scraper) {
		s.memo = cache.NewMemo[[]*match.Match](ttl)
	}
}

// New creates a Scraper reading from src
func New(src Source, ex *extractor.Extractor, opts ...Option) *Scraper {
	if ex == nil {
		ex = extractor.New()
	}
	s := &Scraper{
		source:    src,
		extractor: ex,
		url:       LiveScoresURL,
		headers:   map[string]string{"User-Agent": UserAgent},
		memo:      cache.NewMemo[[]*match.Match](DefaultCacheTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the page being scraped
func (s *Scraper) URL() string {
	return s.url
}

// FetchMatches returns the current matches, reusing the memoized result while
// it is fresh. A transport failure is returned as an error matching
// ErrFetchFailed and is never cached.
func (s *Scraper) FetchMatches(ctx context.Context) (*Result, error) {
	key := cache.Key(s.url, s.headers)

	if matches, at, ok := s.memo.Get(key); ok {
		logger.IncrCounter("scraper.cache_hits")
		logger.Debug("serving cached matches", logger.Fields{
			"url":       s.url,
			"matches":   len(matches),
			"cached_at": at.UTC().Format(time.RFC3339),
		})
		return &Result{Matches: matches, FetchedAt: at, Cached: true}, nil
	}
	logger.IncrCounter("scraper.cache_misses")

	start := time.Now()
	markup, err := s.source.Fetch(ctx, s.url, s.headers)
	logger.RecordTiming("scraper.fetch", time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if _, ok := err.(*FetchError); !ok {
				err = &FetchError{URL: s.url, Err: ctxErr}
			}
		}
		return nil, fmt.Errorf("fetching live scores: %w", err)
	}

	matches := s.extractor.Extract(markup)
	fetchedAt := s.memo.Set(key, matches)

	logger.Debug("extracted matches", logger.Fields{
		"url":     s.url,
		"bytes":   len(markup),
		"matches": len(matches),
	})

	return &Result{Matches: matches, FetchedAt: fetchedAt}, nil
}

// Extract runs the scraper's extractor over markup already in hand
func (s *Scraper) Extract(markup []byte) []*match.Match {
	return s.extractor.Extract(markup)
}
