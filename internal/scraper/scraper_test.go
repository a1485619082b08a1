package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pfrederiksen/cricscore/internal/extractor"
	"github.com/pfrederiksen/cricscore/internal/match"
)

const liveCard = `
<html><body>
	<div class="slick-slide slick-active" style="outline:none">
		<span class="ds-text-tight-xs ds-font-bold ds-uppercase ds-leading-5">Live</span>
		<div class="ci-team-score ds-flex ds-justify-between ds-items-center ds-text-typo">
			<p class="ds-text-tight-s ds-font-bold ds-capitalize ds-truncate">India</p>
			<div class="ds-text-compact-s ds-text-typo ds-text-right ds-whitespace-nowrap">320/4</div>
		</div>
	</div>
</body></html>`

func TestFetchMatches(t *testing.T) {
	tests := []struct {
		name        string
		htmlContent string
		statusCode  int
		wantError   bool
		wantMatches int
	}{
		{
			name:        "successful fetch with matches",
			htmlContent: liveCard,
			statusCode:  http.StatusOK,
			wantMatches: 1,
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusNotFound,
			wantError:  true,
		},
		{
			name:       "server error",
			statusCode: http.StatusBadGateway,
			wantError:  true,
		},
		{
			name:        "no live matches",
			htmlContent: `<html><body><p>No matches</p></body></html>`,
			statusCode:  http.StatusOK,
			wantMatches: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "Mozilla/5.0") {
					t.Errorf("User-Agent = %q, should be browser-like", userAgent)
				}

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.htmlContent))
			}))
			defer server.Close()

			s := New(NewHTTPSource(5*time.Second), extractor.New(), WithURL(server.URL))

			result, err := s.FetchMatches(context.Background())

			if tt.wantError {
				if err == nil {
					t.Fatal("FetchMatches() expected error, got nil")
				}
				if !errors.Is(err, ErrFetchFailed) {
					t.Errorf("error %v should match ErrFetchFailed", err)
				}
				var fe *FetchError
				if !errors.As(err, &fe) || fe.StatusCode != tt.statusCode {
					t.Errorf("error %v should carry status %d", err, tt.statusCode)
				}
				return
			}

			if err != nil {
				t.Fatalf("FetchMatches() unexpected error: %v", err)
			}
			if len(result.Matches) != tt.wantMatches {
				t.Errorf("FetchMatches() returned %d matches, want %d", len(result.Matches), tt.wantMatches)
			}
			if result.Matches == nil {
				t.Error("FetchMatches() returned nil matches, want empty slice")
			}
		})
	}
}

// A timeout surfaces as a transport failure, not as an empty result
func TestFetchMatches_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	s := New(NewHTTPSource(50*time.Millisecond), nil, WithURL(server.URL))

	result, err := s.FetchMatches(context.Background())
	if err == nil {
		t.Fatalf("FetchMatches() expected error, got result %+v", result)
	}
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error %v should match ErrFetchFailed", err)
	}
	if result != nil {
		t.Error("FetchMatches() should not return a result on timeout")
	}
}

func TestHTTPSource_BodyLimit(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"under limit", "<html></html>", false},
		{"at limit", strings.Repeat("x", 16), false},
		{"over limit", strings.Repeat("x", 17), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			src := NewHTTPSource(time.Second)
			src.maxBody = 16

			body, err := src.Fetch(context.Background(), server.URL, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrFetchFailed) {
					t.Fatalf("Fetch() error = %v, want ErrFetchFailed", err)
				}
				if body != nil {
					t.Errorf("Fetch() returned %d bytes of an oversized body", len(body))
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if string(body) != tt.body {
				t.Errorf("Fetch() body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestFetchMatches_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(liveCard))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(NewHTTPSource(time.Second), nil, WithURL(server.URL))
	if _, err := s.FetchMatches(ctx); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("FetchMatches() error = %v, want ErrFetchFailed", err)
	}
}

func TestFetchMatches_Cache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(liveCard))
	}))
	defer server.Close()

	t.Run("repeated calls within TTL reuse the result", func(t *testing.T) {
		hits.Store(0)
		s := New(NewHTTPSource(time.Second), nil, WithURL(server.URL), WithCacheTTL(time.Minute))

		first, err := s.FetchMatches(context.Background())
		if err != nil {
			t.Fatalf("FetchMatches() error: %v", err)
		}
		second, err := s.FetchMatches(context.Background())
		if err != nil {
			t.Fatalf("FetchMatches() error: %v", err)
		}

		if hits.Load() != 1 {
			t.Errorf("server hit %d times, want 1", hits.Load())
		}
		if first.Cached || !second.Cached {
			t.Errorf("cached flags = %v, %v; want false, true", first.Cached, second.Cached)
		}
		if !second.FetchedAt.Equal(first.FetchedAt) {
			t.Errorf("cached FetchedAt = %v, want %v", second.FetchedAt, first.FetchedAt)
		}
	})

	t.Run("zero TTL always fetches", func(t *testing.T) {
		hits.Store(0)
		s := New(NewHTTPSource(time.Second), nil, WithURL(server.URL), WithCacheTTL(0))

		for i := 0; i < 3; i++ {
			if _, err := s.FetchMatches(context.Background()); err != nil {
				t.Fatalf("FetchMatches() error: %v", err)
			}
		}
		if hits.Load() != 3 {
			t.Errorf("server hit %d times, want 3", hits.Load())
		}
	})
}

func TestFetchMatches_FailuresNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(liveCard))
	}))
	defer server.Close()

	s := New(NewHTTPSource(time.Second), nil, WithURL(server.URL), WithCacheTTL(time.Minute))

	if _, err := s.FetchMatches(context.Background()); err == nil {
		t.Fatal("FetchMatches() expected error while upstream fails")
	}

	fail.Store(false)
	result, err := s.FetchMatches(context.Background())
	if err != nil {
		t.Fatalf("FetchMatches() error after recovery: %v", err)
	}
	if result.Cached || len(result.Matches) != 1 {
		t.Errorf("result = %+v, want a fresh result with 1 match", result)
	}
}

func TestFetchMatches_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept-Language"); got != "en-GB" {
			t.Errorf("Accept-Language = %q, want en-GB", got)
		}
		if got := r.Header.Get("User-Agent"); got != "custom-agent" {
			t.Errorf("User-Agent = %q, want custom-agent", got)
		}
		w.Write([]byte(liveCard))
	}))
	defer server.Close()

	s := New(NewHTTPSource(time.Second), nil,
		WithURL(server.URL),
		WithHeaders(map[string]string{"Accept-Language": "en-GB", "User-Agent": "custom-agent"}),
	)
	if _, err := s.FetchMatches(context.Background()); err != nil {
		t.Fatalf("FetchMatches() error: %v", err)
	}
}

func TestNew(t *testing.T) {
	s := New(NewHTTPSource(0), nil)

	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.extractor == nil {
		t.Error("scraper extractor is nil")
	}
	if s.URL() != LiveScoresURL {
		t.Errorf("scraper url = %q, want %q", s.URL(), LiveScoresURL)
	}
	if s.headers["User-Agent"] != UserAgent {
		t.Errorf("default User-Agent = %q, want %q", s.headers["User-Agent"], UserAgent)
	}
}

func TestFetchError(t *testing.T) {
	withStatus := &FetchError{URL: "https://x", StatusCode: 503}
	if !strings.Contains(withStatus.Error(), "503") {
		t.Errorf("Error() = %q, should mention the status", withStatus.Error())
	}

	cause := errors.New("connection refused")
	wrapped := &FetchError{URL: "https://x", Err: cause}
	if !errors.Is(wrapped, cause) {
		t.Error("FetchError should unwrap to its cause")
	}
	if !errors.Is(wrapped, ErrFetchFailed) {
		t.Error("FetchError should match ErrFetchFailed")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(liveCard), 0600); err != nil {
		t.Fatal(err)
	}

	s := New(NewFileSource(path), nil, WithCacheTTL(0))
	result, err := s.FetchMatches(context.Background())
	if err != nil {
		t.Fatalf("FetchMatches() error: %v", err)
	}
	if len(result.Matches) != 1 || match.Text(result.Matches[0].Status) != "Live" {
		t.Errorf("matches = %+v, want one live match", result.Matches)
	}

	missing := NewFileSource(filepath.Join(t.TempDir(), "missing.html"))
	if _, err := missing.Fetch(context.Background(), "", nil); err == nil {
		t.Error("Fetch() of missing file expected error")
	}
}

func TestFileSource_Stdin(t *testing.T) {
	src := NewFileSource("-")
	src.SetStdin(strings.NewReader(liveCard))

	data, err := src.Fetch(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != liveCard {
		t.Errorf("Fetch() returned %d bytes, want the stdin contents", len(data))
	}
}
