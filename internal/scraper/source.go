package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	LiveScoresURL = "https://www.espncricinfo.com/"
	UserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"
	Timeout       = 30 * time.Second

	// maxBodySize is the largest response accepted
	maxBodySize = 16 << 20
)

// Source retrieves the raw markup of a page
type Source interface {
	Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// HTTPSource fetches pages with a plain GET request
type HTTPSource struct {
	client  *http.Client
	maxBody int64
}

// NewHTTPSource creates an HTTPSource whose requests give up after timeout
func NewHTTPSource(timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = Timeout
	}
	return &HTTPSource{
		client: &http.Client{
			Timeout: timeout,
		},
		maxBody: maxBodySize,
	}
}

// Fetch performs the GET. Every header is sent as given; a browser-like
// User-Agent is added when none is supplied.
func (s *HTTPSource) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > s.maxBody {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("response body exceeds %d bytes", s.maxBody)}
	}

	return body, nil
}

// FileSource serves markup saved on disk. The url argument is ignored.
type FileSource struct {
	path  string
	stdin io.Reader
}

// NewFileSource creates a FileSource reading path; "-" reads stdin
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, stdin: os.Stdin}
}

// SetStdin replaces the reader used for "-"
func (s *FileSource) SetStdin(r io.Reader) {
	s.stdin = r
}

// Fetch reads the file
func (s *FileSource) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if s.path == "-" {
		data, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading markup file: %w", err)
	}
	return data, nil
}
