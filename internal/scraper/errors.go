package scraper

import (
	"errors"
	"fmt"
)

// ErrFetchFailed matches every *FetchError via errors.Is
var ErrFetchFailed = errors.New("fetch failed")

// FetchError reports that the page could not be retrieved: a network error,
// a timeout or a non-success status
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrFetchFailed) hold for any FetchError
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}
