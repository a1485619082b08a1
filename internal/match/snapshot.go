package match

import (
	"encoding/json"
	"time"
)

// Snapshot is the outcome of one refresh cycle as handed to the sinks.
// Err is set when the source could not be reached; Matches is then empty.
type Snapshot struct {
	Matches   []*Match
	FetchedAt time.Time
	Cached    bool
	Err       error
}

// OK reports whether the refresh reached the source
func (s *Snapshot) OK() bool {
	return s.Err == nil
}

type snapshotJSON struct {
	Matches   []*Match  `json:"matches"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
	Error     string    `json:"error,omitempty"`
}

// MarshalJSON renders Err as a plain "error" string
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		Matches:   s.Matches,
		FetchedAt: s.FetchedAt,
		Cached:    s.Cached,
	}
	if out.Matches == nil {
		out.Matches = []*Match{}
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return json.Marshal(out)
}
