package dashboard

import (
	"sync"
	"time"

	"github.com/pfrederiksen/cricscore/internal/logger"
	"github.com/pfrederiksen/cricscore/internal/match"
)

// Sink holds the latest refresh snapshot and pushes it to connected browsers
type Sink struct {
	mu     sync.RWMutex
	latest match.Snapshot
	hub    *Hub
}

// NewSink creates a sink with no snapshot yet
func NewSink() *Sink {
	return &Sink{hub: NewHub()}
}

// Publish replaces the latest snapshot and broadcasts the rendered strip
func (s *Sink) Publish(snap match.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	logger.SetGauge("matches.count", float64(len(snap.Matches)))

	fragment, err := renderLive(newView(snap, 0))
	if err != nil {
		logger.Error("rendering live fragment", nil, err)
		return
	}
	s.hub.Broadcast(fragment)
}

// Latest returns the most recent snapshot
func (s *Sink) Latest() match.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Hub returns the websocket hub the sink broadcasts on
func (s *Sink) Hub() *Hub {
	return s.hub
}

// view renders the latest snapshot with the given interval
func (s *Sink) view(interval time.Duration) view {
	return newView(s.Latest(), interval)
}
