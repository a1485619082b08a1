package notifier

import (
	"context"

	"github.com/pfrederiksen/cricscore/internal/match"
)

// Notifier defines the interface for pushing match summaries
type Notifier interface {
	// Notify sends summaries for the given matches
	Notify(ctx context.Context, matches []*match.Match) error
}
