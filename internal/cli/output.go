package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/cricscore/internal/match"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

const (
	noMatchesMessage   = "No live matches available right now."
	unreachableMessage = "Could not reach the score source"
	separator          = "----------------------------------------"
)

// WriteOutput writes the snapshot in the specified format
func WriteOutput(w io.Writer, snap match.Snapshot, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, snap)
	case FormatText:
		return writeText(w, snap)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the snapshot as JSON
func writeJSON(w io.Writer, snap match.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snap)
}

// writeText outputs the snapshot as human-readable text
func writeText(w io.Writer, snap match.Snapshot) error {
	if snap.Err != nil {
		_, err := fmt.Fprintf(w, "%s: %v\n", unreachableMessage, snap.Err)
		return err
	}

	if len(snap.Matches) == 0 {
		_, err := fmt.Fprintln(w, noMatchesMessage)
		return err
	}

	for _, m := range snap.Matches {
		writeMatch(w, m)
	}

	if !snap.FetchedAt.IsZero() {
		cached := ""
		if snap.Cached {
			cached = ", cached"
		}
		fmt.Fprintf(w, "Last updated at %s (%d %s%s)\n",
			snap.FetchedAt.Local().Format("15:04:05 MST"), len(snap.Matches), plural(len(snap.Matches), "match", "matches"), cached)
	}
	return nil
}

func writeMatch(w io.Writer, m *match.Match) {
	header := strings.TrimSpace(match.Text(m.Status) + "  " + match.Text(m.Details))
	if header != "" {
		fmt.Fprintln(w, header)
	}

	for _, t := range m.Teams {
		name := match.Text(t.Name)
		if name == "" {
			name = "?"
		}
		if score := match.Text(t.Score); score != "" {
			fmt.Fprintf(w, "  %-24s %s\n", name, score)
		} else {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}

	if m.HasResult() {
		fmt.Fprintf(w, "  %s\n", match.Text(m.Result))
	}
	if other := match.Text(m.OtherDetails); other != "" {
		fmt.Fprintf(w, "  %s\n", other)
	}
	fmt.Fprintln(w, separator)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
