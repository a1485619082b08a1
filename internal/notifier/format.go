package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/pfrederiksen/cricscore/internal/match"
)

const (
	tweetLimit    = 280
	telegramLimit = 4096
)

// formatTweet formats a match as a tweet
func formatTweet(m *match.Match) string {
	var b strings.Builder

	b.WriteString("🏏 " + m.Title() + "\n")

	if line := statusLine(m); line != "" {
		b.WriteString(line + "\n")
	}

	for _, t := range m.Teams {
		if line := teamLine(t); line != "" {
			b.WriteString(line + "\n")
		}
	}

	if m.HasResult() {
		b.WriteString("➡️ " + match.Text(m.Result) + "\n")
	}

	b.WriteString("\n#cricket")

	return truncate(b.String(), tweetLimit)
}

// FormatDigest formats matches as a Telegram HTML digest
func FormatDigest(matches []*match.Match, at time.Time) string {
	if len(matches) == 0 {
		return "No live matches available right now."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏏 <b>Live cricket</b> • %d match%s\n", len(matches), pluralize(len(matches)))
	fmt.Fprintf(&b, "<i>Updated %s</i>\n\n", at.UTC().Format("2006-01-02 15:04 MST"))

	for _, m := range matches {
		fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(m.Title()))
		if line := statusLine(m); line != "" {
			b.WriteString(html.EscapeString(line) + "\n")
		}
		for _, t := range m.Teams {
			if line := teamLine(t); line != "" {
				b.WriteString("  • " + html.EscapeString(line) + "\n")
			}
		}
		if m.HasResult() {
			fmt.Fprintf(&b, "<i>%s</i>\n", html.EscapeString(match.Text(m.Result)))
		}
		b.WriteString("\n")
	}

	return truncate(strings.TrimRight(b.String(), "\n"), telegramLimit)
}

// statusLine joins status and details, e.g. "Live • 2nd Test • Perth"
func statusLine(m *match.Match) string {
	status := match.Text(m.Status)
	details := strings.TrimSpace(strings.TrimPrefix(match.Text(m.Details), "•"))
	switch {
	case status != "" && details != "":
		return status + " • " + details
	case status != "":
		return status
	default:
		return details
	}
}

// teamLine renders "Name Score", leaving out whichever part is absent
func teamLine(t match.Team) string {
	return strings.TrimSpace(match.Text(t.Name) + " " + match.Text(t.Score))
}

// truncate cuts s to at most limit runes, ending with "..."
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "es"
}
