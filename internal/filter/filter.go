package filter

import (
	"strings"

	"github.com/pfrederiksen/cricscore/internal/match"
)

// Filter represents match filtering criteria
type Filter struct {
	// Teams keeps matches where any team name contains one of these (case-insensitive)
	Teams []string `json:"teams,omitempty"`

	// Status keeps matches whose status contains this text (case-insensitive)
	Status string `json:"status,omitempty"`

	// LiveOnly keeps matches whose status marks them as live
	LiveOnly bool `json:"live_only,omitempty"`

	// ResultOnly keeps matches that carry a result line
	ResultOnly bool `json:"result_only,omitempty"`
}

// IsEmpty reports whether the filter matches every record
func (f *Filter) IsEmpty() bool {
	return f == nil ||
		(len(f.Teams) == 0 &&
			f.Status == "" &&
			!f.LiveOnly &&
			!f.ResultOnly)
}

// Matches reports whether m passes every active criterion
func (f *Filter) Matches(m *match.Match) bool {
	if f.IsEmpty() {
		return true
	}

	if f.LiveOnly && !m.IsLive() {
		return false
	}

	if f.ResultOnly && !m.HasResult() {
		return false
	}

	if f.Status != "" {
		status := strings.ToLower(match.Text(m.Status))
		if !strings.Contains(status, strings.ToLower(f.Status)) {
			return false
		}
	}

	if len(f.Teams) > 0 {
		matched := false
		for _, name := range m.TeamNames() {
			nameLower := strings.ToLower(name)
			for _, team := range f.Teams {
				if strings.Contains(nameLower, strings.ToLower(team)) {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply returns the matching records in their original order. An empty filter
// returns the input slice unchanged.
func (f *Filter) Apply(matches []*match.Match) []*match.Match {
	if f.IsEmpty() {
		return matches
	}

	filtered := make([]*match.Match, 0, len(matches))
	for _, m := range matches {
		if f.Matches(m) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// String renders the filter in the syntax accepted by Parse
func (f *Filter) String() string {
	if f.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(f.Teams)+3)
	for _, team := range f.Teams {
		parts = append(parts, "team:"+quote(team))
	}
	if f.Status != "" {
		parts = append(parts, "status:"+quote(f.Status))
	}
	if f.LiveOnly {
		parts = append(parts, "live")
	}
	if f.ResultOnly {
		parts = append(parts, "result")
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
