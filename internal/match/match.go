package match

import (
	"strings"
)

// Team is one side of a match card, in the order it appears on the card
type Team struct {
	Name    *string `json:"name"`
	FlagURL *string `json:"flag_url"`
	Score   *string `json:"score"`
}

// Match is a single card from the live scores strip
type Match struct {
	Status       *string `json:"status"`
	Details      *string `json:"details"`
	Teams        []Team  `json:"teams"`
	OtherDetails *string `json:"other_details"`
	Result       *string `json:"result"`
}

// Ptr returns a pointer to s
func Ptr(s string) *string {
	return &s
}

// Text dereferences an optional field, returning "" when it is absent
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Present reports whether an optional field was found and holds non-blank text
func Present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// IsLive reports whether the status marks the match as in progress
func (m *Match) IsLive() bool {
	return strings.Contains(strings.ToUpper(Text(m.Status)), "LIVE")
}

// HasResult reports whether the card carries a result line
func (m *Match) HasResult() bool {
	return Present(m.Result)
}

// TeamNames returns the present team names in card order
func (m *Match) TeamNames() []string {
	names := make([]string, 0, len(m.Teams))
	for _, t := range m.Teams {
		if Present(t.Name) {
			names = append(names, *t.Name)
		}
	}
	return names
}

// Title joins team names as "A v B", falling back to the status line
func (m *Match) Title() string {
	if names := m.TeamNames(); len(names) > 0 {
		return strings.Join(names, " v ")
	}
	return Text(m.Status)
}
