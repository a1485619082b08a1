package extractor

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/cricscore/internal/match"
)

// Policy controls which teams and cards survive extraction
type Policy struct {
	// RequireTeamName drops team blocks without a non-empty name
	RequireTeamName bool `yaml:"require_team_name"`
	// RequireTeams drops cards that end up with no teams
	RequireTeams bool `yaml:"require_teams"`
}

// StrictPolicy is the default: named teams only, and at least one team per card
var StrictPolicy = Policy{RequireTeamName: true, RequireTeams: true}

// LoosePolicy keeps nameless teams and teamless cards, still requiring a status
var LoosePolicy = Policy{}

// Extractor locates match cards in page markup
type Extractor struct {
	selectors *CompiledSelectors
	policy    Policy
}

// Option configures an Extractor
type Option func(*Extractor)

// WithPolicy sets the inclusion policy
func WithPolicy(p Policy) Option {
	return func(e *Extractor) {
		e.policy = p
	}
}

// WithSelectors replaces the default selector table
func WithSelectors(c *CompiledSelectors) Option {
	return func(e *Extractor) {
		if c != nil {
			e.selectors = c
		}
	}
}

// New creates an Extractor using DefaultSelectors and StrictPolicy unless overridden
func New(opts ...Option) *Extractor {
	e := &Extractor{
		selectors: defaultCompiled,
		policy:    StrictPolicy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the active inclusion policy
func (e *Extractor) Policy() Policy {
	return e.policy
}

// Extract parses markup and returns the surviving match records in card order.
// It never fails: unparseable or unrelated markup yields an empty slice.
func (e *Extractor) Extract(markup []byte) []*match.Match {
	return e.ExtractReader(bytes.NewReader(markup))
}

// ExtractReader is Extract over a reader
func (e *Extractor) ExtractReader(r io.Reader) []*match.Match {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return []*match.Match{}
	}
	return e.ExtractDocument(doc)
}

// ExtractDocument runs extraction over an already parsed document
func (e *Extractor) ExtractDocument(doc *goquery.Document) []*match.Match {
	matches := make([]*match.Match, 0)

	doc.FindMatcher(e.selectors.card).Each(func(i int, card *goquery.Selection) {
		m := e.extractCard(card)
		if e.keep(m) {
			matches = append(matches, m)
		}
	})

	return matches
}

// extractCard builds a record from one card; every lookup is independent
func (e *Extractor) extractCard(card *goquery.Selection) *match.Match {
	m := &match.Match{
		Status:       firstText(card, e.selectors.status),
		Details:      firstText(card, e.selectors.details),
		Teams:        make([]match.Team, 0, 2),
		OtherDetails: firstText(card, e.selectors.otherDetails),
		Result:       firstText(card, e.selectors.result),
	}

	card.FindMatcher(e.selectors.team).Each(func(i int, block *goquery.Selection) {
		team := match.Team{
			Name:  firstText(block, e.selectors.teamName),
			Score: firstText(block, e.selectors.teamScore),
		}

		flag := block.FindMatcher(e.selectors.teamFlag).First()
		if flag.Length() > 0 {
			img := flag.FindMatcher(e.selectors.flagImage).First()
			if src, exists := img.Attr("src"); exists {
				team.FlagURL = match.Ptr(src)
			}
		}

		if e.policy.RequireTeamName && !match.Present(team.Name) {
			return
		}
		m.Teams = append(m.Teams, team)
	})

	return m
}

// keep applies the record-level inclusion filter
func (e *Extractor) keep(m *match.Match) bool {
	if !match.Present(m.Status) {
		return false
	}
	if e.policy.RequireTeams && len(m.Teams) == 0 {
		return false
	}
	return true
}

// firstText returns the trimmed text of the first descendant matching m, or nil
func firstText(s *goquery.Selection, m goquery.Matcher) *string {
	found := s.FindMatcher(m).First()
	if found.Length() == 0 {
		return nil
	}
	return match.Ptr(strings.TrimSpace(found.Text()))
}
