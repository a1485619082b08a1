package extractor

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Selectors maps each extracted field to the CSS selector that locates it.
// Card is evaluated against the whole document, Team against a card, the
// Team* selectors against a team block, and the rest against a card.
type Selectors struct {
	Card         string `yaml:"card"`
	Status       string `yaml:"status"`
	Details      string `yaml:"details"`
	Team         string `yaml:"team"`
	TeamName     string `yaml:"team_name"`
	TeamFlag     string `yaml:"team_flag"`
	FlagImage    string `yaml:"flag_image"`
	TeamScore    string `yaml:"team_score"`
	OtherDetails string `yaml:"other_details"`
	Result       string `yaml:"result"`
}

// DefaultSelectors describes the live scores strip of espncricinfo.com.
//
// Compound class selectors match any element carrying at least those classes, so
// "div.slick-slide" also picks up "slick-slide slick-active", the team selector
// also picks up the faded "ds-opacity-50" block, and the name selector also
// picks up the "!ds-text-typo-mid3" modifier.
var DefaultSelectors = Selectors{
	Card:         "div.slick-slide",
	Status:       "span.ds-text-tight-xs.ds-font-bold.ds-uppercase.ds-leading-5",
	Details:      "span.ds-text-tight-xs.ds-text-typo-mid2",
	Team:         "div.ci-team-score.ds-flex.ds-justify-between.ds-items-center.ds-text-typo",
	TeamName:     "p.ds-text-tight-s.ds-font-bold.ds-capitalize.ds-truncate",
	TeamFlag:     "div.ds-flex.ds-items-center.ds-min-w-0.ds-mr-1",
	FlagImage:    "img",
	TeamScore:    "div.ds-text-compact-s.ds-text-typo.ds-text-right.ds-whitespace-nowrap",
	OtherDetails: "div.ds-text-tight-xs.ds-text-right",
	Result:       "div.ds-h-3",
}

// CompiledSelectors holds a parsed Selectors table
type CompiledSelectors struct {
	card         cascadia.Selector
	status       cascadia.Selector
	details      cascadia.Selector
	team         cascadia.Selector
	teamName     cascadia.Selector
	teamFlag     cascadia.Selector
	flagImage    cascadia.Selector
	teamScore    cascadia.Selector
	otherDetails cascadia.Selector
	result       cascadia.Selector
}

// CompileSelectors parses every selector in the table. Empty entries fall back
// to the matching DefaultSelectors entry.
func CompileSelectors(s Selectors) (*CompiledSelectors, error) {
	s = s.withDefaults()

	c := &CompiledSelectors{}
	fields := []struct {
		name string
		src  string
		dst  *cascadia.Selector
	}{
		{"card", s.Card, &c.card},
		{"status", s.Status, &c.status},
		{"details", s.Details, &c.details},
		{"team", s.Team, &c.team},
		{"team_name", s.TeamName, &c.teamName},
		{"team_flag", s.TeamFlag, &c.teamFlag},
		{"flag_image", s.FlagImage, &c.flagImage},
		{"team_score", s.TeamScore, &c.teamScore},
		{"other_details", s.OtherDetails, &c.otherDetails},
		{"result", s.Result, &c.result},
	}

	for _, f := range fields {
		sel, err := cascadia.Compile(f.src)
		if err != nil {
			return nil, fmt.Errorf("compiling %s selector %q: %w", f.name, f.src, err)
		}
		*f.dst = sel
	}

	return c, nil
}

// withDefaults fills blank entries from DefaultSelectors
func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors
	if s.Card == "" {
		s.Card = d.Card
	}
	if s.Status == "" {
		s.Status = d.Status
	}
	if s.Details == "" {
		s.Details = d.Details
	}
	if s.Team == "" {
		s.Team = d.Team
	}
	if s.TeamName == "" {
		s.TeamName = d.TeamName
	}
	if s.TeamFlag == "" {
		s.TeamFlag = d.TeamFlag
	}
	if s.FlagImage == "" {
		s.FlagImage = d.FlagImage
	}
	if s.TeamScore == "" {
		s.TeamScore = d.TeamScore
	}
	if s.OtherDetails == "" {
		s.OtherDetails = d.OtherDetails
	}
	if s.Result == "" {
		s.Result = d.Result
	}
	return s
}

var defaultCompiled = mustCompile(DefaultSelectors)

func mustCompile(s Selectors) *CompiledSelectors {
	c, err := CompileSelectors(s)
	if err != nil {
		panic(err)
	}
	return c
}
