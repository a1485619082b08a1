package filter

import (
	"fmt"
	"strings"
)

// Parse builds a Filter from a whitespace separated query.
//
// Supported tokens:
//   - "team:india" or team:"new zealand" - team name substring, repeatable
//   - "status:stumps" - status substring
//   - "live" - live matches only
//   - "result" - matches with a result line only
func Parse(query string) (*Filter, error) {
	tokens, err := tokenize(query)
	if err != nil {
		return nil, err
	}

	f := &Filter{}
	for _, tok := range tokens {
		key, value, hasValue := strings.Cut(tok, ":")
		key = strings.ToLower(key)

		switch {
		case key == "team" && hasValue:
			if value == "" {
				return nil, fmt.Errorf("team filter cannot be empty")
			}
			f.Teams = append(f.Teams, value)
		case key == "status" && hasValue:
			if value == "" {
				return nil, fmt.Errorf("status filter cannot be empty")
			}
			if f.Status != "" {
				return nil, fmt.Errorf("status filter given twice")
			}
			f.Status = value
		case key == "live" && !hasValue:
			f.LiveOnly = true
		case key == "result" && !hasValue:
			f.ResultOnly = true
		default:
			return nil, fmt.Errorf("unknown filter token: %q", tok)
		}
	}

	return f, nil
}

// tokenize splits on whitespace, keeping double-quoted runs together
func tokenize(query string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inQuotes := false

	for _, r := range query {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case (r == ' ' || r == '\t') && !inQuotes:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuotes {
		return nil, fmt.Errorf("unterminated quote in filter: %q", query)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}
