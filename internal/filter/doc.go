// Package filter narrows a set of match records for display.
//
// Filters match team names and status text case-insensitively by substring and can
// restrict the view to live matches or to matches that already carry a result. Apply
// never reorders records, so card order from the page is preserved.
//
// Example usage:
//
//	f, err := filter.Parse("team:india live")
//	visible := f.Apply(matches)
package filter
