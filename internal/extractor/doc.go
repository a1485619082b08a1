// Package extractor turns the markup of the cricket landing page into match records.
//
// All CSS selectors that describe the upstream page live in a single table
// (Selectors), so a layout change upstream is fixed in one place. Extraction is
// best effort: lookups that find nothing leave the field nil, and markup that holds
// no cards yields an empty slice. Extract never returns an error.
package extractor
