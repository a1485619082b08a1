// Package match provides the record types produced by one scrape of the live scores strip.
//
// A Match is built once per extraction pass and is never mutated afterwards. Every
// optional text field is a *string: nil means the field was not found in the markup,
// while a pointer to "" means the element was present but carried no text.
package match
