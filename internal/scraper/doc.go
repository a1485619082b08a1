// Package scraper fetches the cricket landing page and turns it into match records.
//
// A Source retrieves raw markup: HTTPSource issues a plain GET with browser-like
// headers, BrowserSource renders the page in headless Chrome, and FileSource reads a
// saved copy. Scraper combines a Source with an extractor and memoizes the last
// successful result for a configurable TTL. Transport failures surface as a
// *FetchError so callers can tell "could not reach the source" apart from "no live
// matches".
package scraper
