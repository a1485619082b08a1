// Package cli implements the command-line interface for cricscore.
//
// The cli package provides the Cobra-based CLI: serving the live dashboard,
// watching scores in the terminal, one-shot fetches, extracting from saved
// markup and pushing match summaries to notifiers. It loads configuration,
// sets up logging and wires the scraper, scheduler and sinks together.
package cli
