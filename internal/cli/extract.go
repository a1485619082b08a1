package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/cricscore/internal/match"
	"github.com/pfrederiksen/cricscore/internal/scraper"
)

func newExtractCmd(a *app) *cobra.Command {
	opts := &printOptions{}
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract matches from saved page markup",
		Long: `Extract matches from a saved copy of the live scores page.
Reads stdin when the file is "-" or omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return a.runExtract(cmd, path, opts)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, path string, opts *printOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}
	f, err := parseFilter(opts.filter)
	if err != nil {
		return err
	}
	ex, err := a.newExtractor()
	if err != nil {
		return err
	}

	src := scraper.NewFileSource(path)
	src.SetStdin(cmd.InOrStdin())

	markup, err := src.Fetch(cmd.Context(), path, nil)
	if err != nil {
		return err
	}

	snap := match.Snapshot{Matches: f.Apply(ex.Extract(markup))}
	if err := WriteOutput(a.stdout, snap, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
