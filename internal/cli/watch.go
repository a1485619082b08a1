package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/cricscore/internal/config"
	"github.com/pfrederiksen/cricscore/internal/scheduler"
)

type printOptions struct {
	format string
	filter string
}

func (o *printOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&o.filter, "filter", "", `Only show matching records, e.g. 'team:"new zealand" live'`)
}

func newOnceCmd(a *app) *cobra.Command {
	opts := &printOptions{}
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Fetch the live scores once and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOnce(cmd.Context(), opts)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	opts := &printOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the live scores on every refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context(), opts)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().Int("interval", config.DefaultIntervalSeconds, "Refresh interval in seconds (10-600)")
	return cmd
}

func (a *app) runOnce(ctx context.Context, opts *printOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}
	f, err := parseFilter(opts.filter)
	if err != nil {
		return err
	}
	sc, err := a.newScraper()
	if err != nil {
		return err
	}

	snap := fetch(ctx, sc)
	snap.Matches = f.Apply(snap.Matches)

	if err := WriteOutput(a.stdout, snap, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return snap.Err
}

func (a *app) runWatch(ctx context.Context, opts *printOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}
	f, err := parseFilter(opts.filter)
	if err != nil {
		return err
	}
	sc, err := a.newScraper()
	if err != nil {
		return err
	}

	sched, err := scheduler.New(func(ctx context.Context) error {
		snap := fetch(ctx, sc)
		snap.Matches = f.Apply(snap.Matches)
		if err := WriteOutput(a.stdout, snap, format); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return snap.Err
	}, a.cfg.Interval())
	if err != nil {
		return err
	}

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
