package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/cricscore/internal/config"
	"github.com/pfrederiksen/cricscore/internal/dashboard"
	"github.com/pfrederiksen/cricscore/internal/scheduler"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live scores dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().String("addr", ":8080", "Address for the dashboard to listen on")
	cmd.Flags().Int("interval", config.DefaultIntervalSeconds, "Refresh interval in seconds (10-600)")

	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	sc, err := a.newScraper()
	if err != nil {
		return err
	}

	sink := dashboard.NewSink()
	sched, err := scheduler.New(func(ctx context.Context) error {
		snap := fetch(ctx, sc)
		sink.Publish(snap)
		return snap.Err
	}, a.cfg.Interval())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedDone := make(chan error, 1)
	go func() {
		schedDone <- sched.Run(ctx)
	}()

	srv := dashboard.NewServer(sink, sched)
	serveErr := srv.ListenAndServe(ctx, a.cfg.Server.Addr)

	cancel()
	if err := <-schedDone; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return serveErr
}
