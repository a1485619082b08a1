package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/cricscore/internal/logger"
	"github.com/pfrederiksen/cricscore/internal/notifier"
)

const (
	channelDryRun   = "dry-run"
	channelTwitter  = "twitter"
	channelTelegram = "telegram"
)

type notifyOptions struct {
	channel     string
	filter      string
	resultsOnly bool
}

func newNotifyCmd(a *app) *cobra.Command {
	opts := &notifyOptions{}
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Fetch the live scores once and push them to a channel",
		Long: `Fetch the live scores once and push a summary of each match.

Channels:
  dry-run   print the tweets that would be posted
  twitter   post one tweet per match (TWITTER_* credentials)
  telegram  send one digest (TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNotify(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.channel, "channel", channelDryRun, "Channel: dry-run, twitter or telegram")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Only notify matching records")
	cmd.Flags().BoolVar(&opts.resultsOnly, "results-only", false, "Only notify matches that have a result")

	return cmd
}

// newNotifier builds the notifier for a channel name
func (a *app) newNotifier(channel string) (notifier.Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case channelDryRun:
		return notifier.NewDryRunNotifier(a.stdout), nil
	case channelTwitter:
		return notifier.NewTwitterNotifier()
	case channelTelegram:
		return notifier.NewTelegramNotifier(a.cfg.Notify.TelegramToken, a.cfg.Notify.TelegramChatID)
	default:
		return nil, fmt.Errorf("invalid channel: %s (must be %s, %s or %s)", channel, channelDryRun, channelTwitter, channelTelegram)
	}
}

func (a *app) runNotify(ctx context.Context, opts *notifyOptions) error {
	f, err := parseFilter(opts.filter)
	if err != nil {
		return err
	}
	if opts.resultsOnly {
		f.ResultOnly = true
	}

	n, err := a.newNotifier(opts.channel)
	if err != nil {
		return err
	}
	sc, err := a.newScraper()
	if err != nil {
		return err
	}

	snap := fetch(ctx, sc)
	if snap.Err != nil {
		return snap.Err
	}

	matches := f.Apply(snap.Matches)
	if len(matches) == 0 {
		logger.Info("no matches to notify", logger.Fields{"channel": opts.channel})
		fmt.Fprintln(a.stdout, noMatchesMessage)
		return nil
	}

	if err := n.Notify(ctx, matches); err != nil {
		return fmt.Errorf("notifying %s: %w", opts.channel, err)
	}

	logger.Info("notified", logger.Fields{"channel": opts.channel, "matches": len(matches)})
	return nil
}
