package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-locator/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nAfter the last prayer of the day this is tomorrow's first prayer.\nSuitable for status bars such as tmux.",
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: "+strings.Join(prayer.Modes(), ", ")+", or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig(cmd)
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	loc, err := resolveLocation(ctx, cfg, store)
	if err != nil {
		return err
	}

	override := ""
	if cmd.Flags().Changed("prayers") {
		override = flagPrayers
	}
	provider := newProvider(cfg, store, selectedPrayers(cfg, override))

	now := time.Now()
	today, err := provider.Day(ctx, loc, now)
	if err != nil {
		return err
	}
	if tz, err := time.LoadLocation(today.Timezone); err == nil {
		now = now.In(tz)
	}

	// Tomorrow is only needed once today's events have all passed.
	var tomorrow []prayer.Event
	if prayer.NextEvent(today.Events, now) == nil {
		day, err := provider.Day(ctx, loc, now.AddDate(0, 0, 1))
		if err != nil {
			// Keep status bars quiet: show the last prayer as done.
			if n := len(today.Events); n > 0 {
				logger.Debug().Err(err).Msg("tomorrow's prayer times unavailable")
				fmt.Printf("%s --:--", today.Events[n-1].Name)
				return nil
			}
			return fmt.Errorf("failed to fetch tomorrow's times: %w", err)
		}
		tomorrow = day.Events
	}

	next, ok := prayer.SelectNext(today.Events, tomorrow, now)
	if !ok {
		return fmt.Errorf("could not determine next prayer")
	}

	out, err := prayer.Format(next, flagFormat, goTimeFormat(cfg))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
