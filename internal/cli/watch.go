package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-locator/internal/display"
	"github.com/smokyabdulrahman/prayer-locator/internal/locator"
	"github.com/smokyabdulrahman/prayer-locator/internal/prayer"
	"github.com/smokyabdulrahman/prayer-locator/internal/server"
)

var (
	flagPollInterval time.Duration
	flagAlertLead    time.Duration
	flagBell         bool
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the location and keep address and next prayer current",
		Long: "Track the device location, re-resolving the address and prayer times when it\n" +
			"moves, on the refresh_cron schedule, and after midnight. Press Enter to\n" +
			"refresh immediately. Alerts fire at each prayer and are published to\n" +
			"MQTT when mqtt_broker is set.",
		RunE: runWatch,
	}
	addStackFlags(cmd)
	cmd.Flags().BoolVar(&flagBell, "bell", true, "Print an alert line when a prayer time arrives")
	return cmd
}

func addStackFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&flagPollInterval, "poll", 10*time.Minute, "How often to poll IP geolocation when no coordinate is configured")
	cmd.Flags().DurationVar(&flagAlertLead, "lead", 0, "Fire alerts this long before each prayer")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStack(ctx, cfg, stackOptions{PollInterval: flagPollInterval, AlertLead: flagAlertLead, Bell: flagBell})
	if err != nil {
		return err
	}
	defer st.Close()

	updates := st.coord.Subscribe(ctx)
	if err := st.Start(ctx); err != nil {
		return err
	}

	go refreshOnEnter(ctx, st.coord)

	goTimeFmt := goTimeFormat(cfg)
	last := ""
	for s := range updates {
		if FlagJSON {
			data, err := json.Marshal(server.NewView(s))
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			continue
		}
		line := renderSnapshot(s, goTimeFmt)
		if line != last {
			fmt.Println(line)
			last = line
		}
	}
	return nil
}

// refreshOnEnter maps each line on stdin to a Manual refresh.
func refreshOnEnter(ctx context.Context, c *locator.Coordinator) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		go func() {
			if err := c.Refresh(ctx, locator.Manual); err != nil {
				logger.Warn().Err(err).Msg("manual refresh")
			}
		}()
	}
}

// renderSnapshot is the one-line terminal form of a snapshot.
func renderSnapshot(s locator.Snapshot, goTimeFmt string) string {
	if !s.HasCoordinate {
		if s.SensorErr != nil {
			return display.Warn("  location unavailable: " + s.SensorErr.Error())
		}
		return display.Muted("  waiting for location")
	}
	if s.Loading && s.Address.Address == nil && s.Times.Today == nil {
		return display.Muted("  resolving " + s.Coordinate.String())
	}

	var parts []string
	place := s.Coordinate.String()
	if a := s.Address.Address; a != nil {
		if h := addressHeadline(*a); h != "" {
			place = h
		}
	}
	parts = append(parts, display.Bold(place))

	if s.Next != nil {
		parts = append(parts, display.Accent(fmt.Sprintf("%s %s", s.Next.Event.Name, s.Next.Event.Time.Format(goTimeFmt)))+
			fmt.Sprintf(" in %s", prayer.FormatRemaining(s.Next.Remaining)))
	}
	if s.Loading {
		parts = append(parts, display.Muted("refreshing"))
	}
	if s.Err != nil {
		label := "warning"
		if s.Status == locator.Failed {
			label = "failed"
		}
		parts = append(parts, display.Warn(label+": "+s.Err.Error()))
	}
	if s.PermissionDenied() {
		parts = append(parts, display.Warn("location permission denied, press Enter to refresh"))
	}
	return "  " + strings.Join(parts, "  ")
}
