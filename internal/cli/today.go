package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-locator/internal/display"
	"github.com/smokyabdulrahman/prayer-locator/internal/prayer"
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's prayer schedule",
		Long:  "Display today's prayer times with the current and next prayer highlighted.\nThis is also what runs when no subcommand is given.",
		RunE:  runToday,
	}
}

func runToday(cmd *cobra.Command, args []string) error {
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

	provider := newProvider(cfg, store, selectedPrayers(cfg, ""))
	now := time.Now()
	day, err := provider.Day(ctx, loc, now)
	if err != nil {
		return err
	}

	// Re-anchor "now" to the location's timezone.
	if tz, err := time.LoadLocation(day.Timezone); err == nil {
		now = now.In(tz)
	}

	current := prayer.CurrentEvent(day.Events, now)
	next := prayer.NextEvent(day.Events, now)
	goTimeFmt := goTimeFormat(cfg)

	if FlagJSON {
		return printTodayJSON(day, loc, current, next, now, goTimeFmt)
	}
	printTodayRich(day, loc, current, next, now, goTimeFmt)
	return nil
}

// buildLocationStr builds a "City, Country" string from available data.
func buildLocationStr(loc prayer.Location) string {
	if loc.City != "" && loc.Country != "" {
		return loc.City + ", " + loc.Country
	}
	// Fall back to coordinates.
	return fmt.Sprintf("%.4f, %.4f", loc.Coordinate.Latitude, loc.Coordinate.Longitude)
}

// gregorianLabel prefers the API's date label and falls back to now.
func gregorianLabel(day *prayer.Day, now time.Time) string {
	if day.Gregorian != "" {
		return day.Gregorian
	}
	return now.Format("02 Jan 2006")
}

// printTodayRich renders the colored terminal output for today's prayer schedule.
func printTodayRich(day *prayer.Day, loc prayer.Location, current, next *prayer.Event, now time.Time, goTimeFmt string) {
	fmt.Println()
	fmt.Printf("  %s\n", display.Bold("Prayer Times"))
	fmt.Println()

	fmt.Printf("  %s\n", buildLocationStr(loc))
	fmt.Printf("  %s\n", day.Timezone)
	fmt.Printf("  %s\n", gregorianLabel(day, now))
	if day.Hijri != "" {
		fmt.Printf("  %s\n", day.Hijri)
	}
	fmt.Println()

	fmt.Print(scheduleTable(day.Events, current, next, now, goTimeFmt).Render())
	fmt.Println()
}

// scheduleTable lays out the day with the current prayer faded and the next
// one highlighted with its countdown.
func scheduleTable(events []prayer.Event, current, next *prayer.Event, now time.Time, goTimeFmt string) *display.Table {
	tbl := display.NewTable()
	for _, e := range events {
		switch {
		case current != nil && e.Name == current.Name:
			tbl.SetStyle(tbl.AddRow(e.Name, e.Time.Format(goTimeFmt)), display.Faded)
		case next != nil && e.Name == next.Name:
			note := "<- next in " + prayer.FormatRemaining(prayer.TimeRemaining(e, now))
			tbl.SetStyle(tbl.AddRow(e.Name, e.Time.Format(goTimeFmt), note), display.Highlight)
		default:
			tbl.AddRow(e.Name, e.Time.Format(goTimeFmt))
		}
	}
	return tbl
}

// todayJSON is the JSON output structure for the today command.
type todayJSON struct {
	Location todayJSONLocation `json:"location"`
	Date     todayJSONDate     `json:"date"`
	Timings  map[string]string `json:"timings"`
	Current  string            `json:"current"`
	Next     *todayJSONNext    `json:"next"`
}

type todayJSONLocation struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type todayJSONDate struct {
	Gregorian string `json:"gregorian"`
	Hijri     string `json:"hijri"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
}

func buildTodayJSON(day *prayer.Day, loc prayer.Location, current, next *prayer.Event, now time.Time, goTimeFmt string) todayJSON {
	timings := make(map[string]string, len(day.Events))
	for _, e := range day.Events {
		timings[strings.ToLower(e.Name)] = e.Time.Format(goTimeFmt)
	}

	out := todayJSON{
		Location: todayJSONLocation{
			City:      loc.City,
			Country:   loc.Country,
			Timezone:  day.Timezone,
			Latitude:  loc.Coordinate.Latitude,
			Longitude: loc.Coordinate.Longitude,
		},
		Date:    todayJSONDate{Gregorian: gregorianLabel(day, now), Hijri: day.Hijri},
		Timings: timings,
	}
	if current != nil {
		out.Current = strings.ToLower(current.Name)
	}
	if next != nil {
		out.Next = &todayJSONNext{
			Prayer:    strings.ToLower(next.Name),
			Time:      next.Time.Format(goTimeFmt),
			Remaining: prayer.FormatRemaining(prayer.TimeRemaining(*next, now)),
		}
	}
	return out
}

func printTodayJSON(day *prayer.Day, loc prayer.Location, current, next *prayer.Event, now time.Time, goTimeFmt string) error {
	data, err := json.MarshalIndent(buildTodayJSON(day, loc, current, next, now, goTimeFmt), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
