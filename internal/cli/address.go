package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-locator/internal/display"
	"github.com/smokyabdulrahman/prayer-locator/internal/geocode"
)

func newAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Resolve the current coordinate to a street address",
		Long:  "Reverse-geocode the configured or detected coordinate and print the\nstreet, district, city, province and country.",
		RunE:  runAddress,
	}
}

func runAddress(cmd *cobra.Command, args []string) error {
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
	if loc.Coordinate.IsZero() {
		return errors.New("address lookup needs coordinates; use --latitude/--longitude or drop --city")
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Runtime().CallTimeout)
	defer cancel()
	addr, err := resolver.Resolve(ctx, loc.Coordinate)
	if err != nil {
		return fmt.Errorf("%s: %w", geocode.KindOf(err), err)
	}

	if FlagJSON {
		data, err := json.MarshalIndent(addr, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println()
	fmt.Printf("  %s\n", display.Bold(addressHeadline(addr)))
	fmt.Printf("  %s\n", display.Muted(loc.Coordinate.String()))
	fmt.Println()
	for _, row := range addressRows(addr) {
		fmt.Printf("  %-9s %s\n", row[0], row[1])
	}
	fmt.Println()
	return nil
}

func addressHeadline(a geocode.Address) string {
	if s := a.Short(); s != "" {
		return s
	}
	return a.FullAddress
}

// addressRows lists the non-empty components in display order.
func addressRows(a geocode.Address) [][2]string {
	var rows [][2]string
	for _, r := range [][2]string{
		{"Street", a.Street},
		{"District", a.District},
		{"City", a.City},
		{"Province", a.Province},
		{"Country", a.Country},
	} {
		if r[1] != "" {
			rows = append(rows, r)
		}
	}
	return rows
}
