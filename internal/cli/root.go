package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/prayer-locator/internal/config"
	"github.com/smokyabdulrahman/prayer-locator/internal/logging"
)

// Global flags shared across all subcommands.
var (
	FlagCity       string
	FlagCountry    string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagMethod     int
	FlagSchool     int
	FlagJSON       bool
	FlagCacheDir   string
	FlagTimeFormat string
	FlagLogLevel   string
	FlagEnvFile    string
)

// loadedConfig holds the config loaded during PersistentPreRunE.
// Available to all subcommand handlers.
var loadedConfig *config.Config

// logger is built from --log-level / log_level during PersistentPreRunE.
var logger = zerolog.Nop()

// NewRootCmd creates the root command for the prayer-locator CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "prayer-locator",
		Short:   "Prayer times and address for where you are",
		Long:    "Resolves the current location to a street address and shows the prayer\nschedule and next prayer for it, powered by Nominatim and the Al Adhan API.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(FlagEnvFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.ApplyEnv(); err != nil {
				return fmt.Errorf("invalid environment override: %w", err)
			}
			loadedConfig = cfg

			level := cfg.Runtime().LogLevel
			if flagWasSet(cmd.Flags(), cmd.Root().PersistentFlags(), "log-level") {
				level = FlagLogLevel
			}
			lg, err := logging.New(logging.Options{Level: level, JSON: FlagJSON})
			if err != nil {
				return err
			}
			logger = lg
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCity, "city", "", "Override city (takes precedence over config)")
	pf.StringVar(&FlagCountry, "country", "", "Override country")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Override latitude")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Override longitude")
	pf.IntVar(&FlagMethod, "method", -1, "Override calculation method (0-23)")
	pf.IntVar(&FlagSchool, "school", -1, "Override school (0=Shafi, 1=Hanafi)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/prayer-locator/)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagLogLevel, "log-level", "", "Log level: debug, info, warn, error or off")
	pf.StringVar(&FlagEnvFile, "env-file", ".env", "Load PRAYER_LOCATOR_* variables from this file if it exists")

	// Register subcommands.
	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newAddressCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("prayer-locator %s\n", version)
}

// flagOverrides copy explicitly set global flags onto the config.
var flagOverrides = map[string]func(*config.Config){
	"city":        func(c *config.Config) { c.City = FlagCity },
	"country":     func(c *config.Config) { c.Country = FlagCountry },
	"latitude":    func(c *config.Config) { c.Latitude = FlagLatitude },
	"longitude":   func(c *config.Config) { c.Longitude = FlagLongitude },
	"method":      func(c *config.Config) { m := FlagMethod; c.Method = &m },
	"school":      func(c *config.Config) { s := FlagSchool; c.School = &s },
	"cache-dir":   func(c *config.Config) { c.CacheDir = FlagCacheDir },
	"time-format": func(c *config.Config) { c.TimeFormat = FlagTimeFormat },
}

// effectiveConfig merges flags > environment > config file > defaults. The
// loaded config is copied, never modified.
func effectiveConfig(cmd *cobra.Command) *config.Config {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}

	root := cmd.Root().PersistentFlags()
	for name, apply := range flagOverrides {
		if flagWasSet(cmd.Flags(), root, name) {
			apply(&cfg)
		}
	}

	defaults := config.Defaults()
	if cfg.Method == nil {
		cfg.Method = defaults.Method
	}
	if cfg.School == nil {
		cfg.School = defaults.School
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}
	return &cfg
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
