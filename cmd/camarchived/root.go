package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tauraamui/camarchive/pkg/config"
	"github.com/tauraamui/camarchive/pkg/configdef"
	"github.com/tauraamui/camarchive/pkg/log"
	"github.com/tauraamui/camarchive/pkg/video/videofilter"
)

var rootCmd = &cobra.Command{
	Use:   name,
	Short: "Archive still frames from network cameras",
	Long: `Polls cameras at a fixed interval and writes every frame which differs
enough from the last one kept to <results_path>/<camera id>/<timestamp>.png.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		log.SetLevel(viper.GetString("logging_level"))
		if path := viper.GetString("config"); len(path) > 0 {
			return os.Setenv("CAMARCHIVE_CONFIG", path)
		}
		return nil
	},
}

func init() {
	viper.SetEnvPrefix("camarchive")
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is <user config dir>/tacusci/camarchive/config.json)")
	flags.String("log-level", "warn", "debug | info | warn | silent")
	flags.Int("num-processes", 0, "fetches allowed in flight at once")
	flags.String("results-path", "", "directory frames are written under")
	flags.Float64("image-difference-percentage", 0, "percentage of pixels which must change to keep a frame, 0 keeps every frame")
	flags.Float64("interval", 0, "seconds between fetches per camera")
	flags.Float64("duration", 0, "seconds to archive for, 0 fetches once")
	flags.Float64("fetch-timeout", 0, "seconds allowed per fetch, must be shorter than the interval")
	flags.String("source-backend", "", "frame source backend, set to mock for a synthetic test card")
	flags.String("metrics-address", "", "address to serve Prometheus metrics on, e.g. :9100")
	flags.Bool("ledger", false, "record the run outcome in the local run ledger")

	for key, flag := range map[string]string{
		"config":                      "config",
		"logging_level":               "log-level",
		"num_processes":               "num-processes",
		"results_path":                "results-path",
		"image_difference_percentage": "image-difference-percentage",
		"interval_seconds":            "interval",
		"duration_seconds":            "duration",
		"fetch_timeout_seconds":       "fetch-timeout",
		"source_backend":              "source-backend",
		"metrics_address":             "metrics-address",
		"ledger":                      "ledger",
	} {
		viper.BindPFlag(key, flags.Lookup(flag)) //nolint
	}

	rootCmd.AddCommand(runCmd, csvCmd, directoryCmd, historyCmd, configCmd, serviceCmd)
}

// loadValues reads the config file, falling back to defaults when there is
// none, then applies flag and environment overrides.
func loadValues() (configdef.Values, error) {
	values, err := config.DefaultResolver().Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return configdef.Values{}, err
		}
		log.Warn("No config file found, using defaults") //nolint
		values = config.Defaults()
	}

	applyOverrides(&values)
	if err := values.RunValidate(); err != nil {
		return configdef.Values{}, err
	}
	return values, nil
}

func applyOverrides(values *configdef.Values) {
	if viper.IsSet("num_processes") {
		values.NumProcesses = viper.GetInt("num_processes")
	}
	if viper.IsSet("results_path") {
		values.ResultsPath = viper.GetString("results_path")
	}
	if viper.IsSet("image_difference_percentage") {
		values.ImageDifferencePercentage = videofilter.Threshold(viper.GetFloat64("image_difference_percentage"))
	}
	if viper.IsSet("interval_seconds") {
		values.IntervalSeconds = viper.GetFloat64("interval_seconds")
	}
	if viper.IsSet("duration_seconds") {
		values.DurationSeconds = viper.GetFloat64("duration_seconds")
	}
	if viper.IsSet("fetch_timeout_seconds") {
		values.FetchTimeoutSeconds = viper.GetFloat64("fetch_timeout_seconds")
	}
	if viper.IsSet("source_backend") {
		values.SourceBackend = viper.GetString("source_backend")
	}
	if viper.IsSet("metrics_address") {
		values.MetricsAddress = viper.GetString("metrics_address")
	}
	if viper.IsSet("ledger") {
		values.Ledger.Enabled = viper.GetBool("ledger")
	}
}
