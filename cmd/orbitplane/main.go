package main

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/gravitysim/orbitplane"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every subcommand needs once the flags are parsed.
type app struct {
	v       *viper.Viper
	logger  log.Logger
	verbose bool
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "orbitplane",
		Short: "Flatten ephemeris state vectors onto an orbital plane",
		Long: `orbitplane re-expresses the positions and velocities of bodies in the frame of a
reference orbital plane, e.g. to lay out a 3D ephemeris in a 2D simulation.

Configuration is read from conf.toml (or conf.yaml) in $ORBITPLANE_CONFIG or the working
directory, from ORBITPLANE_* environment variables (e.g. ORBITPLANE_OUTPUT_FORMAT=json),
and from flags, in increasing order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "debug logging")
	root.AddCommand(newFlattenCmd(a), newFetchCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(cmd.ErrOrStderr()))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "run", uuid.New().String())
	if a.verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	a.logger = logger

	v, err := orbitplane.NewViper()
	if err != nil {
		return err
	}
	if used := v.ConfigFileUsed(); used != "" {
		level.Debug(logger).Log("subsys", "conf", "file", used)
	}
	bindings := map[string]string{
		"scale":         "input.scale",
		"mode":          "reference.mode",
		"position-body": "reference.position",
		"velocity-body": "reference.velocity",
		"up":            "reference.up",
		"format":        "output.format",
		"dims":          "output.dimensions",
		"url":           "horizons.url",
		"start":         "horizons.start",
		"stop":          "horizons.stop",
		"step":          "horizons.step",
		"timeout":       "horizons.timeout",
		"retries":       "horizons.retries",
	}
	for flag, key := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	a.v = v
	return nil
}

func (a *app) config() (orbitplane.Config, error) {
	conf, err := orbitplane.LoadConfig(a.v)
	if err != nil {
		level.Error(a.logger).Log("subsys", "conf", "err", err)
		return conf, err
	}
	level.Debug(a.logger).Log("subsys", "conf", "format", conf.Export.Format, "dims", conf.Export.Dimensions, "scale", conf.Scale)
	return conf, nil
}
