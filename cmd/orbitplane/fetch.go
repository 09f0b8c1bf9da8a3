package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/go-kit/log/level"
	"github.com/gravitysim/orbitplane/horizons"
	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	var (
		mass float64
		raw  bool
	)
	cmd := &cobra.Command{
		Use:   "fetch <coordinate center> <body id>",
		Short: "Download a body's state from JPL Horizons as an ephemeris record",
		Long: `Downloads the vector table of a body and prints its first state as a record for
'orbitplane flatten'. The mass is read from the physical data of the answer unless --mass is
given.

Example:
  orbitplane fetch 500@5 502
  This downloads the state of Jupiter's moon Europa (502) relative to Jupiter's
  barycenter (500@5).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := a.config()
			if err != nil {
				return err
			}
			hc := conf.Horizons
			if err := hc.Validate(); err != nil {
				level.Error(a.logger).Log("subsys", "conf", "err", err)
				return err
			}
			client := horizons.NewClient(hc.URL,
				horizons.WithTimeout(hc.Timeout),
				horizons.WithRetries(hc.Retries),
				horizons.WithLogger(a.logger))
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			text, err := client.Fetch(ctx, horizons.Query{Center: args[0], Command: args[1], Start: hc.Start, Stop: hc.Stop, Step: hc.Step})
			if err != nil {
				level.Error(a.logger).Log("subsys", "horizons", "err", err)
				return err
			}
			if raw {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			var record string
			if cmd.Flags().Changed("mass") {
				record, err = horizons.ExtractRecordWithMass(text, mass)
			} else {
				record, err = horizons.ExtractRecord(text)
			}
			if err != nil {
				level.Error(a.logger).Log("subsys", "horizons", "err", err)
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), record)
			return err
		},
	}
	flags := cmd.Flags()
	flags.Float64Var(&mass, "mass", 0, "mass of the body in kg, overriding the physical data of the answer")
	flags.BoolVar(&raw, "raw", false, "print the raw Horizons answer instead of a record")
	flags.String("url", horizons.DefaultURL, "Horizons API URL")
	flags.String("start", "2026-01-18", "start time")
	flags.String("stop", "2026-02-17", "stop time")
	flags.String("step", "1 DAYS", "step size")
	flags.Duration("timeout", 30*time.Second, "timeout of each attempt")
	flags.Int("retries", 3, "retries on transient failures")
	return cmd
}
