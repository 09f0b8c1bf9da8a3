package main

import (
	"io"
	"os"

	"github.com/gravitysim/orbitplane"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newFlattenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatten [file]",
		Short: "Flatten an ephemeris file (stdin if omitted) onto the reference orbital plane",
		Long: `Reads records of X, Y, Z, VX, VY, VZ (km, km/s) and MASS (kg) separated by '&',
where '#' starts a comment. The plane is spanned by the position of the reference body and
the velocity of the reference velocity body (the second body by default), and its normal
leans towards --up. With --mode fit the plane is the least-squares plane through all positions
instead, and positions are taken relative to their centroid.

Example:
  orbitplane flatten data/solar_system.txt --format json --dims 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := a.config()
			if err != nil {
				return err
			}
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "opening ephemeris")
				}
				defer f.Close()
				in = f
			}
			return orbitplane.Flatten(in, cmd.OutOrStdout(), conf, a.logger)
		},
	}
	flags := cmd.Flags()
	flags.Float64("scale", orbitplane.DefaultScale, "factor applied to positions and velocities")
	flags.String("mode", string(orbitplane.ModeReference), "plane selection: reference or fit")
	flags.Int("position-body", 0, "index of the body whose position spans the plane")
	flags.Int("velocity-body", orbitplane.AutoVelocityBody, "index of the body whose velocity spans the plane (-1: second body, or first if alone)")
	flags.String("up", "0,0,1", "completion vector the plane normal leans towards")
	flags.String("format", string(orbitplane.FormatLiteral), "output format: literal, json, csv, yaml or ephemeris")
	flags.Int("dims", 2, "output dimensions, 2 or 3")
	return cmd
}
