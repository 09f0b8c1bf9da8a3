package orbitplane

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

const (
	// AutoVelocityBody selects the velocity of the second body, or of the first one if alone.
	AutoVelocityBody = -1
)

// PlaneMode selects how the orbital plane is derived from the bodies.
type PlaneMode string

const (
	// ModeReference spans the plane with a reference position and velocity.
	ModeReference PlaneMode = "reference"
	// ModeFit uses the least-squares plane through all positions, see FitPlane.
	ModeFit PlaneMode = "fit"
)

// Options selects the orbital plane.
type Options struct {
	Mode         PlaneMode // empty means ModeReference
	PositionBody int       // index of the body whose position is the first axis
	VelocityBody int       // index of the body whose velocity sets the plane, or AutoVelocityBody
	Up           Vector3   // completes the basis; the plane normal ends up on its side
}

// DefaultOptions returns the plane of the first body's position and the second body's velocity,
// completed by +Z.
func DefaultOptions() Options {
	return Options{Mode: ModeReference, PositionBody: 0, VelocityBody: AutoVelocityBody, Up: Vector3{0, 0, 1}}
}

// Validate validates the options regardless of the bodies.
func (o Options) Validate() error {
	if o.Mode != "" && o.Mode != ModeReference && o.Mode != ModeFit {
		return errors.Wrapf(ErrConfig, "unknown reference mode %q (supported: %s, %s)", o.Mode, ModeReference, ModeFit)
	}
	if o.PositionBody < 0 {
		return errors.Wrapf(ErrConfig, "reference position body must not be negative, got %d", o.PositionBody)
	}
	if o.VelocityBody < AutoVelocityBody {
		return errors.Wrapf(ErrConfig, "reference velocity body must be %d (auto) or an index, got %d", AutoVelocityBody, o.VelocityBody)
	}
	return nil
}

func (o Options) mode() PlaneMode {
	if o.Mode == "" {
		return ModeReference
	}
	return o.Mode
}

// Seeds returns the position, velocity and up seed vectors for these bodies.
func (o Options) Seeds(bodies []Body) ([]Vector3, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if len(bodies) == 0 {
		return nil, errors.Wrap(ErrConfig, "no bodies")
	}
	if o.PositionBody >= len(bodies) {
		return nil, errors.Wrapf(ErrConfig, "reference position body %d out of range (%d bodies)", o.PositionBody, len(bodies))
	}
	vBody := o.VelocityBody
	if vBody == AutoVelocityBody {
		vBody = 0
		if len(bodies) > 1 {
			vBody = 1
		}
	}
	if vBody >= len(bodies) {
		return nil, errors.Wrapf(ErrConfig, "reference velocity body %d out of range (%d bodies)", vBody, len(bodies))
	}
	return []Vector3{bodies[o.PositionBody].Position, bodies[vBody].Velocity, o.Up}, nil
}

// Frame returns the frame of the orbital plane and the origin of the flattened positions.
func (o Options) Frame(bodies []Body) (*Frame, Vector3, error) {
	if err := o.Validate(); err != nil {
		return nil, Vector3{}, err
	}
	if o.Mode == ModeFit {
		return FitPlane(bodies, o.Up)
	}
	seeds, err := o.Seeds(bodies)
	if err != nil {
		return nil, Vector3{}, err
	}
	frame, err := NewFrame(Orthonormalize(seeds...))
	if err != nil {
		return nil, Vector3{}, errors.Wrapf(err, "seeds %v", seeds)
	}
	return frame, Vector3{}, nil
}

// Result is a body expressed in the frame of the orbital plane.
type Result struct {
	Index            int
	Body             Body
	Inclination      float64 // degrees, see Body.Inclination
	Residual         float64 // distance of the position to the plane, dropped by a 2D output
	VelocityResidual float64 // out-of-plane speed, dropped by a 2D output
}

// Run derives the frame of the orbital plane and returns every body expressed in it, in input
// order. In ModeFit positions are also taken relative to the centroid of the fit.
// The input bodies are left untouched.
// A plane that cannot be derived returns ErrDegenerateBasis before any body is transformed.
func Run(bodies []Body, opts Options) ([]Result, *Frame, error) {
	frame, origin, err := opts.Frame(bodies)
	if err != nil {
		return nil, nil, err
	}
	results := make([]Result, len(bodies))
	for i, b := range bodies {
		b.Position = b.Position.Subtract(origin)
		flat := b.InFrame(frame)
		results[i] = Result{
			Index:            i,
			Body:             flat,
			Inclination:      flat.Inclination(),
			Residual:         math.Abs(flat.Position.Z),
			VelocityResidual: math.Abs(flat.Velocity.Z),
		}
	}
	return results, frame, nil
}

// Flatten parses the ephemeris text from r, flattens it onto the orbital plane and writes the
// result to w. Nothing is written unless every step succeeds.
func Flatten(r io.Reader, w io.Writer, conf Config, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if err := conf.Validate(); err != nil {
		return err
	}
	bodies, err := ParseEphemeris(r, conf.Scale)
	if err != nil {
		level.Error(logger).Log("subsys", "parse", "err", err)
		return errors.Wrap(err, "parsing ephemeris")
	}
	level.Info(logger).Log("subsys", "parse", "bodies", len(bodies), "scale", conf.Scale)
	results, frame, err := Run(bodies, conf.Reference)
	if err != nil {
		level.Error(logger).Log("subsys", "frame", "err", err)
		return err
	}
	var residual float64
	for _, res := range results {
		residual += res.Residual
		if res.Inclination > 90 {
			level.Warn(logger).Log("subsys", "frame", "body", res.Index, "inclination(deg)", res.Inclination, "residual", res.Residual, "message", "retrograde in the plane")
		} else {
			level.Debug(logger).Log("subsys", "frame", "body", res.Index, "inclination(deg)", res.Inclination, "residual", res.Residual)
		}
	}
	level.Info(logger).Log("subsys", "frame", "mode", conf.Reference.mode(), "normal", frame.Normal(), "basis", fmt.Sprint(frame.Basis()), "residual", residual)
	var buf bytes.Buffer
	if err := Export(&buf, results, conf.Export); err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing output")
	}
	level.Info(logger).Log("subsys", "export", "status", "finished", "format", conf.Export.Format, "records", len(results))
	return nil
}
