package orbitplane

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is the textual shape of the flattened bodies.
type Format string

const (
	// FormatLiteral writes JavaScript object literals for the 2D simulation.
	FormatLiteral Format = "literal"
	// FormatJSON writes a JSON array.
	FormatJSON Format = "json"
	// FormatCSV writes a CSV table with a header line.
	FormatCSV Format = "csv"
	// FormatYAML writes a YAML sequence.
	FormatYAML Format = "yaml"
	// FormatRecords writes records readable by ParseEphemeris.
	FormatRecords Format = "ephemeris"
)

// Formats lists the supported formats.
var Formats = []Format{FormatLiteral, FormatJSON, FormatCSV, FormatYAML, FormatRecords}

// ExportConfig configures the output of the flattened bodies.
type ExportConfig struct {
	Format     Format
	Dimensions int     // 2 drops the out-of-plane component, 3 keeps it
	Scale      float64 // only used by FormatRecords
}

// Validate validates an ExportConfig.
func (c ExportConfig) Validate() error {
	known := false
	for _, f := range Formats {
		known = known || f == c.Format
	}
	if !known {
		return errors.Wrapf(ErrConfig, "unknown output format %q (supported: %v)", c.Format, Formats)
	}
	if c.Dimensions != 2 && c.Dimensions != 3 {
		return errors.Wrapf(ErrConfig, "output dimensions must be 2 or 3, got %d", c.Dimensions)
	}
	if c.Format == FormatRecords && c.Scale == 0 {
		return errors.Wrap(ErrConfig, "ephemeris output needs a non-zero scale")
	}
	return nil
}

// bodyRecord is the structured form of a Result.
type bodyRecord struct {
	ID               int       `json:"id" yaml:"id"`
	Mass             float64   `json:"mass" yaml:"mass"`
	Position         []float64 `json:"position" yaml:"position,flow"`
	Velocity         []float64 `json:"velocity" yaml:"velocity,flow"`
	Inclination      float64   `json:"inclination" yaml:"inclination"`
	Residual         float64   `json:"residual" yaml:"residual"`
	VelocityResidual float64   `json:"velocity_residual" yaml:"velocity_residual"`
}

func (c ExportConfig) record(r Result) bodyRecord {
	return bodyRecord{
		ID:               r.Index,
		Mass:             r.Body.Mass,
		Position:         r.Body.Position.Slice()[:c.Dimensions],
		Velocity:         r.Body.Velocity.Slice()[:c.Dimensions],
		Inclination:      r.Inclination,
		Residual:         r.Residual,
		VelocityResidual: r.VelocityResidual,
	}
}

// Export writes the results in input order.
func Export(w io.Writer, results []Result, conf ExportConfig) error {
	if err := conf.Validate(); err != nil {
		return err
	}
	var err error
	switch conf.Format {
	case FormatLiteral:
		err = exportLiteral(w, results, conf)
	case FormatJSON:
		err = exportJSON(w, results, conf)
	case FormatCSV:
		err = exportCSV(w, results, conf)
	case FormatYAML:
		err = exportYAML(w, results, conf)
	case FormatRecords:
		bodies := make([]Body, len(results))
		for i, r := range results {
			bodies[i] = r.Body
		}
		err = FormatEphemeris(w, bodies, conf.Scale)
	}
	return errors.Wrapf(err, "exporting %s", conf.Format)
}

func exportLiteral(w io.Writer, results []Result, conf ExportConfig) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		fmt.Fprintf(bw, "{\n    id: %d,\n    mass: %s,\n", r.Index, fmtFloat(r.Body.Mass))
		fmt.Fprintf(bw, "    position: %s,\n", literalVector(r.Body.Position, conf.Dimensions))
		fmt.Fprintf(bw, "    velocity: %s,\n", literalVector(r.Body.Velocity, conf.Dimensions))
		bw.WriteString("},\n")
	}
	return bw.Flush()
}

func literalVector(v Vector3, dims int) string {
	if dims == 2 {
		return fmt.Sprintf("new Vector2(%s, %s)", fmtFloat(v.X), fmtFloat(v.Y))
	}
	return fmt.Sprintf("new Vector3(%s, %s, %s)", fmtFloat(v.X), fmtFloat(v.Y), fmtFloat(v.Z))
}

func exportJSON(w io.Writer, results []Result, conf ExportConfig) error {
	records := make([]bodyRecord, len(results))
	for i, r := range results {
		records[i] = conf.record(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func exportYAML(w io.Writer, results []Result, conf ExportConfig) error {
	records := make([]bodyRecord, len(results))
	for i, r := range results {
		records[i] = conf.record(r)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}

func exportCSV(w io.Writer, results []Result, conf ExportConfig) error {
	cw := csv.NewWriter(w)
	hdr := []string{"id", "mass", "x", "y", "z", "vx", "vy", "vz", "inclination", "residual", "velocity_residual"}
	if conf.Dimensions == 2 {
		hdr = []string{"id", "mass", "x", "y", "vx", "vy", "inclination", "residual", "velocity_residual"}
	}
	if err := cw.Write(hdr); err != nil {
		return err
	}
	for _, r := range results {
		rec := conf.record(r)
		row := []string{strconv.Itoa(rec.ID), fmtFloat(rec.Mass)}
		for _, val := range rec.Position {
			row = append(row, fmtFloat(val))
		}
		for _, val := range rec.Velocity {
			row = append(row, fmtFloat(val))
		}
		row = append(row, strconv.FormatFloat(rec.Inclination, 'f', 6, 64), fmtFloat(rec.Residual), fmtFloat(rec.VelocityResidual))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
