package orbitplane

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultScale converts the kilometers (and km/s) of ephemeris providers into meters.
	DefaultScale = 1000
	// RecordSeparator separates the bodies of an ephemeris text.
	RecordSeparator = "&"
	// CommentMarker starts a comment running to the end of the line.
	CommentMarker = "#"
)

// ephemerisKeys are the required keys of a record, in the order they are checked.
var ephemerisKeys = []string{"X", "Y", "Z", "VX", "VY", "VZ", "MASS"}

// ParseEphemeris reads all of r and parses it with ParseEphemerisString.
func ParseEphemeris(r io.Reader, scale float64) ([]Body, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading ephemeris")
	}
	return ParseEphemerisString(string(data), scale)
}

// ParseEphemerisString parses an ephemeris text into bodies, in order.
// Records are separated by `&` and hold `KEY = VALUE` assignments for X, Y, Z, VX, VY, VZ and
// MASS; anything after a `#` on a line is ignored, as are unknown keys and blank records.
// Positions and velocities are multiplied by scale, the mass is kept as is.
// Record numbers in errors count the non-blank records from zero.
func ParseEphemerisString(text string, scale float64) ([]Body, error) {
	bodies := []Body{}
	recNo := 0
	for _, record := range strings.Split(stripComments(text), RecordSeparator) {
		if strings.TrimSpace(record) == "" {
			continue
		}
		body, err := parseRecord(recNo, record, scale)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
		recNo++
	}
	return bodies, nil
}

func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, CommentMarker); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

// recordFields pairs every `=` of a record with the token right before it (the key) and the
// token right after it (the value). A lone token between two `=` is the next key, so the
// previous key has no value and maps to "".
func recordFields(record string) map[string]string {
	segments := strings.Split(record, "=")
	fields := make(map[string]string, len(segments))
	for i := 1; i < len(segments); i++ {
		before := strings.Fields(segments[i-1])
		if len(before) == 0 {
			continue
		}
		after := strings.Fields(segments[i])
		value := ""
		if len(after) > 1 || (len(after) == 1 && i == len(segments)-1) {
			value = after[0]
		}
		fields[before[len(before)-1]] = value
	}
	return fields
}

func parseRecord(recNo int, record string, scale float64) (Body, error) {
	fields := recordFields(record)
	for _, key := range ephemerisKeys {
		if _, ok := fields[key]; !ok {
			return Body{}, &MissingFieldError{Record: recNo, Key: key}
		}
	}
	vals := make(map[string]float64, len(ephemerisKeys))
	for _, key := range ephemerisKeys {
		val, err := parseValue(recNo, key, fields[key])
		if err != nil {
			return Body{}, err
		}
		vals[key] = val
	}
	return Body{
		Position: Vector3{vals["X"], vals["Y"], vals["Z"]}.Scale(scale),
		Velocity: Vector3{vals["VX"], vals["VY"], vals["VZ"]}.Scale(scale),
		Mass:     vals["MASS"],
	}, nil
}

func parseValue(recNo int, key, raw string) (float64, error) {
	malformed := func(reason string) error {
		return &MalformedValueError{Record: recNo, Key: key, Raw: raw, Reason: reason}
	}
	if raw == "" {
		return 0, malformed("missing value")
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, malformed("not a number")
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, malformed("not finite")
	}
	if key == "MASS" && val < 0 {
		return 0, malformed("negative mass")
	}
	return val, nil
}

// FormatEphemeris writes the bodies in the format read by ParseEphemeris, dividing positions
// and velocities by scale.
func FormatEphemeris(w io.Writer, bodies []Body, scale float64) error {
	bw := bufio.NewWriter(w)
	for i, b := range bodies {
		if i > 0 {
			bw.WriteString(RecordSeparator + "\n")
		}
		fmt.Fprintf(bw, "%s body %d\n", CommentMarker, i)
		bw.WriteString(ephemerisText(b, scale))
	}
	return errors.Wrap(bw.Flush(), "writing ephemeris")
}

func ephemerisText(b Body, scale float64) string {
	r := b.Position.Scale(1 / scale)
	v := b.Velocity.Scale(1 / scale)
	return fmt.Sprintf("X = %s Y = %s Z = %s\nVX = %s VY = %s VZ = %s\nMASS = %s\n",
		fmtFloat(r.X), fmtFloat(r.Y), fmtFloat(r.Z),
		fmtFloat(v.X), fmtFloat(v.Y), fmtFloat(v.Z),
		fmtFloat(b.Mass))
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
