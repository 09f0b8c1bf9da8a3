package horizons

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gravitysim/orbitplane"
	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/julian"
)

const (
	startOfEphemeris = "$$SOE"
	endOfEphemeris   = "$$EOE"
	dateFormat       = "2006-01-02 15:04:05"
)

var (
	targetRe = regexp.MustCompile(`(?m)^\s*Target body name:\s*([^{\n]*?)\s*(?:\{|$)`)
	epochRe  = regexp.MustCompile(`^\s*(\d+(?:\.\d*)?)\s*=`)
)

// State is one entry of a Horizons vector table.
type State struct {
	Target string
	JD     float64 // TDB
	Lines  []string
}

// Epoch returns the epoch of the state (TDB) as a time.
func (s State) Epoch() time.Time {
	return julian.JDToTime(s.JD)
}

// Record renders the state as an ephemeris record with the provided mass in kg.
func (s State) Record(mass float64) string {
	var b strings.Builder
	if s.Target != "" {
		fmt.Fprintf(&b, "# %s\n", s.Target)
	}
	fmt.Fprintf(&b, "# epoch: %s TDB (JD %s)\n", s.Epoch().Format(dateFormat), strconv.FormatFloat(s.JD, 'f', -1, 64))
	for _, line := range s.Lines {
		b.WriteString(strings.TrimSpace(line))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "MASS = %s\n", strconv.FormatFloat(mass, 'g', -1, 64))
	return b.String()
}

// FirstState returns the first entry between $$SOE and $$EOE of a Horizons answer.
func FirstState(text string) (State, error) {
	start := strings.Index(text, startOfEphemeris)
	if start < 0 {
		return State{}, errors.Errorf("no %s marker in Horizons answer: %s", startOfEphemeris, truncate(strings.TrimSpace(text), 200))
	}
	table := text[start+len(startOfEphemeris):]
	if end := strings.Index(table, endOfEphemeris); end >= 0 {
		table = table[:end]
	}
	var st State
	if m := targetRe.FindStringSubmatch(text[:start]); m != nil {
		st.Target = m[1]
	}
	found := false
	for _, line := range strings.Split(table, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := epochRe.FindStringSubmatch(line); m != nil {
			if found {
				break // next entry
			}
			jd, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return State{}, errors.Wrapf(err, "epoch of %q", line)
			}
			st.JD = jd
			found = true
			continue
		}
		if found {
			st.Lines = append(st.Lines, line)
		}
	}
	if !found || len(st.Lines) == 0 {
		return State{}, errors.New("empty Horizons vector table")
	}
	return st, nil
}

// ExtractRecord returns the first state of a Horizons answer as an ephemeris record, with the
// mass listed in the physical data of the answer (see Mass).
func ExtractRecord(text string) (string, error) {
	mass, err := Mass(text)
	if err != nil {
		return "", err
	}
	return ExtractRecordWithMass(text, mass)
}

// ExtractRecordWithMass is ExtractRecord with the provided mass in kg, for answers without
// physical data or to override it. The record is checked to parse.
func ExtractRecordWithMass(text string, mass float64) (string, error) {
	st, err := FirstState(text)
	if err != nil {
		return "", err
	}
	record := st.Record(mass)
	if _, err := orbitplane.ParseEphemerisString(record, 1); err != nil {
		return "", errors.Wrap(err, "extracted record")
	}
	return record, nil
}
