package horizons

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// property is one "key = value" entry of the physical data of a body.
type property struct {
	key   string // lowercase
	value string
}

// Columns of the physical data are separated by at least two spaces.
var propertyRe = regexp.MustCompile(`([^=\s][^=]*?)\s*=\s*(.*?)(?:\s{2,}|$)`)

// physicalProperties returns the entries of the physical data block(s) of a Horizons answer,
// in order of appearance.
func physicalProperties(text string) []property {
	var props []property
	inSection := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.ToLower(strings.TrimRight(line, "\r"))
		trimmed := strings.TrimSpace(line)
		if strings.Contains(line, "physical") && (strings.Contains(line, "data") || strings.Contains(line, "properties")) {
			inSection = true
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if trimmed == "" || indent > 2 || strings.HasPrefix(trimmed, "*") {
			inSection = false
			continue
		}
		if !inSection {
			continue
		}
		for _, m := range propertyRe.FindAllStringSubmatch(line, -1) {
			key, value := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
			if key != "" && value != "" {
				props = append(props, property{key: key, value: value})
			}
		}
	}
	return props
}

// Mass returns the mass in kg listed in the physical data of a Horizons answer, as in
// "Mass x10^22 (kg) = 4.799844" or "Mass (10^19 kg) = 10.8". Masses given in grams are converted.
func Mass(text string) (float64, error) {
	for _, p := range physicalProperties(text) {
		if !strings.Contains(p.key, "mass") || strings.Contains(p.key, "ratio") {
			continue
		}
		num := leadingNumber(p.value)
		if num == "" {
			continue
		}
		exp, err := exponent(p.key)
		if err != nil {
			return 0, errors.Wrapf(err, "exponent of %q", p.key)
		}
		valExp, err := exponent(p.value)
		if err != nil {
			return 0, errors.Wrapf(err, "exponent of %q", p.value)
		}
		mass, err := strconv.ParseFloat(num+"e"+strconv.Itoa(exp+valExp), 64)
		if err != nil {
			return 0, errors.Wrapf(err, "mass %q", p.value)
		}
		if strings.Contains(p.key, "(g)") {
			mass /= 1000
		}
		if mass < 0 {
			return 0, errors.Errorf("negative mass %q = %q", p.key, p.value)
		}
		return mass, nil
	}
	return 0, errors.New("no mass in the physical data of the Horizons answer")
}

// exponent returns N of the first "10^N" in s, or 0.
func exponent(s string) (int, error) {
	idx := strings.Index(s, "10^")
	if idx < 0 {
		return 0, nil
	}
	num := leadingNumber(s[idx+3:])
	if num == "" {
		return 0, errors.Errorf("no exponent after 10^ in %q", s)
	}
	return strconv.Atoi(num)
}

// leadingNumber returns the first run of digits and dots in s, with its minus sign if any.
func leadingNumber(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || (r == '-' && b.Len() == 0) {
			b.WriteRune(r)
		} else if b.Len() > 0 {
			break
		}
	}
	if num := b.String(); num != "-" && num != "." && num != "-." {
		return num
	}
	return ""
}
