package speech

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/abhisek/aquaassist/internal/water"
)

// ErrNoReading is returned when a transcript mentions no measurement.
var ErrNoReading = errors.New("no measurement recognised")

// Reading is what ParseReading understood from a transcript.
type Reading struct {
	Measurements water.Measurements
	// Heard lists the features that were spoken, in the order heard.
	Heard []water.Feature
}

var units = map[string]float64{
	"zero": 0, "oh": 0, "nought": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tens = map[string]float64{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var fillers = map[string]bool{
	"is": true, "at": true, "of": true, "level": true, "levels": true, "equals": true,
	"about": true, "around": true, "reads": true, "reading": true, "the": true, "to": true,
}

// ParseReading extracts measurements from phrases such as
// "pH seven point two, salinity eighteen, oxygen three point one, ammonia point two".
// Features not mentioned keep their value from base. Digits and English
// number words are both understood.
func ParseReading(transcript string, base water.Measurements) (Reading, error) {
	toks := tokenize(transcript)
	r := Reading{Measurements: base}

	for i := 0; i < len(toks); {
		f, n := featureAt(toks, i)
		if n == 0 {
			i++
			continue
		}
		i += n
		for i < len(toks) && fillers[toks[i]] {
			i++
		}
		v, used, ok := numberAt(toks, i)
		if !ok {
			// "do" and friends are ordinary words too.
			continue
		}
		i += used
		r.Measurements = r.Measurements.With(f, v)
		r.Heard = append(r.Heard, f)
	}

	if len(r.Heard) == 0 {
		return Reading{}, ErrNoReading
	}
	return r, nil
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-')
	})
	var out []string
	for _, f := range fields {
		for _, part := range splitHyphens(f) {
			part = strings.Trim(part, ".")
			if part != "" && part != "-" {
				out = append(out, part)
			}
		}
	}
	return out
}

// splitHyphens breaks "twenty-five" into words but keeps the sign on "-0.5".
func splitHyphens(f string) []string {
	var out []string
	neg := false
	for _, p := range strings.Split(f, "-") {
		if p == "" {
			neg = true
			continue
		}
		if neg && (unicode.IsDigit(rune(p[0])) || p[0] == '.') {
			p = "-" + p
		}
		neg = false
		out = append(out, p)
	}
	return out
}

// featureAt reports the feature named at toks[i] and how many tokens it spans.
func featureAt(toks []string, i int) (water.Feature, int) {
	if i+1 < len(toks) {
		switch toks[i] + " " + toks[i+1] {
		case "dissolved oxygen":
			return water.FeatureDissolvedOxygen, 2
		case "p h":
			return water.FeaturePH, 2
		}
	}
	if f, ok := water.ParseFeature(toks[i]); ok {
		return f, 1
	}
	return "", 0
}

// numberAt parses a number starting at toks[i]: either a digit string or
// number words with an optional "point" and fractional digits.
func numberAt(toks []string, i int) (float64, int, bool) {
	if i >= len(toks) {
		return 0, 0, false
	}
	if toks[i] == "minus" || toks[i] == "negative" {
		v, n, ok := numberAt(toks, i+1)
		if !ok {
			return 0, 0, false
		}
		return -v, n + 1, true
	}
	if v, err := strconv.ParseFloat(toks[i], 64); err == nil {
		return v, 1, true
	}

	start := i
	var whole float64
	seen := false
	if t, ok := tens[toks[i]]; ok {
		whole, seen = t, true
		i++
		if i < len(toks) {
			if u, ok := units[toks[i]]; ok && u > 0 && u < 10 {
				whole += u
				i++
			}
		}
	} else if u, ok := units[toks[i]]; ok {
		whole, seen = u, true
		i++
	}

	if i < len(toks) && (toks[i] == "point" || toks[i] == "dot" || toks[i] == "decimal") {
		var digits strings.Builder
		j := i + 1
		for j < len(toks) {
			if d, ok := digitWord(toks[j]); ok {
				digits.WriteString(d)
				j++
				continue
			}
			break
		}
		if digits.Len() > 0 {
			frac, _ := strconv.ParseFloat("0."+digits.String(), 64)
			return whole + frac, j - start, true
		}
	}

	if !seen {
		return 0, 0, false
	}
	return whole, i - start, true
}

func digitWord(t string) (string, bool) {
	if len(t) > 0 && strings.Trim(t, "0123456789") == "" {
		return t, true
	}
	if u, ok := units[t]; ok && u < 10 {
		return strconv.Itoa(int(u)), true
	}
	return "", false
}
