// Package water defines the validated pond measurement vector that every
// classification starts from.
package water

import (
	"fmt"
	"math"
	"strings"
)

// Feature identifies one measurement in the vector.
type Feature string

const (
	FeaturePH              Feature = "ph"
	FeatureSalinity        Feature = "salinity"
	FeatureDissolvedOxygen Feature = "dissolved_oxygen"
	FeatureAmmonia         Feature = "ammonia"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the range. NaN and infinities never do.
func (r Range) Contains(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Spec describes a feature: its physical range, unit and a display label.
type Spec struct {
	Feature Feature
	Label   string
	Unit    string
	Range   Range
	Step    float64 // slider granularity
	Default float64
}

// canonical is the one feature order accepted at every boundary.
// Validation walks it left to right so the first reported error is stable.
var canonical = [4]Spec{
	{Feature: FeaturePH, Label: "pH", Unit: "pH", Range: Range{4.0, 9.0}, Step: 0.1, Default: 7.0},
	{Feature: FeatureSalinity, Label: "Salinity", Unit: "ppt", Range: Range{5, 40}, Step: 1, Default: 15},
	{Feature: FeatureDissolvedOxygen, Label: "DO", Unit: "mg/L", Range: Range{2.0, 10.0}, Step: 0.1, Default: 6.0},
	{Feature: FeatureAmmonia, Label: "Ammonia", Unit: "ppm", Range: Range{0.0, 2.0}, Step: 0.01, Default: 0.3},
}

// Specs returns the feature specs in canonical order.
func Specs() []Spec {
	out := make([]Spec, len(canonical))
	copy(out, canonical[:])
	return out
}

// SpecFor returns the spec for f.
func SpecFor(f Feature) (Spec, bool) {
	for _, s := range canonical {
		if s.Feature == f {
			return s, true
		}
	}
	return Spec{}, false
}

// CanonicalOrder returns the feature names in the order predictors receive them.
func CanonicalOrder() []string {
	out := make([]string, len(canonical))
	for i, s := range canonical {
		out[i] = string(s.Feature)
	}
	return out
}

// aliases maps the spellings seen in CSV headers, model metadata and forms
// onto canonical feature names.
var aliases = map[string]Feature{
	"ph":               FeaturePH,
	"salinity":         FeatureSalinity,
	"salt":             FeatureSalinity,
	"do":               FeatureDissolvedOxygen,
	"dissolved_oxygen": FeatureDissolvedOxygen,
	"dissolvedoxygen":  FeatureDissolvedOxygen,
	"oxygen":           FeatureDissolvedOxygen,
	"ammonia":          FeatureAmmonia,
	"nh3":              FeatureAmmonia,
}

// ParseFeature normalises a feature name. Unknown names return false.
func ParseFeature(name string) (Feature, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	f, ok := aliases[key]
	return f, ok
}
