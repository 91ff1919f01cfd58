package water

import "encoding/json"

// Measurements are raw, unvalidated readings as a caller collected them.
type Measurements struct {
	PH              float64 `json:"ph"`
	Salinity        float64 `json:"salinity"`
	DissolvedOxygen float64 `json:"dissolved_oxygen"`
	Ammonia         float64 `json:"ammonia"`
}

// DefaultMeasurements returns the neutral starting point used by forms.
func DefaultMeasurements() Measurements {
	return Measurements{
		PH:              canonical[0].Default,
		Salinity:        canonical[1].Default,
		DissolvedOxygen: canonical[2].Default,
		Ammonia:         canonical[3].Default,
	}
}

// Get returns the value for f.
func (m Measurements) Get(f Feature) float64 {
	switch f {
	case FeaturePH:
		return m.PH
	case FeatureSalinity:
		return m.Salinity
	case FeatureDissolvedOxygen:
		return m.DissolvedOxygen
	case FeatureAmmonia:
		return m.Ammonia
	}
	return 0
}

// With returns a copy of m with f set to v.
func (m Measurements) With(f Feature, v float64) Measurements {
	switch f {
	case FeaturePH:
		m.PH = v
	case FeatureSalinity:
		m.Salinity = v
	case FeatureDissolvedOxygen:
		m.DissolvedOxygen = v
	case FeatureAmmonia:
		m.Ammonia = v
	}
	return m
}

// FeatureVector is a validated, immutable set of measurements.
// The zero value is not valid; build one with New or Validate.
type FeatureVector struct {
	m     Measurements
	valid bool
}

// New validates the four readings in canonical order.
func New(ph, salinity, dissolvedOxygen, ammonia float64) (FeatureVector, error) {
	return Validate(Measurements{
		PH:              ph,
		Salinity:        salinity,
		DissolvedOxygen: dissolvedOxygen,
		Ammonia:         ammonia,
	})
}

// Validate checks every field against its range and stops at the first
// violation.
func Validate(m Measurements) (FeatureVector, error) {
	for _, s := range canonical {
		v := m.Get(s.Feature)
		if !s.Range.Contains(v) {
			return FeatureVector{}, &ErrValidation{Field: s.Feature, Value: v, Allowed: s.Range}
		}
	}
	return FeatureVector{m: m, valid: true}, nil
}

// CheckOrder reports ErrSchema unless names are the canonical features in
// canonical order. Aliases are accepted; reordering is not.
func CheckOrder(names []string) error {
	want := CanonicalOrder()
	if len(names) != len(want) {
		return &ErrSchema{Got: names, Want: want}
	}
	for i, name := range names {
		f, ok := ParseFeature(name)
		if !ok || string(f) != want[i] {
			return &ErrSchema{Got: names, Want: want}
		}
	}
	return nil
}

// FromOrdered validates a positional vector whose names must match the
// canonical order exactly.
func FromOrdered(names []string, values []float64) (FeatureVector, error) {
	if err := CheckOrder(names); err != nil {
		return FeatureVector{}, err
	}
	if len(values) != len(names) {
		return FeatureVector{}, &ErrSchema{Got: names, Want: CanonicalOrder()}
	}
	var m Measurements
	for i, name := range names {
		f, _ := ParseFeature(name)
		m = m.With(f, values[i])
	}
	return Validate(m)
}

func (v FeatureVector) PH() float64              { return v.m.PH }
func (v FeatureVector) Salinity() float64        { return v.m.Salinity }
func (v FeatureVector) DissolvedOxygen() float64 { return v.m.DissolvedOxygen }
func (v FeatureVector) Ammonia() float64         { return v.m.Ammonia }

// Valid reports whether v came from Validate. The zero value is not valid.
func (v FeatureVector) Valid() bool { return v.valid }

// Measurements returns a copy of the underlying readings.
func (v FeatureVector) Measurements() Measurements { return v.m }

// Values returns the readings in canonical order.
func (v FeatureVector) Values() []float64 {
	return []float64{v.m.PH, v.m.Salinity, v.m.DissolvedOxygen, v.m.Ammonia}
}

// MarshalJSON encodes the vector as its named measurements.
func (v FeatureVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.m)
}
