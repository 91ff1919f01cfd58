package predictor

import (
	"context"
	"fmt"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/water"
)

// Rule fires when Feature is strictly below Below or strictly above Above.
// At least one bound must be set.
type Rule struct {
	Label   advisory.Label `yaml:"label" json:"label"`
	Feature water.Feature  `yaml:"feature" json:"feature"`
	Below   *float64       `yaml:"below,omitempty" json:"below,omitempty"`
	Above   *float64       `yaml:"above,omitempty" json:"above,omitempty"`
}

// Matches reports whether the rule fires for v.
func (r Rule) Matches(v water.FeatureVector) bool {
	x := v.Measurements().Get(r.Feature)
	if r.Below != nil && x < *r.Below {
		return true
	}
	return r.Above != nil && x > *r.Above
}

func (r Rule) String() string {
	switch {
	case r.Below != nil && r.Above != nil:
		return fmt.Sprintf("%s<%g|>%g→%s", r.Feature, *r.Below, *r.Above, r.Label)
	case r.Below != nil:
		return fmt.Sprintf("%s<%g→%s", r.Feature, *r.Below, r.Label)
	case r.Above != nil:
		return fmt.Sprintf("%s>%g→%s", r.Feature, *r.Above, r.Label)
	}
	return fmt.Sprintf("%s→%s", r.Feature, r.Label)
}

// Rules is an offline threshold classifier. Rules run in order and the
// first match wins; when nothing fires the Fallback label is returned.
type Rules struct {
	rules    []Rule
	fallback advisory.Label
}

var _ Predictor = (*Rules)(nil)

func below(v float64) *float64 { return &v }
func above(v float64) *float64 { return &v }

// DefaultRules returns pond thresholds in priority order: hard limits that
// make water unsafe first, then the softer stress band.
func DefaultRules() []Rule {
	return []Rule{
		{Label: advisory.LabelUnsafe, Feature: water.FeatureAmmonia, Above: above(1.0)},
		{Label: advisory.LabelUnsafe, Feature: water.FeaturePH, Below: below(5.5), Above: above(8.5)},
		{Label: advisory.LabelUnsafe, Feature: water.FeatureDissolvedOxygen, Below: below(3.0)},
		{Label: advisory.LabelModerate, Feature: water.FeatureDissolvedOxygen, Below: below(5.0)},
		{Label: advisory.LabelModerate, Feature: water.FeatureAmmonia, Above: above(0.5)},
		{Label: advisory.LabelModerate, Feature: water.FeaturePH, Below: below(6.5), Above: above(8.0)},
		{Label: advisory.LabelModerate, Feature: water.FeatureSalinity, Below: below(10), Above: above(30)},
	}
}

// NewRules builds a rule classifier. An empty rule list uses DefaultRules
// and an empty fallback uses Safe.
func NewRules(rules []Rule, fallback advisory.Label) (*Rules, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if fallback == "" {
		fallback = advisory.LabelSafe
	}
	for i, r := range rules {
		if _, ok := water.SpecFor(r.Feature); !ok {
			return nil, fmt.Errorf("rule %d: unknown feature %q", i, r.Feature)
		}
		if r.Below == nil && r.Above == nil {
			return nil, fmt.Errorf("rule %d: needs a below or above bound", i)
		}
		if r.Label == "" {
			return nil, fmt.Errorf("rule %d: missing label", i)
		}
	}
	out := make([]Rule, len(rules))
	copy(out, rules)
	return &Rules{rules: out, fallback: fallback}, nil
}

func (r *Rules) Predict(ctx context.Context, v water.FeatureVector) (advisory.Label, error) {
	if err := ctx.Err(); err != nil {
		return "", &ErrUnavailable{Predictor: r.Name(), Err: err}
	}
	for _, rule := range r.rules {
		if rule.Matches(v) {
			return rule.Label, nil
		}
	}
	return r.fallback, nil
}

func (r *Rules) Name() string { return "rules" }

// FeatureOrder reports the canonical order; rules read features by name.
func (r *Rules) FeatureOrder() []string { return water.CanonicalOrder() }

// Labels returns every label this rule set can emit, fallback last.
func (r *Rules) Labels() []advisory.Label {
	seen := map[advisory.Label]bool{}
	var out []advisory.Label
	for _, rule := range r.rules {
		if !seen[rule.Label] {
			seen[rule.Label] = true
			out = append(out, rule.Label)
		}
	}
	if !seen[r.fallback] {
		out = append(out, r.fallback)
	}
	return out
}
