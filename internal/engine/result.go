package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/history"
	"github.com/abhisek/aquaassist/internal/water"
)

// Result is one completed classification.
type Result struct {
	ID        uuid.UUID           `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	Input     water.FeatureVector `json:"input"`
	Label     advisory.Label      `json:"label"`
	Advisory  advisory.Entry      `json:"advisory"`
}

// Record flattens the result into its persisted form.
func (r Result) Record() history.Record {
	return history.Record{
		Timestamp:       r.Timestamp,
		PH:              r.Input.PH(),
		Salinity:        r.Input.Salinity(),
		DissolvedOxygen: r.Input.DissolvedOxygen(),
		Ammonia:         r.Input.Ammonia(),
		Label:           r.Label,
	}
}

// Message returns the advisory text in the requested language: "primary"
// or "translated". Anything else falls back to primary.
func (r Result) Message(lang string) string {
	if lang == "translated" || (lang != "" && lang == r.Advisory.TranslatedLang) {
		return r.Advisory.Translated
	}
	return r.Advisory.Primary
}
