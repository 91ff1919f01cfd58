package predictor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/llm"
	"github.com/abhisek/aquaassist/internal/water"
)

const llmSystemPrompt = `You grade aquaculture pond water for small-scale farmers.
You receive four measurements: pH, salinity (ppt), dissolved oxygen (mg/L) and total ammonia (ppm).
Answer with exactly one label from the allowed list and a short reason.`

// LLM classifies by asking a hosted language model for a label constrained
// to the catalog's labels.
type LLM struct {
	provider  llm.Provider
	labels    []advisory.Label
	schema    *llm.Schema
	maxTokens int
}

var _ Predictor = (*LLM)(nil)

// NewLLM builds an LLM predictor that may only answer with one of labels.
func NewLLM(p llm.Provider, labels []advisory.Label, maxTokens int) (*LLM, error) {
	if p == nil {
		return nil, errors.New("llm predictor: provider is required")
	}
	if len(labels) == 0 {
		return nil, errors.New("llm predictor: at least one label is required")
	}
	if maxTokens <= 0 {
		maxTokens = 128
	}
	return &LLM{
		provider:  p,
		labels:    append([]advisory.Label(nil), labels...),
		schema:    llm.LabelSchema(labelNames(labels)...),
		maxTokens: maxTokens,
	}, nil
}

func (p *LLM) Name() string { return "llm:" + p.provider.ModelID() }

func (p *LLM) Predict(ctx context.Context, v water.FeatureVector) (advisory.Label, error) {
	resp, err := p.provider.Generate(ctx, llm.Request{
		System:    llmSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: describe(v)}},
		Schema:    p.schema,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", p.mapError(err)
	}

	// Providers without native schema support may skip enforcement.
	verdict, err := llm.DecodeVerdict(p.schema, resp.Content)
	if err != nil {
		return "", p.mapError(err)
	}
	return advisory.Label(verdict.Label), nil
}

func (p *LLM) mapError(err error) error {
	var (
		rl    *llm.ErrRateLimit
		down  *llm.ErrProviderUnavailable
		inval *llm.ErrInvalidResponse
		rej   *llm.ErrRequestRejected
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &ErrUnavailable{Predictor: p.Name(), Err: err}
	case errors.As(err, &rl), errors.As(err, &down):
		return &ErrUnavailable{Predictor: p.Name(), Err: err}
	case errors.As(err, &inval), errors.As(err, &rej):
		return &ErrPrediction{Predictor: p.Name(), Err: err}
	}
	return &ErrPrediction{Predictor: p.Name(), Err: err}
}

func labelNames(labels []advisory.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

func describe(v water.FeatureVector) string {
	var b strings.Builder
	b.WriteString("Allowed labels are listed in the schema.\n")
	for _, s := range water.Specs() {
		fmt.Fprintf(&b, "%s: %g %s (valid %s)\n", s.Label, v.Measurements().Get(s.Feature), s.Unit, s.Range)
	}
	return b.String()
}
