package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/water"
)

// InferenceRequest is the body posted to a model server.
type InferenceRequest struct {
	FeatureNames []string  `json:"feature_names"`
	Features     []float64 `json:"features"`
}

// InferenceResponse is what a model server answers with. FeatureNames, when
// present, must echo the order the server used.
type InferenceResponse struct {
	Label        string   `json:"label"`
	FeatureNames []string `json:"feature_names,omitempty"`
}

// RemoteConfig configures a Remote predictor.
type RemoteConfig struct {
	URL string
	// FeatureOrder is the order the served model was trained on, when known.
	// It is checked when the engine is built.
	FeatureOrder []string
	Client       *http.Client
}

// Remote asks an HTTP model server for a label. It does no retries.
type Remote struct {
	url    string
	order  []string
	client *http.Client
}

var _ Predictor = (*Remote)(nil)

func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("remote predictor: url is required")
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	order := cfg.FeatureOrder
	if len(order) == 0 {
		order = water.CanonicalOrder()
	}
	return &Remote{url: cfg.URL, order: slices.Clone(order), client: client}, nil
}

func (r *Remote) Name() string { return "remote" }

func (r *Remote) FeatureOrder() []string { return slices.Clone(r.order) }

func (r *Remote) Predict(ctx context.Context, v water.FeatureVector) (advisory.Label, error) {
	body, err := json.Marshal(InferenceRequest{
		FeatureNames: water.CanonicalOrder(),
		Features:     v.Values(),
	})
	if err != nil {
		return "", &ErrPrediction{Predictor: r.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", &ErrUnavailable{Predictor: r.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &ErrUnavailable{Predictor: r.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &ErrUnavailable{Predictor: r.Name(), Err: fmt.Errorf("reading response: %w", err)}
	}

	switch {
	case resp.StatusCode >= 500:
		return "", &ErrUnavailable{Predictor: r.Name(), Err: fmt.Errorf("model server returned %d: %s", resp.StatusCode, snippet(raw))}
	case resp.StatusCode >= 400:
		return "", &ErrPrediction{Predictor: r.Name(), Err: fmt.Errorf("model server rejected input (%d): %s", resp.StatusCode, snippet(raw))}
	case resp.StatusCode != http.StatusOK:
		return "", &ErrPrediction{Predictor: r.Name(), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var out InferenceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &ErrPrediction{Predictor: r.Name(), Err: fmt.Errorf("decoding response: %w", err)}
	}
	if strings.TrimSpace(out.Label) == "" {
		return "", &ErrPrediction{Predictor: r.Name(), Err: errors.New("empty label")}
	}
	if len(out.FeatureNames) > 0 {
		if _, err := water.FromOrdered(out.FeatureNames, v.Values()); err != nil {
			return "", &ErrPrediction{Predictor: r.Name(), Err: fmt.Errorf("server feature order: %w", err)}
		}
	}
	return advisory.Label(out.Label), nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
