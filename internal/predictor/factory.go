package predictor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/llm"
)

// Config selects and configures the predictor.
type Config struct {
	// Kind is one of "rules", "remote", "llm", "mock".
	Kind    string        `yaml:"kind" env:"AQUA_PREDICTOR" env-default:"rules"`
	Timeout time.Duration `yaml:"timeout" env:"AQUA_PREDICTOR_TIMEOUT" env-default:"5s"`

	URL          string   `yaml:"url" env:"AQUA_PREDICTOR_URL"`
	FeatureOrder []string `yaml:"feature_order"`

	Rules    []Rule         `yaml:"rules"`
	Fallback advisory.Label `yaml:"fallback"`

	LLM llm.Config `yaml:"llm"`
}

func DefaultConfig() Config {
	return Config{
		Kind:    "rules",
		Timeout: 5 * time.Second,
		LLM:     llm.DefaultConfig(),
	}
}

// Validate checks the selected kind has what it needs.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("predictor timeout must not be negative, got %s", c.Timeout)
	}
	switch c.Kind {
	case "rules", "mock":
	case "remote":
		if c.URL == "" {
			return fmt.Errorf("AQUA_PREDICTOR_URL is required for the remote predictor")
		}
	case "llm":
		if err := c.LLM.Validate(); err != nil {
			return fmt.Errorf("llm predictor: %w", err)
		}
	default:
		return fmt.Errorf("unknown predictor kind: %q", c.Kind)
	}
	return nil
}

// New builds the configured predictor wrapped with logging. labels are the
// catalog's labels; the LLM predictor is constrained to them. The timeout is
// applied by the engine, not here.
func New(ctx context.Context, cfg Config, labels []advisory.Label, logger *zap.Logger) (Predictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Predictor
	var err error
	switch cfg.Kind {
	case "rules":
		base, err = NewRules(cfg.Rules, cfg.Fallback)
	case "remote":
		base, err = NewRemote(RemoteConfig{URL: cfg.URL, FeatureOrder: cfg.FeatureOrder})
	case "llm":
		var p llm.Provider
		p, err = llm.NewProvider(ctx, cfg.LLM, logger)
		if err == nil {
			base, err = NewLLM(p, labels, cfg.LLM.MaxTokens)
		}
	case "mock":
		m := NewMock()
		if len(labels) > 0 {
			m.Repeat = labels[0]
		}
		base = m
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s predictor: %w", cfg.Kind, err)
	}

	logger.Debug("predictor ready", zap.String("kind", cfg.Kind), zap.String("name", base.Name()))
	return WithLogging(base, logger), nil
}
