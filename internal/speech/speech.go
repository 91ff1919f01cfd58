// Package speech reads advisories aloud and turns spoken readings back into
// measurements. Both directions are optional; callers check Capabilities.
package speech

import (
	"context"

	"go.uber.org/zap"
)

// Synthesizer turns text into encoded audio.
type Synthesizer interface {
	// Synthesize returns audio bytes in the configured format (mp3 by default).
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Name() string
}

// Transcriber turns an audio file into text.
type Transcriber interface {
	// Transcribe reads the audio at path and returns the recognised text.
	// lang is a language hint ("en", "te"); empty means auto-detect.
	Transcribe(ctx context.Context, path, lang string) (string, error)
	Name() string
}

// Config configures the hosted speech backend.
type Config struct {
	Disabled bool   `yaml:"disabled" env:"AQUA_SPEECH_DISABLED"`
	APIKey   string `yaml:"-" env:"AQUA_OPENAI_API_KEY"`
	BaseURL  string `yaml:"base_url" env:"AQUA_SPEECH_BASE_URL"`
	Voice    string `yaml:"voice" env:"AQUA_SPEECH_VOICE" env-default:"alloy"`
	Model    string `yaml:"model" env:"AQUA_SPEECH_MODEL" env-default:"tts-1"`
	Language string `yaml:"language" env:"AQUA_SPEECH_LANGUAGE" env-default:"en"`
}

// Capabilities says which speech directions are usable in this process.
// It is resolved once at startup and handed to the presentation layer.
type Capabilities struct {
	InputAvailable  bool `json:"input_available"`
	OutputAvailable bool `json:"output_available"`
}

// Resolve decides capabilities from cfg and builds the backend. The backend
// is nil when nothing is available.
func Resolve(cfg Config, logger *zap.Logger) (Capabilities, *OpenAI) {
	logger = logger.Named("speech")
	if cfg.Disabled {
		logger.Debug("speech disabled by configuration")
		return Capabilities{}, nil
	}
	if cfg.APIKey == "" {
		logger.Debug("speech unavailable: AQUA_OPENAI_API_KEY not set")
		return Capabilities{}, nil
	}
	o, err := NewOpenAI(cfg)
	if err != nil {
		logger.Warn("speech unavailable", zap.Error(err))
		return Capabilities{}, nil
	}
	return Capabilities{InputAvailable: true, OutputAvailable: true}, o
}
