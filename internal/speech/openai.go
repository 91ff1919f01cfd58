package speech

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI implements Synthesizer and Transcriber against the OpenAI audio API.
type OpenAI struct {
	client *openai.Client
	voice  openai.SpeechVoice
	model  openai.SpeechModel
	lang   string
}

var (
	_ Synthesizer = (*OpenAI)(nil)
	_ Transcriber = (*OpenAI)(nil)
)

func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai speech: API key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	voice, model := cfg.Voice, cfg.Model
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	if model == "" {
		model = string(openai.TTSModel1)
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(oc),
		voice:  openai.SpeechVoice(voice),
		model:  openai.SpeechModel(model),
		lang:   cfg.Language,
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("nothing to say")
	}
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	return audio, nil
}

func (o *OpenAI) Transcribe(ctx context.Context, path, lang string) (string, error) {
	if lang == "" {
		lang = o.lang
	}
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: path,
		Language: lang,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return resp.Text, nil
}
