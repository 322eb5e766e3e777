package ai

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// Transcriber turns recorded speech into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

// WhisperTranscriber calls the audio/transcriptions endpoint of an OpenAI-compatible API
type WhisperTranscriber struct {
	client  openai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

var _ Transcriber = (*WhisperTranscriber)(nil)

// NewWhisperTranscriber creates a transcriber sharing the chat backend's credentials
func NewWhisperTranscriber(cfg OpenAIConfig) (*WhisperTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s API key is required", cfg.Name)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultTranscriptionModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &WhisperTranscriber{
		client:  openai.NewClient(clientOptions(cfg)...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		log:     logger.Get().With("component", "transcriber", "model", cfg.Model),
	}, nil
}

// Transcribe uploads the audio and returns the recognized text
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if filename == "" {
		filename = "voice.ogg"
	}

	result, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, "audio/ogg"),
		Model: openai.AudioModel(t.model),
	})
	if err != nil {
		return "", errors.Wrap(err, "transcription request failed")
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "empty transcription")
	}
	t.log.Debugw("Transcribed audio", "chars", len(text))
	return text, nil
}
