package ai

import (
	"context"
	"io"

	"marketpulse/pkg/errors"
)

// Unavailable is used when no LLM backend is configured. Every call fails with ErrUnavailable.
type Unavailable struct{}

var (
	_ ChatProvider = Unavailable{}
	_ Transcriber  = Unavailable{}
)

// Name returns provider name.
func (Unavailable) Name() ProviderName { return ProviderNameNone }

// Model returns an empty model name.
func (Unavailable) Model() string { return "" }

// Chat always fails
func (Unavailable) Chat(context.Context, ChatRequest) (*ChatResponse, error) {
	return nil, errors.Wrap(errors.ErrUnavailable, "no LLM provider configured")
}

// Transcribe always fails
func (Unavailable) Transcribe(context.Context, io.Reader, string) (string, error) {
	return "", errors.Wrap(errors.ErrUnavailable, "no transcription provider configured")
}
