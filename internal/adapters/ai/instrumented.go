package ai

import (
	"context"
	"time"
)

// CallRecorder observes completed LLM calls
type CallRecorder func(provider, model string, latency time.Duration, err error)

// Instrumented wraps a ChatProvider and reports every call to a recorder
type Instrumented struct {
	ChatProvider
	record CallRecorder
}

// WithRecorder wraps p so each Chat call is recorded
func WithRecorder(p ChatProvider, record CallRecorder) ChatProvider {
	if record == nil {
		return p
	}
	return &Instrumented{ChatProvider: p, record: record}
}

// Chat forwards to the wrapped provider
func (i *Instrumented) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	resp, err := i.ChatProvider.Chat(ctx, req)

	model := req.Model
	if model == "" {
		model = i.ChatProvider.Model()
	}
	i.record(i.ChatProvider.Name().String(), model, time.Since(start), err)
	return resp, err
}
