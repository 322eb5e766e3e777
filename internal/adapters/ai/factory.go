package ai

import (
	"context"
	"strings"

	"marketpulse/internal/adapters/config"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// BuildRegistry initializes a ProviderRegistry with every backend that has a key configured.
func BuildRegistry(ctx context.Context, cfg config.AIConfig) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()

	if cfg.GroqKey != "" {
		p, err := NewOpenAIProvider(OpenAIConfig{
			Name:    ProviderNameGroq,
			APIKey:  cfg.GroqKey,
			BaseURL: baseURLFor(cfg, ProviderNameGroq),
			Model:   modelFor(cfg, ProviderNameGroq),
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	if cfg.OpenAIKey != "" {
		p, err := NewOpenAIProvider(OpenAIConfig{
			Name:    ProviderNameOpenAI,
			APIKey:  cfg.OpenAIKey,
			BaseURL: baseURLFor(cfg, ProviderNameOpenAI),
			Model:   modelFor(cfg, ProviderNameOpenAI),
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	if cfg.GeminiKey != "" {
		p, err := NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel, "", cfg.Timeout)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	if len(registry.Names()) == 0 {
		return nil, errors.ErrUnavailable
	}

	return registry, nil
}

// NewChatProvider returns the provider selected by AI_PROVIDER, or Unavailable
// when that provider has no key. The bot keeps working without an LLM.
func NewChatProvider(ctx context.Context, cfg config.AIConfig, log *logger.Logger) ChatProvider {
	name := NormalizeProviderName(cfg.Provider)
	if name == ProviderNameNone {
		return Unavailable{}
	}

	registry, err := BuildRegistry(ctx, cfg)
	if err != nil {
		log.Warnw("No LLM provider configured, AI sections disabled", "provider", name, "error", err)
		return Unavailable{}
	}

	p, err := registry.Get(name)
	if err != nil {
		log.Warnw("Selected LLM provider has no API key, AI sections disabled",
			"provider", name,
			"available", registry.Names(),
		)
		return Unavailable{}
	}
	return p
}

// NewTranscriber returns a Whisper transcriber on Groq or OpenAI, whichever has a key
func NewTranscriber(cfg config.AIConfig, log *logger.Logger) Transcriber {
	for _, name := range []ProviderName{ProviderNameGroq, ProviderNameOpenAI} {
		key := cfg.GroqKey
		if name == ProviderNameOpenAI {
			key = cfg.OpenAIKey
		}
		if key == "" {
			continue
		}
		model := cfg.TranscriptionModel
		if name == ProviderNameOpenAI && strings.HasPrefix(model, "whisper-large") {
			model = "whisper-1"
		}
		t, err := NewWhisperTranscriber(OpenAIConfig{
			Name:    name,
			APIKey:  key,
			BaseURL: baseURLFor(cfg, name),
			Model:   model,
		})
		if err == nil {
			return t
		}
	}
	log.Warnw("No transcription backend configured, voice notes disabled")
	return Unavailable{}
}

func baseURLFor(cfg config.AIConfig, name ProviderName) string {
	if cfg.BaseURL != "" && NormalizeProviderName(cfg.Provider) == name {
		return cfg.BaseURL
	}
	if name == ProviderNameGroq {
		return GroqBaseURL
	}
	return OpenAIBaseURL
}

func modelFor(cfg config.AIConfig, name ProviderName) string {
	if cfg.Model != "" && NormalizeProviderName(cfg.Provider) == name {
		return cfg.Model
	}
	if name == ProviderNameGroq {
		return DefaultGroqModel
	}
	return DefaultOpenAIModel
}

// NormalizeProviderName makes provider lookup more forgiving.
func NormalizeProviderName(name string) ProviderName {
	return ProviderName(strings.ToLower(strings.TrimSpace(name)))
}
