package ai

import (
	"context"
	"time"

	"google.golang.org/genai"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// GeminiProvider implements ChatProvider on the Google Gen AI SDK
type GeminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

var _ ChatProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini chat provider.
// baseURL is optional and only used to point the SDK at a proxy.
func NewGeminiProvider(ctx context.Context, apiKey, model, baseURL string, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if timeout == 0 {
		timeout = 45 * time.Second
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	return &GeminiProvider{
		client:  client,
		model:   model,
		timeout: timeout,
		log:     logger.Get().With("component", "llm", "provider", ProviderNameGemini, "model", model),
	}, nil
}

// Name returns provider name.
func (p *GeminiProvider) Name() ProviderName { return ProviderNameGemini }

// Model returns the default model.
func (p *GeminiProvider) Model() string { return p.model }

// Chat sends the conversation to GenerateContent
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = p.model
	}

	contents, config := toGeminiRequest(req)
	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, errors.Wrap(err, "gemini generate content")
	}

	out := &ChatResponse{Model: model, Content: resp.Text(), FinishReason: FinishReasonOther}
	if len(resp.Candidates) > 0 {
		out.FinishReason = finishReason(string(resp.Candidates[0].FinishReason))
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	if out.Text() == "" {
		return nil, errors.Wrap(errors.ErrInternal, "gemini returned no text")
	}
	return out, nil
}

func toGeminiRequest(req ChatRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	system, turns := splitSystem(req.Messages)

	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return contents, config
}
