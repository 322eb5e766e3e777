package ai

import (
	"context"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// OpenAIConfig configures an OpenAI-compatible backend (OpenAI itself or Groq)
type OpenAIConfig struct {
	Name       ProviderName
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// OpenAIProvider implements ChatProvider using the official OpenAI Go SDK
type OpenAIProvider struct {
	name    ProviderName
	client  openai.Client // NewClient returns Client (not *Client)
	model   string
	timeout time.Duration
	log     *logger.Logger
}

var _ ChatProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates an OpenAI-compatible chat provider
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s API key is required", cfg.Name)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 45 * time.Second
	}

	return &OpenAIProvider{
		name:    cfg.Name,
		client:  openai.NewClient(clientOptions(cfg)...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		log:     logger.Get().With("component", "llm", "provider", cfg.Name, "model", cfg.Model),
	}, nil
}

func clientOptions(cfg OpenAIConfig) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return opts
}

// Name returns provider name.
func (p *OpenAIProvider) Name() ProviderName { return p.name }

// Model returns the default model.
func (p *OpenAIProvider) Model() string { return p.model }

// Chat sends a chat completion request.
func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = p.model
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "%s chat completion", p.name)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.Wrapf(errors.ErrInternal, "%s returned no choices", p.name)
	}

	choice := completion.Choices[0]
	p.log.Debugw("Chat completion",
		"prompt_tokens", completion.Usage.PromptTokens,
		"completion_tokens", completion.Usage.CompletionTokens,
		"finish_reason", choice.FinishReason,
	)

	return &ChatResponse{
		Model:        completion.Model,
		Content:      choice.Message.Content,
		FinishReason: finishReason(string(choice.FinishReason)),
		Usage: Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
