package ai

// ProviderName represents an AI provider identifier
type ProviderName string

// Provider name constants
const (
	ProviderNameGroq   ProviderName = "groq"
	ProviderNameOpenAI ProviderName = "openai"
	ProviderNameGemini ProviderName = "gemini"
	ProviderNameNone   ProviderName = "none"
)

// String returns the string representation of the provider name
func (p ProviderName) String() string {
	return string(p)
}

// IsValid checks if the provider name is supported
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderNameGroq, ProviderNameOpenAI, ProviderNameGemini, ProviderNameNone:
		return true
	default:
		return false
	}
}

// Endpoints of the OpenAI-compatible backends
const (
	GroqBaseURL   = "https://api.groq.com/openai/v1/"
	OpenAIBaseURL = "https://api.openai.com/v1/"
)

// Default models
const (
	DefaultGroqModel          = "llama-3.3-70b-versatile"
	DefaultOpenAIModel        = "gpt-4o-mini"
	DefaultGeminiModel        = "gemini-2.0-flash"
	DefaultTranscriptionModel = "whisper-large-v3"
)
