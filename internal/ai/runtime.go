package ai

import "context"

// Runtime is a minimal interface implemented by chat backends such as
// DeepSeek, OpenRouter, Gemini and local Ollama.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// StreamRuntime is an optional extension that supports streaming output.
// Implementors should invoke onDelta with each partial content chunk.
type StreamRuntime interface {
	GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderDeepSeek   = "deepseek"
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderOllama     = "ollama"
	ProviderGemini     = "gemini"
)

// Providers lists the built-in provider names.
var Providers = []string{ProviderDeepSeek, ProviderOpenRouter, ProviderOpenAI, ProviderOllama, ProviderGemini}

// DefaultBaseURL returns the endpoint used when none is configured.
func DefaultBaseURL(provider string) string {
	switch provider {
	case ProviderOpenRouter:
		return "https://openrouter.ai/api/v1"
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	case ProviderOllama:
		return "http://127.0.0.1:11434"
	case ProviderGemini:
		return ""
	}
	return "https://api.deepseek.com"
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenRouter:
		return "deepseek/deepseek-chat"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderOllama:
		return "llama3.1:8b-instruct"
	case ProviderGemini:
		return "gemini-1.5-flash"
	}
	return "deepseek-chat"
}
