package factory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/gemini"
	"ai-chatbot-be/pkg/llm/ollama"
	"ai-chatbot-be/pkg/llm/openai"
)

// Credentials are the hosted backend keys. An empty key disables that backend.
type Credentials struct {
	OpenAI      string
	Groq        string
	Gemini      string
	HuggingFace string
}

// HuggingFacePrefix marks model names served by the HuggingFace router.
const HuggingFacePrefix = "hf:"

// NewHostedProvider picks the hosted backend for modelName:
// "hf:" prefix selects HuggingFace, "gpt" OpenAI, "llama"/"mixtral" Groq and "gemini" Gemini.
func NewHostedProvider(ctx context.Context, modelName string, keys Credentials) (llm.LLMProvider, error) {
	lower := strings.ToLower(modelName)

	switch {
	case strings.HasPrefix(lower, HuggingFacePrefix):
		if keys.HuggingFace == "" {
			break
		}
		return openai.NewHuggingFaceProvider(keys.HuggingFace, modelName[len(HuggingFacePrefix):]), nil
	case strings.Contains(lower, "gpt"):
		if keys.OpenAI == "" {
			break
		}
		return openai.NewOpenAIProvider(keys.OpenAI, "", modelName), nil
	case strings.Contains(lower, "llama"), strings.Contains(lower, "mixtral"):
		if keys.Groq == "" {
			break
		}
		return openai.NewGroqProvider(keys.Groq, modelName), nil
	case strings.Contains(lower, "gemini"):
		if keys.Gemini == "" {
			break
		}
		return gemini.NewGeminiProvider(ctx, keys.Gemini, modelName)
	}
	return nil, fmt.Errorf("%w for model %q", llm.ErrNoBackend, modelName)
}

// NewLocalProvider returns the Ollama backend used by the local model strategy.
func NewLocalProvider(baseURL, modelName string, timeout time.Duration) llm.LLMProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return ollama.NewOllamaProvider(baseURL, modelName, timeout)
}
