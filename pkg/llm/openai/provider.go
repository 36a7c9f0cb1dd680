package openai

import (
	"context"
	"fmt"
	"math"

	"ai-chatbot-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	GroqBaseURL          = "https://api.groq.com/openai/v1"
	HuggingFaceRouterURL = "https://router.huggingface.co/v1"
)

// Provider speaks the chat completions API. Groq, the HuggingFace router and
// other compatible services are reached by pointing baseURL at them.
type Provider struct {
	client *goopenai.Client
	model  string
}

var _ llm.LLMProvider = &Provider{}

func NewOpenAIProvider(apiKey, baseURL, model string) *Provider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Provider{client: goopenai.NewClientWithConfig(cfg), model: model}
}

func NewGroqProvider(apiKey, model string) *Provider {
	return NewOpenAIProvider(apiKey, GroqBaseURL, model)
}

func NewHuggingFaceProvider(apiKey, model string) *Provider {
	return NewOpenAIProvider(apiKey, HuggingFaceRouterURL, model)
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model, Temperature: 0.2, MaxTokens: 500}, options...)

	messages := make([]goopenai.ChatCompletionMessage, len(history))
	for i, m := range history {
		messages[i] = goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: temperature(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

// temperature maps 0 to the smallest positive float32; the request field is
// omitempty and a literal zero would leave the backend on its own default.
func temperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
