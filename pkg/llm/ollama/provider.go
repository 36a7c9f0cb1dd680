package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-chatbot-be/pkg/llm"
)

// ErrModelNotFound means the model has not been pulled on the Ollama host.
var ErrModelNotFound = errors.New("ollama model not found")

// Provider talks to a local Ollama server over its REST API.
type Provider struct {
	baseURL   string
	model     string
	keepAlive string
	client    *http.Client
}

var _ llm.LLMProvider = &Provider{}

// NewOllamaProvider bounds every request by timeout (30s when unset) and asks
// Ollama to keep the model loaded between messages.
func NewOllamaProvider(baseURL, model string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Provider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		keepAlive: "15m",
		client:    &http.Client{Timeout: timeout},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type modelOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []message     `json:"messages"`
	Stream    bool          `json:"stream"`
	KeepAlive string        `json:"keep_alive,omitempty"`
	Options   *modelOptions `json:"options,omitempty"`
}

type generateRequest struct {
	Model     string        `json:"model"`
	Prompt    string        `json:"prompt"`
	Stream    bool          `json:"stream"`
	KeepAlive string        `json:"keep_alive,omitempty"`
	Options   *modelOptions `json:"options,omitempty"`
}

type chatResponse struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (p *Provider) resolve(opts []llm.Option) (string, *modelOptions) {
	o := llm.Apply(llm.Options{Model: p.model, Temperature: 0.2}, opts...)
	return o.Model, &modelOptions{Temperature: o.Temperature, NumPredict: o.MaxTokens}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	model, options := p.resolve(opts)

	msgs := make([]message, len(history))
	for i, m := range history {
		role := m.Role
		// Gemini-style histories call the assistant "model".
		if role == "model" {
			role = llm.RoleAssistant
		}
		msgs[i] = message{Role: role, Content: m.Content}
	}

	var out chatResponse
	req := chatRequest{Model: model, Messages: msgs, KeepAlive: p.keepAlive, Options: options}
	if err := p.post(ctx, "/api/chat", req, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Message.Content), nil
}

// Generate sends a single prompt to the completion endpoint.
func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	model, options := p.resolve(opts)

	var out generateResponse
	req := generateRequest{Model: model, Prompt: prompt, KeepAlive: p.keepAlive, Options: options}
	if err := p.post(ctx, "/api/generate", req, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Response), nil
}

func (p *Provider) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("ollama: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ollama: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ollama: read: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrModelNotFound, msg)
		}
		return fmt.Errorf("ollama: status %d: %s", resp.StatusCode, msg)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ollama: decode: %w", err)
	}
	return nil
}
