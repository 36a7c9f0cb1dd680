// Package llm is the backend-neutral surface the response synthesizer
// generates text through.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNoBackend is returned when no generation backend is configured for a model.
var ErrNoBackend = errors.New("no generation backend configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are per-call generation settings. Zero values mean the backend default
// except Temperature, which providers seed before applying Option funcs.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

type Option func(*Options)

func WithModel(model string) Option    { return func(o *Options) { o.Model = model } }
func WithTemperature(t float64) Option { return func(o *Options) { o.Temperature = t } }
func WithMaxTokens(n int) Option       { return func(o *Options) { o.MaxTokens = n } }

// Apply returns defaults with opts applied in order.
func Apply(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// LLMProvider generates text from a chat history or a single prompt.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
