package factory

import (
	"context"
	"testing"

	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHostedProvider(t *testing.T) {
	keys := Credentials{OpenAI: "sk-test", Groq: "gsk-test", HuggingFace: "hf-test"}

	tests := []struct {
		name    string
		model   string
		keys    Credentials
		wantErr bool
		check   func(t *testing.T, p llm.LLMProvider)
	}{
		{name: "gpt goes to openai", model: "gpt-4o-mini", keys: keys, check: func(t *testing.T, p llm.LLMProvider) {
			assert.IsType(t, &openai.Provider{}, p)
		}},
		{name: "llama goes to groq", model: "llama-3.1-8b-instant", keys: keys, check: func(t *testing.T, p llm.LLMProvider) {
			assert.IsType(t, &openai.Provider{}, p)
		}},
		{name: "hf prefix goes to router", model: "hf:meta-llama/Llama-3.2-3B-Instruct", keys: keys, check: func(t *testing.T, p llm.LLMProvider) {
			assert.IsType(t, &openai.Provider{}, p)
		}},
		{name: "gpt without key", model: "gpt-4o", keys: Credentials{}, wantErr: true},
		{name: "gemini without key", model: "gemini-1.5-flash", keys: keys, wantErr: true},
		{name: "unknown model", model: "claude-mystery", keys: keys, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewHostedProvider(context.Background(), tt.model, tt.keys)
			if tt.wantErr {
				assert.ErrorIs(t, err, llm.ErrNoBackend)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}
