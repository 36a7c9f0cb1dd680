package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-chatbot-be/pkg/embedding"
)

const (
	DefaultEndpoint = "https://api.jina.ai/v1/embeddings"
	DefaultModel    = "jina-embeddings-v3"
)

// JinaProvider calls the hosted Jina embeddings API. The multilingual model
// handles the Spanish catalog better than the English-only default.
type JinaProvider struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

var _ embedding.EmbeddingProvider = &JinaProvider{}

type Option func(*JinaProvider)

// WithEndpoint points the provider at another URL, e.g. a proxy or a test server.
func WithEndpoint(url string) Option {
	return func(p *JinaProvider) { p.endpoint = url }
}

func NewJinaProvider(apiKey, model string, opts ...Option) *JinaProvider {
	if model == "" {
		model = DefaultModel
	}
	p := &JinaProvider{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		model:    model,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type embedRequest struct {
	Model      string   `json:"model"`
	Task       string   `json:"task,omitempty"`
	Normalized bool     `json:"normalized"`
	Input      []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// task maps the shared task types onto Jina's retrieval adapters.
func task(taskType string) string {
	switch taskType {
	case embedding.TaskRetrievalQuery:
		return "retrieval.query"
	case embedding.TaskRetrievalDocument:
		return "retrieval.passage"
	default:
		return ""
	}
}

func (p *JinaProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	body, err := json.Marshal(embedRequest{
		Model:      p.model,
		Task:       task(taskType),
		Normalized: true,
		Input:      []string{text},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jina embed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jina embed: read: %w", err)
	}

	var out embedResponse
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode != http.StatusOK {
		msg := out.Detail
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, fmt.Errorf("jina embed: status %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("jina embed: decode: %w", decodeErr)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("jina embed: no vector returned")
	}

	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: out.Data[0].Embedding},
	}, nil
}
