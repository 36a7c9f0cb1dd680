package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/retrieval"
	"ai-chatbot-be/pkg/utils"

	"golang.org/x/time/rate"
)

type Source string

const (
	SourceTemplate    Source = "template"
	SourceRAGTemplate Source = "rag_template"
	SourceAPILLM      Source = "api_llm"
	SourceLocalLLM    Source = "local_llm"
	SourceFallback    Source = "fallback"
)

// Mode names a generation strategy as written in configuration.
type Mode string

const (
	ModeTemplate Mode = "rag_only"
	ModeHosted   Mode = "api_llm"
	ModeLocal    Mode = "local_llm"
)

// ErrGenerationBackend covers timeouts, auth and rate limit failures of a backend.
var ErrGenerationBackend = errors.New("generation backend error")

// Result is a synthesized reply. Extra carries "model" for model backends and
// "confidence" for template answers.
type Result struct {
	Text   string                 `json:"text"`
	Source Source                 `json:"source"`
	Extra  map[string]interface{} `json:"extra,omitempty"`
}

// Request is everything a strategy may use to answer.
type Request struct {
	Text     string
	Intent   string
	Hits     []retrieval.Hit
	Settings *Settings
}

// Strategy produces a reply for a request. Template never fails; model
// strategies return errors wrapping ErrGenerationBackend.
type Strategy interface {
	Mode() Mode
	Generate(ctx context.Context, req Request) (Result, error)
}

// TemplateStrategy answers from the top hit alone.
type TemplateStrategy struct{}

func (TemplateStrategy) Mode() Mode { return ModeTemplate }

func (TemplateStrategy) Generate(ctx context.Context, req Request) (Result, error) {
	return templateAnswer(req), nil
}

func templateAnswer(req Request) Result {
	if len(req.Hits) == 0 {
		return Result{Text: req.Settings.Fallback, Source: SourceFallback}
	}

	best := req.Hits[0]
	doc := best.Document
	var text string
	switch doc.SourceKind {
	case retrieval.SourceFAQ:
		text = doc.MetaString("answer")
	case retrieval.SourceCatalog:
		text = fmt.Sprintf("%s - $%s", doc.MetaString("name"), doc.MetaString("price"))
		if desc := doc.MetaString("description"); desc != "" {
			text += "\n" + desc
		}
	default:
		text = doc.Text
	}
	return Result{
		Text:   text,
		Source: SourceRAGTemplate,
		Extra:  map[string]interface{}{"confidence": best.Score},
	}
}

// HostedStrategy calls a hosted chat model with a business preamble and up to three hits.
type HostedStrategy struct {
	provider llm.LLMProvider
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
}

// NewHostedStrategy wraps provider. A nil provider makes every call fail, so
// replies degrade to templates. requestsPerMinute <= 0 disables limiting.
func NewHostedStrategy(provider llm.LLMProvider, model string, timeout time.Duration, requestsPerMinute int) *HostedStrategy {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	s := &HostedStrategy{provider: provider, model: model, timeout: timeout}
	if requestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}
	return s
}

func (s *HostedStrategy) Mode() Mode { return ModeHosted }

func (s *HostedStrategy) Generate(ctx context.Context, req Request) (Result, error) {
	if s.provider == nil {
		return Result{}, fmt.Errorf("%w: %v for model %q", ErrGenerationBackend, llm.ErrNoBackend, s.model)
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return Result{}, fmt.Errorf("%w: rate limit reached", ErrGenerationBackend)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: hostedPreamble(req.Settings, req.Hits)},
		{Role: llm.RoleUser, Content: req.Text},
	}, llm.WithTemperature(req.Settings.Temperature), llm.WithMaxTokens(req.Settings.MaxTokens))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrGenerationBackend, err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("%w: empty reply", ErrGenerationBackend)
	}
	return Result{Text: text, Source: SourceAPILLM, Extra: map[string]interface{}{"model": s.model}}, nil
}

// LocalStrategy prompts a locally hosted model with the top two hits.
type LocalStrategy struct {
	provider llm.LLMProvider
	model    string
	timeout  time.Duration
}

const LocalTimeout = 30 * time.Second

func NewLocalStrategy(provider llm.LLMProvider, model string) *LocalStrategy {
	return &LocalStrategy{provider: provider, model: model, timeout: LocalTimeout}
}

func (s *LocalStrategy) Mode() Mode { return ModeLocal }

func (s *LocalStrategy) Generate(ctx context.Context, req Request) (Result, error) {
	if s.provider == nil {
		return Result{}, fmt.Errorf("%w: no local model configured", ErrGenerationBackend)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.provider.Generate(ctx, localPrompt(req.Settings, req.Text, req.Hits),
		llm.WithTemperature(req.Settings.Temperature), llm.WithMaxTokens(req.Settings.MaxTokens))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrGenerationBackend, err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("%w: empty reply", ErrGenerationBackend)
	}
	return Result{Text: text, Source: SourceLocalLLM, Extra: map[string]interface{}{"model": s.model}}, nil
}

func hostedPreamble(s *Settings, hits []retrieval.Hit) string {
	var ctxText strings.Builder
	if len(hits) > 0 {
		ctxText.WriteString("\n\nContexto relevante:\n")
		for _, h := range firstHits(hits, 3) {
			doc := h.Document
			switch doc.SourceKind {
			case retrieval.SourceFAQ:
				fmt.Fprintf(&ctxText, "FAQ: %s -> %s\n", doc.MetaString("question"), doc.MetaString("answer"))
			case retrieval.SourceCatalog:
				fmt.Fprintf(&ctxText, "Producto: %s - $%s", doc.MetaString("name"), doc.MetaString("price"))
				if desc := doc.MetaString("description"); desc != "" {
					fmt.Fprintf(&ctxText, " - %s", desc)
				}
				ctxText.WriteString("\n")
			default:
				fmt.Fprintf(&ctxText, "Info: %s\n", utils.Ellipsis(doc.Text, 200))
			}
		}
	}

	return fmt.Sprintf(`Eres el asistente virtual de %s.

Información del negocio:
- Dirección: %s
- Horarios: %s
- Teléfono: %s

Instrucciones:
- Responde de forma %s y directa
- Usa máximo 2-3 oraciones
- Si no tienes información específica, sugiere contactar directamente
- Para pedidos, guía al cliente paso a paso%s`,
		orDefault(s.BusinessName, "nuestro negocio"),
		orDefault(s.Address, "No especificada"),
		orDefault(s.hoursInline(), "No especificados"),
		orDefault(s.Phone, "No especificado"),
		orDefault(s.Tone, "amigable"),
		ctxText.String(),
	)
}

func localPrompt(s *Settings, text string, hits []retrieval.Hit) string {
	var ctxText strings.Builder
	if len(hits) > 0 {
		ctxText.WriteString("\n\nContexto:\n")
		for _, h := range firstHits(hits, 2) {
			fmt.Fprintf(&ctxText, "- %s\n", utils.Ellipsis(h.Document.Text, 150))
		}
	}
	return fmt.Sprintf("Responde como asistente de %s.\n\nUsuario: %s%s\n\nRespuesta (máximo 2 oraciones):",
		orDefault(s.BusinessName, "nuestro negocio"), text, ctxText.String())
}

func firstHits(hits []retrieval.Hit, n int) []retrieval.Hit {
	if len(hits) > n {
		return hits[:n]
	}
	return hits
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
