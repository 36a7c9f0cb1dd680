package responder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/intent"
	"ai-chatbot-be/pkg/retrieval"

	"github.com/valyala/fasttemplate"
)

const module = "responder"

type BusinessHour struct {
	Day  string
	Time string
}

// Settings are the display strings and generation knobs the synthesizer reads.
type Settings struct {
	BusinessName string
	Address      string
	Phone        string
	Email        string
	Hours        []BusinessHour
	Tone         string

	Greeting        string // may reference {business_name}
	Goodbye         string
	Fallback        string
	GreetingReplies []string

	Temperature float64
	MaxTokens   int
}

func (s *Settings) hoursInline() string {
	parts := make([]string, 0, len(s.Hours))
	for _, h := range s.Hours {
		parts = append(parts, fmt.Sprintf("%s: %s", dayName(h.Day), h.Time))
	}
	return strings.Join(parts, ", ")
}

func dayName(key string) string {
	switch key {
	case "mon_fri":
		return "Lunes a Viernes"
	case "sat":
		return "Sábado"
	case "sun":
		return "Domingo"
	}
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

var (
	menuReplies    = []string{"Hacer pedido", "Ver horarios", "Ubicación"}
	faqReplies     = []string{"Ver menú", "Hacer pedido", "Más información"}
	orderReplies   = []string{"Continuar pedido", "Ver menú", "Cancelar"}
	defaultReplies = []string{"Ver menú", "Horarios", "Contacto"}
)

// Synthesizer turns an intent and retrieved context into reply text.
type Synthesizer struct {
	settings atomic.Pointer[Settings]
	strategy Strategy
	logger   logger.ILogger
}

// NewSynthesizer uses strategy for everything beyond greetings and goodbyes.
// A nil strategy means template-only.
func NewSynthesizer(settings Settings, strategy Strategy, log logger.ILogger) *Synthesizer {
	if strategy == nil {
		strategy = TemplateStrategy{}
	}
	s := &Synthesizer{strategy: strategy, logger: log}
	s.settings.Store(&settings)
	return s
}

// UpdateSettings swaps the display strings, e.g. after an admin edits them.
func (s *Synthesizer) UpdateSettings(settings Settings) {
	s.settings.Store(&settings)
}

func (s *Synthesizer) Settings() Settings {
	return *s.settings.Load()
}

func (s *Synthesizer) Mode() Mode {
	return s.strategy.Mode()
}

// Synthesize never fails. Backend errors degrade to the template answer.
func (s *Synthesizer) Synthesize(ctx context.Context, text, label string, hits []retrieval.Hit) Result {
	settings := s.settings.Load()

	switch label {
	case intent.Greeting:
		return Result{Text: renderGreeting(settings), Source: SourceTemplate}
	case intent.Goodbye:
		return Result{Text: settings.Goodbye, Source: SourceTemplate}
	}

	if s.strategy.Mode() == ModeTemplate && len(hits) == 0 && label != intent.FAQ && label != intent.Menu {
		return Result{Text: settings.Fallback, Source: SourceFallback}
	}

	req := Request{Text: text, Intent: label, Hits: hits, Settings: settings}
	res, err := s.strategy.Generate(ctx, req)
	if err != nil {
		s.logger.Error(module, "Generation failed, using template answer", map[string]interface{}{
			"mode":    string(s.strategy.Mode()),
			"error":   err.Error(),
			"backend": errors.Is(err, ErrGenerationBackend),
		})
		return templateAnswer(req)
	}
	return res
}

// QuickReplies is the static suggestion list for an intent.
func (s *Synthesizer) QuickReplies(label string) []string {
	var replies []string
	switch label {
	case intent.Greeting:
		replies = s.settings.Load().GreetingReplies
	case intent.Menu:
		replies = menuReplies
	case intent.FAQ:
		replies = faqReplies
	case intent.Order:
		replies = orderReplies
	default:
		replies = defaultReplies
	}
	return append([]string(nil), replies...)
}

// DefaultQuickReplies are the configured suggestions offered after a greeting or cancellation.
func (s *Synthesizer) DefaultQuickReplies() []string {
	return append([]string(nil), s.settings.Load().GreetingReplies...)
}

func (s *Synthesizer) BusinessHoursText() string {
	settings := s.settings.Load()
	if len(settings.Hours) == 0 {
		return "Consulta nuestros horarios directamente."
	}
	var b strings.Builder
	b.WriteString("Nuestros horarios:\n")
	for _, h := range settings.Hours {
		fmt.Fprintf(&b, "• %s: %s\n", dayName(h.Day), h.Time)
	}
	return strings.TrimSpace(b.String())
}

func (s *Synthesizer) BusinessInfoText() string {
	settings := s.settings.Load()
	var b strings.Builder
	fmt.Fprintf(&b, "📍 %s\n", orDefault(settings.BusinessName, "Nuestro negocio"))
	if settings.Address != "" {
		fmt.Fprintf(&b, "Dirección: %s\n", settings.Address)
	}
	if settings.Phone != "" {
		fmt.Fprintf(&b, "Teléfono: %s\n", settings.Phone)
	}
	if settings.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", settings.Email)
	}
	return strings.TrimSpace(b.String())
}

// renderGreeting fills {business_name}; other placeholders are left as written.
func renderGreeting(s *Settings) string {
	name := orDefault(s.BusinessName, "nuestro negocio")
	t, err := fasttemplate.NewTemplate(s.Greeting, "{", "}")
	if err != nil {
		return s.Greeting
	}
	return t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if tag == "business_name" {
			return w.Write([]byte(name))
		}
		return w.Write([]byte("{" + tag + "}"))
	})
}
