package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"ai-chatbot-be/pkg/dialogue"
	"ai-chatbot-be/pkg/responder"

	"gopkg.in/yaml.v3"
)

const (
	ModeRAGOnly  = "rag_only"
	ModeAPILLM   = "api_llm"
	ModeLocalLLM = "local_llm"
)

var ErrInvalidBusinessConfig = errors.New("invalid business config")

// BusinessConfig is the YAML document describing the business the bot speaks for.
type BusinessConfig struct {
	Business  BusinessInfo          `yaml:"business" json:"business"`
	AI        GenerationConfig      `yaml:"ai" json:"ai"`
	Retrieval RetrievalConfig       `yaml:"retrieval" json:"retrieval"`
	Responses ResponsesConfig       `yaml:"responses" json:"responses"`
	Orders    OrdersConfig          `yaml:"orders" json:"orders"`
	Flows     map[string]FlowConfig `yaml:"flows" json:"-"`
	DocsDir   string                `yaml:"docs_dir" json:"-"`

	// Source is the file the config was read from, empty for built-in defaults.
	Source string `yaml:"-" json:"-"`
}

type BusinessInfo struct {
	Name     string `yaml:"name" json:"name"`
	Address  string `yaml:"address" json:"address,omitempty"`
	Phone    string `yaml:"phone" json:"phone,omitempty"`
	Email    string `yaml:"email" json:"email,omitempty"`
	Hours    Hours  `yaml:"hours" json:"hours,omitempty"`
	Timezone string `yaml:"timezone" json:"timezone"`
	Language string `yaml:"language" json:"language"`
}

type HourEntry struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// Hours keeps the order in which days appear in the YAML mapping.
type Hours []HourEntry

func (h *Hours) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("business.hours: expected a mapping, got line %d", value.Line)
	}
	out := make(Hours, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		out = append(out, HourEntry{Day: value.Content[i].Value, Time: value.Content[i+1].Value})
	}
	*h = out
	return nil
}

type GenerationConfig struct {
	Mode              string  `yaml:"mode" json:"mode"`
	ModelName         string  `yaml:"model_name" json:"model_name"`
	Temperature       float64 `yaml:"temperature" json:"temperature"`
	MaxTokens         int     `yaml:"max_tokens" json:"-"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" json:"-"`
	RequestsPerMinute int     `yaml:"requests_per_minute" json:"-"`
}

type RetrievalConfig struct {
	TopK         int     `yaml:"top_k" json:"top_k"`
	MinScore     float64 `yaml:"min_score" json:"min_score"`
	ChunkSize    int     `yaml:"chunk_size" json:"-"`
	ChunkOverlap int     `yaml:"chunk_overlap" json:"-"`
}

type ResponsesConfig struct {
	Greeting     string   `yaml:"greeting" json:"greeting"`
	Goodbye      string   `yaml:"goodbye" json:"-"`
	Fallback     string   `yaml:"fallback" json:"-"`
	Apology      string   `yaml:"apology" json:"-"`
	Cancelled    string   `yaml:"cancelled" json:"-"`
	Tone         string   `yaml:"tone" json:"tone"`
	QuickReplies []string `yaml:"quick_replies" json:"quick_replies"`
}

type OrdersConfig struct {
	Enable          bool     `yaml:"enable" json:"enable"`
	TriggerKeywords []string `yaml:"trigger_keywords" json:"-"`
	TriggerFlow     string   `yaml:"trigger_flow" json:"-"`
	Products        []string `yaml:"products" json:"-"`
}

type FlowConfig struct {
	Steps []FlowStepConfig `yaml:"steps"`
}

// FlowStepConfig is one step as written in YAML. Either ask or confirm holds the prompt.
type FlowStepConfig struct {
	Ask          string   `yaml:"ask"`
	Confirm      string   `yaml:"confirm"`
	Var          string   `yaml:"var"`
	Validation   string   `yaml:"validation"`
	Error        string   `yaml:"error"`
	QuickReplies []string `yaml:"quick_replies"`
}

// DefaultBusinessConfig is used as the base every YAML file is decoded over.
func DefaultBusinessConfig() *BusinessConfig {
	return &BusinessConfig{
		Business: BusinessInfo{
			Name:     "Mi Negocio",
			Timezone: "America/Mexico_City",
			Language: "es",
		},
		AI: GenerationConfig{
			Mode:              ModeRAGOnly,
			ModelName:         "gpt-4o-mini",
			Temperature:       0.2,
			MaxTokens:         500,
			TimeoutSeconds:    20,
			RequestsPerMinute: 60,
		},
		Retrieval: RetrievalConfig{
			TopK:         4,
			MinScore:     0.5,
			ChunkSize:    300,
			ChunkOverlap: 50,
		},
		Responses: ResponsesConfig{
			Greeting:     "¡Hola! Bienvenido a {business_name}. ¿En qué te puedo ayudar?",
			Goodbye:      "¡Gracias por contactarnos! Que tengas un buen día.",
			Fallback:     "No entendí tu consulta.",
			Apology:      "Lo siento, ocurrió un error. Por favor intenta de nuevo.",
			Cancelled:    "Operación cancelada. ¿En qué más te puedo ayudar?",
			Tone:         "amigable",
			QuickReplies: []string{"Ver menú", "Horarios", "Hacer pedido"},
		},
		Orders: OrdersConfig{
			Enable:          true,
			TriggerKeywords: []string{"quiero", "ordenar", "pedido", "pedir", "comprar", "solicitar"},
			TriggerFlow:     dialogue.QuickOrder,
		},
		DocsDir: "data/docs",
	}
}

// LoadBusiness reads the business YAML. An empty path tries config.yaml, then
// config_example.yaml, then falls back to the built-in defaults.
func LoadBusiness(path string) (*BusinessConfig, error) {
	candidates := []string{"config.yaml", "config_example.yaml"}
	if path != "" {
		candidates = []string{path}
	}

	cfg := DefaultBusinessConfig()
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if errors.Is(err, os.ErrNotExist) && path == "" {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read business config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", candidate, err)
		}
		cfg.Source = candidate
		break
	}

	if cfg.Source == "" {
		log.Println("Note: no business config file found, using defaults")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseBusiness decodes a YAML document over the defaults and validates it.
func ParseBusiness(data []byte) (*BusinessConfig, error) {
	cfg := DefaultBusinessConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse business config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *BusinessConfig) Validate() error {
	var problems []string

	switch c.AI.Mode {
	case ModeRAGOnly, ModeAPILLM, ModeLocalLLM:
	default:
		problems = append(problems, fmt.Sprintf("ai.mode %q is not one of rag_only, api_llm, local_llm", c.AI.Mode))
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		problems = append(problems, "ai.temperature must be within [0,2]")
	}
	if c.AI.MaxTokens <= 0 {
		problems = append(problems, "ai.max_tokens must be positive")
	}
	if c.AI.TimeoutSeconds <= 0 {
		problems = append(problems, "ai.timeout_seconds must be positive")
	}
	if c.Retrieval.TopK < 1 {
		problems = append(problems, "retrieval.top_k must be at least 1")
	}
	if c.Retrieval.MinScore < 0 || c.Retrieval.MinScore > 1 {
		problems = append(problems, "retrieval.min_score must be within [0,1]")
	}
	if c.Retrieval.ChunkSize <= 0 {
		problems = append(problems, "retrieval.chunk_size must be positive")
	}
	if c.Retrieval.ChunkOverlap < 0 || c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		problems = append(problems, "retrieval.chunk_overlap must be within [0, chunk_size)")
	}
	if _, err := c.DialogueDefinitions(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidBusinessConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DialogueDefinitions converts the configured flows, sorted by name. The order
// dialogue is always present; a configured quick_order flow replaces the built-in one.
func (c *BusinessConfig) DialogueDefinitions() ([]dialogue.Definition, error) {
	names := make([]string, 0, len(c.Flows))
	for name := range c.Flows {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]dialogue.Definition, 0, len(names)+1)
	if _, ok := c.Flows[dialogue.QuickOrder]; !ok {
		defs = append(defs, dialogue.DefaultQuickOrder())
	}
	for _, name := range names {
		def := dialogue.Definition{Name: name}
		for i, s := range c.Flows[name].Steps {
			kind, err := dialogue.ParseValidationKind(s.Validation)
			if err != nil {
				return nil, fmt.Errorf("flows.%s.steps[%d]: %w", name, i, err)
			}
			prompt := s.Ask
			if prompt == "" {
				prompt = s.Confirm
			}
			def.Steps = append(def.Steps, dialogue.Step{
				Prompt:       prompt,
				Variable:     s.Var,
				Validation:   kind,
				ErrorMessage: s.Error,
				QuickReplies: s.QuickReplies,
			})
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("flows.%s: %w", name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// ApplyOverrides merges admin-edited settings over the file values and revalidates.
// Unknown keys are ignored.
func (c *BusinessConfig) ApplyOverrides(settings map[string]string) error {
	for key, value := range settings {
		if strings.TrimSpace(value) == "" {
			continue
		}
		switch key {
		case "business_name":
			c.Business.Name = value
		case "business_timezone":
			c.Business.Timezone = value
		case "ai_mode":
			c.AI.Mode = value
		case "response_tone":
			c.Responses.Tone = value
		case "greeting":
			c.Responses.Greeting = value
		case "fallback":
			c.Responses.Fallback = value
		}
	}
	return c.Validate()
}

// SynthesizerSettings is the responder's view of the business config.
func (c *BusinessConfig) SynthesizerSettings() responder.Settings {
	hours := make([]responder.BusinessHour, 0, len(c.Business.Hours))
	for _, h := range c.Business.Hours {
		hours = append(hours, responder.BusinessHour{Day: h.Day, Time: h.Time})
	}
	return responder.Settings{
		BusinessName:    c.Business.Name,
		Address:         c.Business.Address,
		Phone:           c.Business.Phone,
		Email:           c.Business.Email,
		Hours:           hours,
		Tone:            c.Responses.Tone,
		Greeting:        c.Responses.Greeting,
		Goodbye:         c.Responses.Goodbye,
		Fallback:        c.Responses.Fallback,
		GreetingReplies: append([]string(nil), c.Responses.QuickReplies...),
		Temperature:     c.AI.Temperature,
		MaxTokens:       c.AI.MaxTokens,
	}
}

// Clone copies the config so overrides can be tried without touching the original.
func (c *BusinessConfig) Clone() *BusinessConfig {
	out := *c
	out.Business.Hours = append(Hours(nil), c.Business.Hours...)
	out.Responses.QuickReplies = append([]string(nil), c.Responses.QuickReplies...)
	out.Orders.TriggerKeywords = append([]string(nil), c.Orders.TriggerKeywords...)
	out.Orders.Products = append([]string(nil), c.Orders.Products...)
	out.Flows = make(map[string]FlowConfig, len(c.Flows))
	for k, v := range c.Flows {
		out.Flows[k] = v
	}
	return &out
}
