package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/dialogue"
	"ai-chatbot-be/pkg/intent"
	"ai-chatbot-be/pkg/responder"
	"ai-chatbot-be/pkg/retrieval"
	"ai-chatbot-be/pkg/utils"
)

const module = "orchestrator"

const (
	SourceFlowEngine = "flow_engine"
	IntentCancelFlow = "cancel_flow"
	IntentFlow       = "flow"
)

// CancelKeywords end an active dialogue when sent as the whole message.
var CancelKeywords = []string{"cancelar", "cancel", "salir", "exit", "stop"}

// Searcher is the read side of the retrieval index.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, minScore float64) []retrieval.Hit
}

type Config struct {
	TopK            int
	MinScore        float64
	OrdersEnabled   bool
	TriggerKeywords []string
	TriggerDialogue string
	CancelReply     string
	Apology         string
}

// Message is one inbound user message from any channel.
type Message struct {
	Text    string
	UserID  string
	Channel string
	Meta    map[string]interface{}
}

type TraceHit struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// Trace records how a reply was produced. Nothing reads it back to decide anything.
type Trace struct {
	Intent           string                 `json:"intent"`
	Confidence       float64                `json:"confidence"`
	Source           string                 `json:"source"`
	RAGHits          int                    `json:"rag_hits"`
	RAGResults       []TraceHit             `json:"rag_results,omitempty"`
	Entities         map[string]interface{} `json:"entities,omitempty"`
	Model            string                 `json:"model,omitempty"`
	Dialogue         string                 `json:"flow,omitempty"`
	Step             int                    `json:"step,omitempty"`
	TotalSteps       int                    `json:"total_steps,omitempty"`
	ValidationFailed bool                   `json:"validation_failed,omitempty"`
	DurationMs       int64                  `json:"duration_ms"`
}

type Result struct {
	Reply          string               `json:"reply"`
	QuickReplies   []string             `json:"quick_replies"`
	Trace          Trace                `json:"trace"`
	Intent         string               `json:"intent"`
	Source         string               `json:"source"`
	DialogueActive bool                 `json:"flow_active"`
	Order          *dialogue.OrderDraft `json:"order,omitempty"`
}

type Orchestrator struct {
	cfg        Config
	dialogues  *dialogue.Engine
	index      Searcher
	classifier *intent.Classifier
	synth      *responder.Synthesizer
	logger     logger.ILogger
}

func New(cfg Config, dialogues *dialogue.Engine, index Searcher, classifier *intent.Classifier, synth *responder.Synthesizer, log logger.ILogger) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if cfg.TriggerDialogue == "" {
		cfg.TriggerDialogue = dialogue.QuickOrder
	}
	if cfg.CancelReply == "" {
		cfg.CancelReply = "Operación cancelada. ¿En qué más te puedo ayudar?"
	}
	if cfg.Apology == "" {
		cfg.Apology = "Lo siento, ocurrió un error. Por favor intenta de nuevo."
	}
	return &Orchestrator{cfg: cfg, dialogues: dialogues, index: index, classifier: classifier, synth: synth, logger: log}
}

// Apology is the reply channels send when ProcessMessage fails.
func (o *Orchestrator) Apology() Result {
	return Result{
		Reply:        o.cfg.Apology,
		QuickReplies: o.synth.DefaultQuickReplies(),
		Intent:       intent.Unknown,
		Source:       string(responder.SourceFallback),
		Trace:        Trace{Intent: intent.Unknown, Source: string(responder.SourceFallback)},
	}
}

// ProcessMessage answers one message. Backend failures never surface here; an
// error means the dialogue engine was misused, e.g. its definitions are broken.
func (o *Orchestrator) ProcessMessage(ctx context.Context, msg Message) (*Result, error) {
	start := time.Now()
	o.logger.Info(module, "Processing message", map[string]interface{}{
		"user_id": msg.UserID, "channel": msg.Channel, "text": utils.Ellipsis(msg.Text, 50),
	})

	res, err := o.process(ctx, msg)
	if err != nil {
		o.logger.Error(module, "Message processing failed", map[string]interface{}{"user_id": msg.UserID, "error": err.Error()})
		return nil, err
	}
	res.Trace.DurationMs = time.Since(start).Milliseconds()
	return res, nil
}

func (o *Orchestrator) process(ctx context.Context, msg Message) (*Result, error) {
	if o.dialogues.Active(msg.UserID) {
		res, err := o.continueDialogue(msg)
		if !errors.Is(err, dialogue.ErrNoActiveSession) && !errors.Is(err, dialogue.ErrSessionCompleted) {
			return res, err
		}
		// The session ended between the check and the submit; answer normally.
	}

	if name, ok := o.trigger(msg.Text); ok {
		reply, err := o.dialogues.Start(msg.UserID, name, msg.Channel)
		if err != nil {
			return nil, err
		}
		return dialogueResult(reply, intent.Order), nil
	}

	return o.answer(ctx, msg), nil
}

func (o *Orchestrator) continueDialogue(msg Message) (*Result, error) {
	if isCancel(msg.Text) {
		o.dialogues.Cancel(msg.UserID)
		return &Result{
			Reply:        o.cfg.CancelReply,
			QuickReplies: o.synth.DefaultQuickReplies(),
			Intent:       IntentCancelFlow,
			Source:       SourceFlowEngine,
			Trace:        Trace{Intent: IntentCancelFlow, Source: SourceFlowEngine},
		}, nil
	}

	reply, err := o.dialogues.Submit(msg.UserID, msg.Text)
	if err != nil {
		return nil, err
	}
	return dialogueResult(reply, IntentFlow), nil
}

func dialogueResult(reply *dialogue.Reply, label string) *Result {
	return &Result{
		Reply:          reply.Text,
		QuickReplies:   reply.QuickReplies,
		Intent:         label,
		Source:         SourceFlowEngine,
		DialogueActive: reply.Active,
		Order:          reply.Order,
		Trace: Trace{
			Intent:           label,
			Confidence:       1,
			Source:           SourceFlowEngine,
			Dialogue:         reply.DialogueName,
			Step:             reply.Step,
			TotalSteps:       reply.TotalSteps,
			ValidationFailed: reply.ValidationFailed,
		},
	}
}

func isCancel(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, k := range CancelKeywords {
		if t == k {
			return true
		}
	}
	return false
}

// trigger matches purchase keywords anywhere in the text.
func (o *Orchestrator) trigger(text string) (string, bool) {
	if !o.cfg.OrdersEnabled || !o.dialogues.Has(o.cfg.TriggerDialogue) {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, k := range o.cfg.TriggerKeywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return o.cfg.TriggerDialogue, true
		}
	}
	return "", false
}

func (o *Orchestrator) answer(ctx context.Context, msg Message) *Result {
	hits := o.index.Search(ctx, msg.Text, o.cfg.TopK, o.cfg.MinScore)
	label := o.classifier.Detect(msg.Text, hits)
	confidence := o.classifier.Confidence(msg.Text, label)
	synth := o.synth.Synthesize(ctx, msg.Text, label, hits)

	trace := Trace{
		Intent:     label,
		Confidence: confidence,
		Source:     string(synth.Source),
		RAGHits:    len(hits),
		Entities:   intent.ExtractEntities(msg.Text, label),
	}
	if model, ok := synth.Extra["model"].(string); ok {
		trace.Model = model
	}
	for i, h := range hits {
		if i == 3 {
			break
		}
		trace.RAGResults = append(trace.RAGResults, TraceHit{
			Text:   utils.Ellipsis(h.Document.Text, 100),
			Score:  h.Score,
			Source: string(h.Document.SourceKind),
		})
	}

	return &Result{
		Reply:        synth.Text,
		QuickReplies: o.synth.QuickReplies(label),
		Trace:        trace,
		Intent:       label,
		Source:       string(synth.Source),
	}
}
