package dialogue

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"sync"
	"time"

	"ai-chatbot-be/internal/pkg/logger"

	"github.com/valyala/fasttemplate"
)

const module = "dialogue"

var (
	ErrUnknownDialogue  = errors.New("unknown dialogue")
	ErrNoActiveSession  = errors.New("no active dialogue session")
	ErrSessionCompleted = errors.New("dialogue session already completed")
)

// SessionStore keeps at most one session per user. The engine serializes
// access per user, so implementations only need to be safe across users.
type SessionStore interface {
	Get(userID string) (*Session, bool)
	Save(session *Session)
	Delete(userID string) bool
}

// OrderDraft is what the order dialogue collects. Persisting it is up to the caller.
type OrderDraft struct {
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Product      string `json:"product"`
	Quantity     int    `json:"quantity"`
	Channel      string `json:"channel"`
}

// Completion is produced by a finalizer when the last step is answered.
type Completion struct {
	Text  string
	Order *OrderDraft
}

// Finalizer runs once per completed session, with the user's lock held.
type Finalizer func(s Session) Completion

// Reply is what a dialogue step sends back to the user.
type Reply struct {
	Text             string
	Active           bool
	DialogueName     string
	Step             int
	TotalSteps       int
	QuickReplies     []string
	ValidationFailed bool
	Completed        bool
	Order            *OrderDraft
}

const shardCount = 64

var DefaultProductReplies = []string{"Pizza", "Hamburguesa", "Tacos", "Ver menú completo"}

type Engine struct {
	defs           map[string]Definition
	finalizers     map[string]Finalizer
	store          SessionStore
	logger         logger.ILogger
	productReplies []string
	now            func() time.Time

	shards [shardCount]sync.Mutex
}

type Option func(*Engine)

// WithProductReplies sets the suggestions offered on a step collecting "product".
// An empty list keeps the defaults.
func WithProductReplies(replies []string) Option {
	return func(e *Engine) {
		if len(replies) > 0 {
			e.productReplies = replies
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(defs []Definition, store SessionStore, log logger.ILogger, opts ...Option) (*Engine, error) {
	e := &Engine{
		defs:           make(map[string]Definition, len(defs)),
		finalizers:     make(map[string]Finalizer),
		store:          store,
		logger:         log,
		productReplies: DefaultProductReplies,
		now:            time.Now,
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := e.defs[d.Name]; dup {
			return nil, fmt.Errorf("dialogue %q defined twice", d.Name)
		}
		e.defs[d.Name] = d
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RegisterFinalizer attaches the completion action for a dialogue.
// Dialogues without one complete with a generic message.
func (e *Engine) RegisterFinalizer(dialogueName string, f Finalizer) {
	e.finalizers[dialogueName] = f
}

// Has reports whether a dialogue with that name is defined.
func (e *Engine) Has(dialogueName string) bool {
	_, ok := e.defs[dialogueName]
	return ok
}

func (e *Engine) lock(userID string) func() {
	h := fnv.New32a()
	h.Write([]byte(userID))
	mu := &e.shards[h.Sum32()%shardCount]
	mu.Lock()
	return mu.Unlock
}

// Start opens a dialogue at its first step, replacing any session the user had.
func (e *Engine) Start(userID, dialogueName, channel string) (*Reply, error) {
	def, ok := e.defs[dialogueName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialogue, dialogueName)
	}

	unlock := e.lock(userID)
	defer unlock()

	now := e.now()
	session := &Session{
		UserID:       userID,
		DialogueName: dialogueName,
		Channel:      channel,
		Variables:    make(map[string]interface{}),
		Status:       StatusInProgress,
		StartedAt:    now,
		UpdatedAt:    now,
	}
	e.store.Save(session)

	e.logger.Info(module, "Dialogue started", map[string]interface{}{"user_id": userID, "dialogue": dialogueName, "channel": channel})
	return e.stepReply(def, session), nil
}

// Active reports whether the user has a dialogue in progress.
func (e *Engine) Active(userID string) bool {
	unlock := e.lock(userID)
	defer unlock()

	s, ok := e.store.Get(userID)
	return ok && s.Status == StatusInProgress
}

// Session returns a copy of the user's live session.
func (e *Engine) Session(userID string) (Session, bool) {
	unlock := e.lock(userID)
	defer unlock()

	s, ok := e.store.Get(userID)
	if !ok {
		return Session{}, false
	}
	cp := *s
	cp.Variables = make(map[string]interface{}, len(s.Variables))
	for k, v := range s.Variables {
		cp.Variables[k] = v
	}
	return cp, true
}

// Submit answers the current step. A rejected answer leaves the session where it was.
func (e *Engine) Submit(userID, text string) (*Reply, error) {
	unlock := e.lock(userID)
	defer unlock()

	session, ok := e.store.Get(userID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	if session.Status == StatusCompleted {
		return nil, ErrSessionCompleted
	}
	if session.Status != StatusInProgress {
		return nil, ErrNoActiveSession
	}

	def, ok := e.defs[session.DialogueName]
	if !ok {
		// Definitions changed under a live session.
		e.store.Delete(userID)
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialogue, session.DialogueName)
	}

	step := def.Steps[session.StepIndex]
	result := Validate(step.Validation, text)
	if !result.Valid {
		msg := result.Message
		if step.ErrorMessage != "" {
			msg = step.ErrorMessage
		}
		return &Reply{
			Text:             msg,
			Active:           true,
			DialogueName:     def.Name,
			Step:             session.StepIndex,
			TotalSteps:       len(def.Steps),
			ValidationFailed: true,
		}, nil
	}

	if step.Variable != "" {
		session.Variables[step.Variable] = result.Value
	}
	session.StepIndex++
	session.UpdatedAt = e.now()

	if session.StepIndex < len(def.Steps) {
		e.store.Save(session)
		return e.stepReply(def, session), nil
	}

	return e.complete(def, session), nil
}

func (e *Engine) complete(def Definition, session *Session) *Reply {
	session.Status = StatusCompleted
	e.store.Save(session)

	completion := Completion{Text: "Flujo completado."}
	if f, ok := e.finalizers[def.Name]; ok {
		completion = f(*session)
	}
	e.store.Delete(session.UserID)

	e.logger.Info(module, "Dialogue completed", map[string]interface{}{
		"user_id": session.UserID, "dialogue": def.Name, "order": completion.Order != nil,
	})

	return &Reply{
		Text:         completion.Text,
		DialogueName: def.Name,
		Step:         session.StepIndex,
		TotalSteps:   len(def.Steps),
		Completed:    true,
		Order:        completion.Order,
	}
}

// Cancel drops the user's session. It reports whether one existed.
func (e *Engine) Cancel(userID string) bool {
	unlock := e.lock(userID)
	defer unlock()

	s, ok := e.store.Get(userID)
	if !ok {
		return false
	}
	s.Status = StatusCancelled
	e.store.Delete(userID)
	e.logger.Info(module, "Dialogue cancelled", map[string]interface{}{"user_id": userID, "dialogue": s.DialogueName})
	return true
}

func (e *Engine) stepReply(def Definition, session *Session) *Reply {
	step := def.Steps[session.StepIndex]
	reply := &Reply{
		Text:         e.render(step.Prompt, session.Variables),
		Active:       true,
		DialogueName: def.Name,
		Step:         session.StepIndex,
		TotalSteps:   len(def.Steps),
		QuickReplies: step.QuickReplies,
	}
	if len(reply.QuickReplies) == 0 && step.Variable == "product" {
		reply.QuickReplies = e.productReplies
	}
	return reply
}

// render substitutes {name} placeholders. Any unknown placeholder or malformed
// template returns the raw template.
func (e *Engine) render(tmpl string, vars map[string]interface{}) string {
	t, err := fasttemplate.NewTemplate(tmpl, "{", "}")
	if err != nil {
		e.logger.Warn(module, "Malformed prompt template", map[string]interface{}{"template": tmpl, "error": err.Error()})
		return tmpl
	}
	out, err := t.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		v, ok := vars[strings.TrimSpace(tag)]
		if !ok {
			return 0, fmt.Errorf("missing variable %q", tag)
		}
		return fmt.Fprint(w, v)
	})
	if err != nil {
		e.logger.Warn(module, "Missing variable in template", map[string]interface{}{"template": tmpl, "error": err.Error()})
		return tmpl
	}
	return out
}
