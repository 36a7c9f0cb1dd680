package dialogue_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/pkg/dialogue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func twoStep() dialogue.Definition {
	return dialogue.Definition{
		Name: "signup",
		Steps: []dialogue.Step{
			{Prompt: "¿Nombre?", Variable: "name", Validation: dialogue.ValidateRequired},
			{Prompt: "¿Cuántos, {name}?", Variable: "qty", Validation: dialogue.ValidateNumber},
		},
	}
}

func newEngine(t *testing.T, defs ...dialogue.Definition) (*dialogue.Engine, *memory.SessionRepository) {
	t.Helper()
	store := memory.NewSessionRepository(time.Hour)
	e, err := dialogue.NewEngine(defs, store, logger.NewNopLogger())
	require.NoError(t, err)
	return e, store
}

func TestQuickOrderFirstSteps(t *testing.T) {
	e, _ := newEngine(t, dialogue.DefaultQuickOrder())

	reply, err := e.Start("u1", dialogue.QuickOrder, "web")
	require.NoError(t, err)
	assert.Equal(t, "¡Genial! ¿Cuál es tu nombre?", reply.Text)
	assert.True(t, reply.Active)
	assert.Equal(t, 0, reply.Step)
	assert.Equal(t, 4, reply.TotalSteps)

	reply, err = e.Submit("u1", "   ")
	require.NoError(t, err)
	assert.True(t, reply.ValidationFailed)
	assert.True(t, reply.Active)
	assert.Equal(t, "Este campo es requerido.", reply.Text)
	s, ok := e.Session("u1")
	require.True(t, ok)
	assert.Equal(t, 0, s.StepIndex)

	reply, err = e.Submit("u1", "Juan")
	require.NoError(t, err)
	assert.Equal(t, "Gracias Juan. ¿Qué producto te gustaría pedir?", reply.Text)
	assert.Equal(t, dialogue.DefaultProductReplies, reply.QuickReplies)
	s, _ = e.Session("u1")
	assert.Equal(t, 1, s.StepIndex)
	assert.Equal(t, "Juan", s.Variables["name"])
}

func TestCompletionFinalizesOnce(t *testing.T) {
	e, _ := newEngine(t, twoStep())

	var calls int
	var got dialogue.Session
	e.RegisterFinalizer("signup", func(s dialogue.Session) dialogue.Completion {
		calls++
		got = s
		return dialogue.Completion{Text: "listo"}
	})

	_, err := e.Start("u1", "signup", "telegram")
	require.NoError(t, err)

	reply, err := e.Submit("u1", "Juan")
	require.NoError(t, err)
	assert.Equal(t, "¿Cuántos, Juan?", reply.Text)

	reply, err = e.Submit("u1", "3")
	require.NoError(t, err)
	assert.True(t, reply.Completed)
	assert.False(t, reply.Active)
	assert.Equal(t, "listo", reply.Text)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, got.Variables["qty"])
	assert.Equal(t, "telegram", got.Channel)

	assert.False(t, e.Active("u1"))
	_, err = e.Submit("u1", "otra cosa")
	assert.ErrorIs(t, err, dialogue.ErrNoActiveSession)
}

func TestCompletionWithoutFinalizer(t *testing.T) {
	e, _ := newEngine(t, twoStep())
	_, _ = e.Start("u1", "signup", "web")
	_, _ = e.Submit("u1", "Ana")
	reply, err := e.Submit("u1", "2")
	require.NoError(t, err)
	assert.Equal(t, "Flujo completado.", reply.Text)
	assert.Nil(t, reply.Order)
}

func TestQuickOrderFinalizer(t *testing.T) {
	e, _ := newEngine(t, dialogue.DefaultQuickOrder())
	e.RegisterFinalizer(dialogue.QuickOrder, dialogue.NewOrderFinalizer("Pizzería Roma"))

	_, _ = e.Start("u1", dialogue.QuickOrder, "twilio")
	for _, answer := range []string{"Juan", "Pizza", "2"} {
		_, err := e.Submit("u1", answer)
		require.NoError(t, err)
	}
	reply, err := e.Submit("u1", "+52 555 123 4567")
	require.NoError(t, err)

	require.NotNil(t, reply.Order)
	assert.Equal(t, dialogue.OrderDraft{
		CustomerName: "Juan", Phone: "+52 555 123 4567", Product: "Pizza", Quantity: 2, Channel: "twilio",
	}, *reply.Order)
	assert.Contains(t, reply.Text, "Pizzería Roma")
	assert.Contains(t, reply.Text, "+52 555 123 4567")
}

func TestEngineErrors(t *testing.T) {
	e, store := newEngine(t, twoStep())

	_, err := e.Start("u1", "missing", "web")
	assert.ErrorIs(t, err, dialogue.ErrUnknownDialogue)
	assert.False(t, e.Active("u1"))

	_, err = e.Submit("nobody", "hola")
	assert.ErrorIs(t, err, dialogue.ErrNoActiveSession)

	store.Save(&dialogue.Session{UserID: "done", DialogueName: "signup", Status: dialogue.StatusCompleted})
	_, err = e.Submit("done", "hola")
	assert.ErrorIs(t, err, dialogue.ErrSessionCompleted)
}

func TestCancelIsIdempotent(t *testing.T) {
	e, _ := newEngine(t, twoStep())
	_, _ = e.Start("u1", "signup", "web")
	_, _ = e.Submit("u1", "Juan")

	assert.True(t, e.Cancel("u1"))
	assert.False(t, e.Cancel("u1"))
	assert.False(t, e.Active("u1"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		kind    dialogue.ValidationKind
		input   string
		valid   bool
		value   interface{}
		message string
	}{
		{name: "none accepts empty", kind: dialogue.ValidateNone, input: "", valid: true, value: ""},
		{name: "required trims", kind: dialogue.ValidateRequired, input: "  Ana ", valid: true, value: "Ana"},
		{name: "required empty", kind: dialogue.ValidateRequired, input: " ", message: "Este campo es requerido."},
		{name: "number", kind: dialogue.ValidateNumber, input: " 12 ", valid: true, value: 12},
		{name: "number zero", kind: dialogue.ValidateNumber, input: "0", message: "Debe ser un número mayor a 0."},
		{name: "number negative", kind: dialogue.ValidateNumber, input: "-4", message: "Debe ser un número mayor a 0."},
		{name: "number text", kind: dialogue.ValidateNumber, input: "tres", message: "Debe ser un número válido."},
		{name: "number decimal", kind: dialogue.ValidateNumber, input: "2.5", message: "Debe ser un número válido."},
		{name: "phone", kind: dialogue.ValidatePhone, input: "+52 (555) 123-45", valid: true, value: "+52 (555) 123-45"},
		{name: "phone too short", kind: dialogue.ValidatePhone, input: "12345", message: "Ingresa un teléfono válido."},
		{name: "phone letters", kind: dialogue.ValidatePhone, input: "555-CALL-NOW", message: "Ingresa un teléfono válido."},
		{name: "email", kind: dialogue.ValidateEmail, input: "ana@example.com", valid: true, value: "ana@example.com"},
		{name: "email no tld", kind: dialogue.ValidateEmail, input: "ana@example", message: "Ingresa un email válido."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dialogue.Validate(tt.kind, tt.input)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.value, got.Value)
			} else {
				assert.Equal(t, tt.message, got.Message)
			}
		})
	}
}

func TestCustomErrorMessageAndMissingVariable(t *testing.T) {
	def := dialogue.Definition{
		Name: "custom",
		Steps: []dialogue.Step{
			{Prompt: "¿Correo?", Variable: "email", Validation: dialogue.ValidateEmail, ErrorMessage: "Correo inválido"},
			{Prompt: "Hola {nombre}", Variable: "x"},
		},
	}
	e, _ := newEngine(t, def)
	_, _ = e.Start("u1", "custom", "web")

	reply, err := e.Submit("u1", "nope")
	require.NoError(t, err)
	assert.Equal(t, "Correo inválido", reply.Text)

	reply, err = e.Submit("u1", "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "Hola {nombre}", reply.Text)
}

func TestNewEngineRejectsInvalidDefinitions(t *testing.T) {
	store := memory.NewSessionRepository(time.Hour)
	tests := []struct {
		name string
		defs []dialogue.Definition
	}{
		{name: "no steps", defs: []dialogue.Definition{{Name: "x"}}},
		{name: "bad validation", defs: []dialogue.Definition{{Name: "x", Steps: []dialogue.Step{{Prompt: "?", Validation: "date"}}}}},
		{name: "duplicate", defs: []dialogue.Definition{twoStep(), twoStep()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dialogue.NewEngine(tt.defs, store, logger.NewNopLogger())
			assert.Error(t, err)
		})
	}
}

func TestConcurrentSubmissionsFinalizeOnce(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))

	e, _ := newEngine(t, twoStep())
	var calls atomic.Int32
	e.RegisterFinalizer("signup", func(s dialogue.Session) dialogue.Completion {
		calls.Add(1)
		return dialogue.Completion{Text: "ok"}
	})

	const users = 20
	for u := 0; u < users; u++ {
		id := fmt.Sprintf("user-%d", u)
		_, err := e.Start(id, "signup", "web")
		require.NoError(t, err)
		_, err = e.Submit(id, "Juan")
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	var completed, rejected atomic.Int32
	for u := 0; u < users; u++ {
		id := fmt.Sprintf("user-%d", u)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				reply, err := e.Submit(id, "3")
				if err != nil {
					rejected.Add(1)
					return
				}
				if reply.Completed {
					completed.Add(1)
				}
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, int32(users), calls.Load())
	assert.Equal(t, int32(users), completed.Load())
	assert.Equal(t, int32(users*9), rejected.Load())
}
