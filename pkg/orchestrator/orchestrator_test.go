package orchestrator_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/pkg/dialogue"
	"ai-chatbot-be/pkg/intent"
	"ai-chatbot-be/pkg/orchestrator"
	"ai-chatbot-be/pkg/responder"
	"ai-chatbot-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var longAnswer = strings.Repeat("Abrimos todos los días ", 10)

func newPipeline(t *testing.T, ordersEnabled bool) (*orchestrator.Orchestrator, *dialogue.Engine) {
	t.Helper()
	log := logger.NewNopLogger()

	engine, err := dialogue.NewEngine([]dialogue.Definition{dialogue.DefaultQuickOrder()}, memory.NewSessionRepository(time.Hour), log)
	require.NoError(t, err)
	engine.RegisterFinalizer(dialogue.QuickOrder, dialogue.NewOrderFinalizer("Pizzería Roma"))

	index := retrieval.NewIndex(nil, log, retrieval.Options{})
	index.Rebuild(context.Background(), retrieval.Sources{
		FAQs: []retrieval.FAQSource{{Question: "¿A qué hora abren?", Answer: longAnswer}},
		Catalog: []retrieval.CatalogSource{
			{ID: "1", Name: "Pizza Margarita", Price: 10, Available: true},
		},
	})

	synth := responder.NewSynthesizer(responder.Settings{
		BusinessName:    "Pizzería Roma",
		Greeting:        "¡Hola! Bienvenido a {business_name}.",
		Goodbye:         "¡Gracias por contactarnos!",
		Fallback:        "No entendí tu consulta.",
		GreetingReplies: []string{"Ver menú", "Horarios", "Hacer pedido"},
	}, nil, log)

	o := orchestrator.New(orchestrator.Config{
		TopK:            4,
		MinScore:        0.5,
		OrdersEnabled:   ordersEnabled,
		TriggerKeywords: []string{"quiero", "ordenar", "pedido", "pedir", "comprar", "solicitar"},
	}, engine, index, intent.MustNewClassifier(intent.DefaultRules()), synth, log)
	return o, engine
}

func send(t *testing.T, o *orchestrator.Orchestrator, text string) *orchestrator.Result {
	t.Helper()
	res, err := o.ProcessMessage(context.Background(), orchestrator.Message{Text: text, UserID: "u1", Channel: "web"})
	require.NoError(t, err)
	return res
}

func TestGreetingUsesTemplate(t *testing.T) {
	o, _ := newPipeline(t, true)
	res := send(t, o, "Hola")

	assert.Equal(t, "¡Hola! Bienvenido a Pizzería Roma.", res.Reply)
	assert.Equal(t, intent.Greeting, res.Intent)
	assert.Equal(t, "template", res.Source)
	assert.Equal(t, []string{"Ver menú", "Horarios", "Hacer pedido"}, res.QuickReplies)
	assert.Equal(t, intent.Greeting, res.Trace.Intent)
	assert.Greater(t, res.Trace.Confidence, 0.0)
}

func TestFAQAnswerAndTrace(t *testing.T) {
	o, _ := newPipeline(t, true)
	res := send(t, o, "¿a qué hora abren?")

	assert.Equal(t, intent.FAQ, res.Intent)
	assert.Equal(t, "rag_template", res.Source)
	assert.Equal(t, longAnswer, res.Reply)

	require.Equal(t, 1, res.Trace.RAGHits)
	require.Len(t, res.Trace.RAGResults, 1)
	hit := res.Trace.RAGResults[0]
	assert.Equal(t, "faq", hit.Source)
	assert.Equal(t, 1.0, hit.Score)
	assert.True(t, strings.HasSuffix(hit.Text, "..."))
	assert.Len(t, []rune(strings.TrimSuffix(hit.Text, "...")), 100)
}

func TestUnknownFallsBack(t *testing.T) {
	o, _ := newPipeline(t, true)
	res := send(t, o, "xyzzy")

	assert.Equal(t, intent.Unknown, res.Intent)
	assert.Equal(t, "fallback", res.Source)
	assert.Equal(t, "No entendí tu consulta.", res.Reply)
	assert.Equal(t, []string{"Ver menú", "Horarios", "Contacto"}, res.QuickReplies)
	assert.Equal(t, 0.1, res.Trace.Confidence)
}

func TestOrderDialogueEndToEnd(t *testing.T) {
	o, engine := newPipeline(t, true)

	res := send(t, o, "Quiero una pizza")
	assert.Equal(t, "¡Genial! ¿Cuál es tu nombre?", res.Reply)
	assert.True(t, res.DialogueActive)
	assert.Equal(t, orchestrator.SourceFlowEngine, res.Source)
	assert.Equal(t, dialogue.QuickOrder, res.Trace.Dialogue)

	res = send(t, o, "Juan")
	assert.Equal(t, dialogue.DefaultProductReplies, res.QuickReplies)
	send(t, o, "Pizza")

	res = send(t, o, "muchas")
	assert.True(t, res.DialogueActive)
	assert.True(t, res.Trace.ValidationFailed)
	assert.Equal(t, "Debe ser un número válido.", res.Reply)

	send(t, o, "2")
	res = send(t, o, "+52 555 123 4567")
	assert.False(t, res.DialogueActive)
	require.NotNil(t, res.Order)
	assert.Equal(t, "Juan", res.Order.CustomerName)
	assert.Equal(t, 2, res.Order.Quantity)
	assert.Equal(t, "web", res.Order.Channel)
	assert.False(t, engine.Active("u1"))

	res = send(t, o, "hola")
	assert.Equal(t, intent.Greeting, res.Intent)
}

func TestCancelKeywordMidDialogue(t *testing.T) {
	for _, word := range []string{"cancelar", "CANCEL", " salir ", "Exit", "stop"} {
		t.Run(word, func(t *testing.T) {
			o, engine := newPipeline(t, true)
			send(t, o, "quiero ordenar")
			send(t, o, "Ana")
			send(t, o, "Tacos")

			res := send(t, o, word)
			assert.Equal(t, "Operación cancelada. ¿En qué más te puedo ayudar?", res.Reply)
			assert.Equal(t, orchestrator.IntentCancelFlow, res.Intent)
			assert.Equal(t, orchestrator.SourceFlowEngine, res.Trace.Source)
			assert.Equal(t, []string{"Ver menú", "Horarios", "Hacer pedido"}, res.QuickReplies)
			assert.False(t, engine.Active("u1"))
		})
	}
}

func TestCancelWordOutsideDialogueIsOrdinaryText(t *testing.T) {
	o, _ := newPipeline(t, true)
	res := send(t, o, "cancelar")
	assert.NotEqual(t, orchestrator.IntentCancelFlow, res.Intent)
}

func TestOrdersDisabledSkipsDialogue(t *testing.T) {
	o, engine := newPipeline(t, false)
	res := send(t, o, "quiero pizza")

	assert.False(t, engine.Active("u1"))
	assert.False(t, res.DialogueActive)
	assert.Equal(t, intent.Order, res.Intent)
	assert.Equal(t, "rag_template", res.Source)
	assert.Equal(t, "Pizza Margarita - $10", res.Reply)
	assert.Equal(t, []string{"Continuar pedido", "Ver menú", "Cancelar"}, res.QuickReplies)
}

func TestApology(t *testing.T) {
	o, _ := newPipeline(t, true)
	res := o.Apology()
	assert.Equal(t, "Lo siento, ocurrió un error. Por favor intenta de nuevo.", res.Reply)
	assert.Equal(t, "fallback", res.Source)
}
