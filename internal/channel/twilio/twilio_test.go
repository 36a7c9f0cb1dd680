package twilio

import (
	"context"
	"encoding/xml"
	"testing"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/orchestrator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProcessor struct {
	last orchestrator.Message
	res  orchestrator.Result
}

func (p *stubProcessor) Process(ctx context.Context, msg orchestrator.Message) *orchestrator.Result {
	p.last = msg
	return &p.res
}

func decodeBody(t *testing.T, doc []byte) string {
	t.Helper()
	var parsed twimlResponse
	require.NoError(t, xml.Unmarshal(doc, &parsed))
	return parsed.Message.Body
}

func TestFormatReply(t *testing.T) {
	assert.Equal(t, "Hola", FormatReply("Hola", nil))
	assert.Equal(t, "Hola\n\nOpciones rápidas:\n1. a\n2. b\n3. c\n4. d\n", FormatReply("Hola", []string{"a", "b", "c", "d", "e"}))
}

func TestHandle(t *testing.T) {
	p := &stubProcessor{res: orchestrator.Result{Reply: "Pizza <grande> & refresco", QuickReplies: []string{"Ver menú"}}}
	w := NewWebhook("AC123", p, logger.NewNopLogger())

	doc, err := w.Handle(context.Background(), Inbound{From: "whatsapp:+5215551234", Body: "menu", MessageSid: "SM1", AccountSid: "AC123"})
	require.NoError(t, err)

	assert.Equal(t, "+5215551234", p.last.UserID)
	assert.Equal(t, Name, p.last.Channel)
	assert.Equal(t, "SM1", p.last.Meta["message_sid"])
	assert.Contains(t, string(doc), "&lt;grande&gt;")
	assert.Equal(t, "Pizza <grande> & refresco\n\nOpciones rápidas:\n1. Ver menú\n", decodeBody(t, doc))
}

func TestHandleRejectsForeignAccount(t *testing.T) {
	p := &stubProcessor{}
	w := NewWebhook("AC123", p, logger.NewNopLogger())

	_, err := w.Handle(context.Background(), Inbound{From: "whatsapp:+1", Body: "hola", MessageSid: "SM1", AccountSid: "AC999"})
	assert.ErrorIs(t, err, ErrAccountMismatch)
	assert.Empty(t, p.last.Text)

	// Without a configured account any sender is accepted.
	_, err = NewWebhook("", p, logger.NewNopLogger()).Handle(context.Background(), Inbound{From: "+1", Body: "hola", AccountSid: "AC999"})
	assert.NoError(t, err)
}

func TestErrorTwiML(t *testing.T) {
	assert.Equal(t, ErrorMessage, decodeBody(t, ErrorTwiML()))
}
