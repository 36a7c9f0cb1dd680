package twilio

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"ai-chatbot-be/internal/channel"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/orchestrator"
)

const (
	Name = "whatsapp"

	MaxOptions   = 4
	ErrorMessage = "Lo siento, hubo un error procesando tu mensaje. Intenta de nuevo."
)

var ErrAccountMismatch = errors.New("invalid AccountSid")

// Inbound is the form Twilio posts for an incoming WhatsApp message.
type Inbound struct {
	From       string `form:"From" validate:"required"`
	Body       string `form:"Body" validate:"required"`
	MessageSid string `form:"MessageSid" validate:"required"`
	AccountSid string `form:"AccountSid" validate:"required"`
	To         string `form:"To"`
}

type Webhook struct {
	accountSid string
	processor  channel.Processor
	logger     logger.ILogger
}

// NewWebhook checks AccountSid against accountSid unless it is empty.
func NewWebhook(accountSid string, processor channel.Processor, log logger.ILogger) *Webhook {
	return &Webhook{accountSid: accountSid, processor: processor, logger: log}
}

// Handle answers one inbound message with a TwiML document.
func (w *Webhook) Handle(ctx context.Context, in Inbound) ([]byte, error) {
	if w.accountSid != "" && in.AccountSid != w.accountSid {
		return nil, ErrAccountMismatch
	}

	res := w.processor.Process(ctx, orchestrator.Message{
		Text:    in.Body,
		UserID:  strings.TrimPrefix(in.From, "whatsapp:"),
		Channel: Name,
		Meta:    map[string]interface{}{"message_sid": in.MessageSid, "to": in.To},
	})
	return Message(FormatReply(res.Reply, res.QuickReplies))
}

// FormatReply appends up to four quick replies as numbered options.
func FormatReply(reply string, quickReplies []string) string {
	if len(quickReplies) == 0 {
		return reply
	}
	if len(quickReplies) > MaxOptions {
		quickReplies = quickReplies[:MaxOptions]
	}
	var b strings.Builder
	b.WriteString(reply)
	b.WriteString("\n\nOpciones rápidas:\n")
	for i, opt := range quickReplies {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
	}
	return b.String()
}

type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Message twimlMessage `xml:"Message"`
}

type twimlMessage struct {
	Body string `xml:"Body"`
}

// Message renders a TwiML response carrying a single message.
func Message(body string) ([]byte, error) {
	out, err := xml.Marshal(twimlResponse{Message: twimlMessage{Body: body}})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// ErrorTwiML is sent whenever a message cannot be answered.
func ErrorTwiML() []byte {
	out, _ := Message(ErrorMessage)
	return out
}
