// Package channel holds the messaging platform adapters that feed the chat pipeline.
package channel

import (
	"context"

	"ai-chatbot-be/pkg/orchestrator"
)

// Processor answers one inbound message. It never fails; unexpected errors
// come back as the apology reply.
type Processor interface {
	Process(ctx context.Context, msg orchestrator.Message) *orchestrator.Result
}
