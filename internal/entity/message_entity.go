package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message is one processed conversation turn: what the user sent and what the bot answered.
type Message struct {
	Id        uuid.UUID
	UserId    string
	Channel   string
	Text      string
	Reply     string
	Intent    string
	Source    string
	Trace     map[string]interface{}
	CreatedAt time.Time
}

// GroupCount is one bucket of a GROUP BY count.
type GroupCount struct {
	Key   string
	Count int64
}
