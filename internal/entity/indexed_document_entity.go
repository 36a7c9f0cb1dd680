package entity

import (
	"time"

	"github.com/google/uuid"
)

// IndexedDocument is one row of the persisted retrieval snapshot.
type IndexedDocument struct {
	Id         uuid.UUID
	Position   int
	Text       string
	SourceKind string
	Metadata   map[string]interface{}
	Embedding  []float32
	CreatedAt  time.Time
}
