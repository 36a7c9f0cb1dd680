package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// IndexedDocument has no fixed vector dimension; it depends on the embedding provider.
type IndexedDocument struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Position   int             `gorm:"not null;index"`
	Text       string          `gorm:"type:text;not null"`
	SourceKind string          `gorm:"type:varchar(32);not null"`
	Metadata   datatypes.JSON  `gorm:"type:jsonb"`
	Embedding  pgvector.Vector `gorm:"type:vector"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (IndexedDocument) TableName() string {
	return "indexed_documents"
}
