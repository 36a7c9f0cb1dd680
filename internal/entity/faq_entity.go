package entity

import (
	"time"

	"github.com/google/uuid"
)

type FAQ struct {
	Id        uuid.UUID
	Question  string
	Answer    string
	Tags      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
