package entity

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	Id          uuid.UUID
	Name        string
	Price       float64
	Description string
	Category    string
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
