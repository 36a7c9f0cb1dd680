package model

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       string    `gorm:"type:varchar(255);index"`
	CustomerName string    `gorm:"type:varchar(255)"`
	Phone        string    `gorm:"type:varchar(32)"`
	Product      string    `gorm:"type:varchar(255)"`
	Quantity     int       `gorm:"not null;default:1"`
	Channel      string    `gorm:"type:varchar(32)"`
	Status       string    `gorm:"type:varchar(20);not null;default:'new';index"`
	Notes        string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
