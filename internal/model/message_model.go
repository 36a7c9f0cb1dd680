package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Message struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    string         `gorm:"type:varchar(255);not null;index"`
	Channel   string         `gorm:"type:varchar(32);not null;index"`
	Text      string         `gorm:"type:text"`
	Reply     string         `gorm:"type:text"`
	Intent    string         `gorm:"type:varchar(32);index"`
	Source    string         `gorm:"type:varchar(32)"`
	Trace     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (Message) TableName() string {
	return "messages"
}
