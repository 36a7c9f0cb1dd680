package entity

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusFulfilled OrderStatus = "fulfilled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew, OrderStatusConfirmed, OrderStatusCancelled, OrderStatusFulfilled:
		return true
	}
	return false
}

type Order struct {
	Id           uuid.UUID
	UserId       string
	CustomerName string
	Phone        string
	Product      string
	Quantity     int
	Channel      string
	Status       OrderStatus
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
