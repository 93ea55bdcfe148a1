package models

import "time"

// EventService associates a contracted service with an event. Rows created
// by the pre-registration converter keep a back-reference to the source
// pre-registration service entry.
type EventService struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EventID       uint      `gorm:"not null;index" json:"event_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	ServiceTypeID uint      `gorm:"not null;index" json:"service_type_id"`
	Description   string    `gorm:"type:varchar(200)" json:"description" validate:"max=200"`
	PriceCents    int64     `gorm:"not null;default:0" json:"price_cents" validate:"gte=0"`
	Quantity      int       `gorm:"not null;default:1" json:"quantity" validate:"gte=1"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
