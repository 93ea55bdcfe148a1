package models

import "time"

// Cost is an expense booked against an event (vendors, rentals, staff).
type Cost struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EventID     uint       `gorm:"not null;index" json:"event_id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	CostTypeID  *uint      `gorm:"default:null" json:"cost_type_id,omitempty"`
	Description string     `gorm:"type:varchar(200);not null" json:"description" validate:"required,max=200"`
	AmountCents int64      `gorm:"not null" json:"amount_cents" validate:"gt=0"`
	PaidAt      *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
