package models

import "time"

const (
	PaymentStatusPending  = "PENDENTE"
	PaymentStatusPaid     = "PAGO"
	PaymentStatusOverdue  = "ATRASADO"
	PaymentStatusRefunded = "ESTORNADO"
)

// Payment is an installment received (or expected) for an event.
type Payment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EventID     uint       `gorm:"not null;index" json:"event_id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	AmountCents int64      `gorm:"not null" json:"amount_cents" validate:"gt=0"`
	Method      string     `gorm:"type:varchar(50)" json:"method" validate:"max=50"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDENTE'" json:"status"`
	DueDate     *time.Time `gorm:"type:timestamp;default:null" json:"due_date,omitempty"`
	PaidAt      *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	Notes       string     `gorm:"type:varchar(255)" json:"notes" validate:"max=255"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
