package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	EventStatusScheduled = "AGENDADO"
	EventStatusConfirmed = "CONFIRMADO"
	EventStatusDone      = "CONCLUIDO"
	EventStatusCancelled = "CANCELADO"
)

// Event is the central per-tenant business record. Payments, costs and
// service associations are owned by the event and die with it.
type Event struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"not null;index" json:"user_id"`
	ClientID          uint           `gorm:"not null;index" json:"client_id"`
	EventTypeID       *uint          `gorm:"default:null" json:"event_type_id,omitempty"`
	Title             string         `gorm:"type:varchar(200)" json:"title" validate:"max=200"`
	Date              time.Time      `gorm:"not null;index" json:"date"`
	Venue             string         `gorm:"type:varchar(200);not null" json:"venue" validate:"required,max=200"`
	Address           string         `gorm:"type:varchar(255)" json:"address" validate:"max=255"`
	GuestCount        int            `gorm:"default:0" json:"guest_count" validate:"gte=0"`
	Status            string         `gorm:"type:varchar(20);not null;default:'AGENDADO';index" json:"status"`
	TotalCents        int64          `gorm:"not null;default:0" json:"total_cents"`
	PaymentDueDate    *time.Time     `gorm:"type:timestamp;default:null" json:"payment_due_date,omitempty"`
	Notes             string         `gorm:"type:text" json:"notes"`
	PreRegistrationID *uint          `gorm:"default:null" json:"pre_registration_id,omitempty"`
	Payments          []Payment      `gorm:"foreignKey:EventID" json:"payments,omitempty"`
	Costs             []Cost         `gorm:"foreignKey:EventID" json:"costs,omitempty"`
	Services          []EventService `gorm:"foreignKey:EventID" json:"services,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Event) Validate() error {
	v := validator.New()

	return v.Struct(e)
}
