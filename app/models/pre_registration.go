package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PreRegistrationStatusPending   = "PENDENTE"
	PreRegistrationStatusFilled    = "PREENCHIDO"
	PreRegistrationStatusConverted = "CONVERTIDO"
	PreRegistrationStatusExpired   = "EXPIRADO"
	PreRegistrationStatusIgnored   = "IGNORADO"
)

// PreRegistration is a token-addressable, time-limited public intake form.
// The owner creates a link, the prospective client fills it, and the owner
// later converts it into a Client + Event pair. Conversion is permitted only
// from PREENCHIDO; once CONVERTIDO the record is immutable and undeletable.
type PreRegistration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"token"`
	Status    string    `gorm:"type:varchar(20);not null;default:'PENDENTE';index" json:"status"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	// Client-supplied fields.
	ClientName    string `gorm:"type:varchar(150)" json:"client_name" validate:"max=150"`
	ClientEmail   string `gorm:"type:varchar(200)" json:"client_email" validate:"omitempty,email,max=200"`
	ClientPhone   string `gorm:"type:varchar(30)" json:"client_phone" validate:"max=30"`
	ClientAddress string `gorm:"type:varchar(255)" json:"client_address" validate:"max=255"`
	ClientCity    string `gorm:"type:varchar(100)" json:"client_city" validate:"max=100"`
	ClientState   string `gorm:"type:varchar(50)" json:"client_state" validate:"max=50"`

	// Event-intent fields. EventDateRaw keeps whatever the form sent
	// (date or ISO string); the converter normalizes it to local midnight.
	EventDateRaw string `gorm:"type:varchar(40)" json:"event_date"`
	Venue        string `gorm:"type:varchar(200)" json:"venue" validate:"max=200"`
	Address      string `gorm:"type:varchar(255)" json:"address" validate:"max=255"`
	EventType    string `gorm:"type:varchar(100)" json:"event_type" validate:"max=100"`
	GuestCount   int    `gorm:"default:0" json:"guest_count" validate:"gte=0"`
	Notes        string `gorm:"type:text" json:"notes"`

	Services []PreRegistrationService `gorm:"foreignKey:PreRegistrationID" json:"services,omitempty"`

	// Back-references, populated only after conversion.
	EventID     *uint      `gorm:"default:null" json:"event_id,omitempty"`
	ClientID    *uint      `gorm:"default:null" json:"client_id,omitempty"`
	ConvertedAt *time.Time `gorm:"type:timestamp;default:null" json:"converted_at,omitempty"`

	FilledAt  *time.Time     `gorm:"type:timestamp;default:null" json:"filled_at,omitempty"`
	ViewCount int            `gorm:"default:0" json:"view_count"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PreRegistrationService is a service the prospect asked for on the public
// form. Removed entries stay on the record but are skipped by the converter.
type PreRegistrationService struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	PreRegistrationID uint      `gorm:"not null;index" json:"pre_registration_id"`
	ServiceTypeID     uint      `gorm:"not null" json:"service_type_id"`
	Removed           bool      `gorm:"default:false" json:"removed"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsExpired reports whether the record is past its expiration timestamp.
func (p *PreRegistration) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
