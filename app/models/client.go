package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Client is a per-tenant customer record. Lookups by e-mail always go
// through NormalizeEmail so the pre-registration converter can dedup.
type Client struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	Name           string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email          string         `gorm:"type:varchar(200);index" json:"email" validate:"omitempty,email,max=200"`
	Phone          string         `gorm:"type:varchar(30)" json:"phone" validate:"max=30"`
	Document       string         `gorm:"type:varchar(30)" json:"document" validate:"max=30"`
	Address        string         `gorm:"type:varchar(255)" json:"address" validate:"max=255"`
	City           string         `gorm:"type:varchar(100)" json:"city" validate:"max=100"`
	State          string         `gorm:"type:varchar(50)" json:"state" validate:"max=50"`
	EntryChannelID *uint          `gorm:"default:null" json:"entry_channel_id,omitempty"`
	Notes          string         `gorm:"type:text" json:"notes"`
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Client) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

// NormalizeEmail lower-cases and trims an e-mail for dedup lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
