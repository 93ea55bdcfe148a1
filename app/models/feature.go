package models

import "time"

// Feature is a catalog entry for an independently toggleable capability.
// Plans reference features; the entitlement resolver expands a plan into the
// set of feature codes checked throughout the app.
type Feature struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"code" validate:"required,min=2,max=100"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Category  string    `gorm:"type:varchar(100);index" json:"category"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
