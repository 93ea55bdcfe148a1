package models

import "time"

const (
	PlanIntervalMonthly = "mensal"
	PlanIntervalYearly  = "anual"
)

// Plan is a priced subscription tier granting a fixed set of features and
// numeric resource limits. Plans are edited through admin tooling only and
// are referenced, never owned, by subscriptions.
type Plan struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	HotmartCode       string    `gorm:"type:varchar(100);uniqueIndex" json:"hotmart_code"`
	PriceCents        int64     `gorm:"not null;default:0" json:"price_cents" validate:"gte=0"`
	BillingInterval   string    `gorm:"type:varchar(16);not null;default:'mensal'" json:"billing_interval" validate:"oneof=mensal anual"`
	IsActive          bool      `gorm:"default:true;index" json:"is_active"`
	IsHighlighted     bool      `gorm:"default:false" json:"is_highlighted"`
	MaxEventsPerMonth *int      `gorm:"default:null" json:"max_events_per_month,omitempty"`
	MaxClients        *int      `gorm:"default:null" json:"max_clients,omitempty"`
	MaxUsers          *int      `gorm:"default:null" json:"max_users,omitempty"`
	MaxStorageGB      *int      `gorm:"default:null" json:"max_storage_gb,omitempty"`
	Features          []Feature `gorm:"many2many:plan_features" json:"features,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FeatureCodes returns the codes of the plan's active features.
func (p *Plan) FeatureCodes() []string {
	codes := make([]string, 0, len(p.Features))
	for _, f := range p.Features {
		if f.IsActive {
			codes = append(codes, f.Code)
		}
	}
	return codes
}
