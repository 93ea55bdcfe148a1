package models

import (
	"strings"
	"time"
)

// Canonical subscription statuses. Persisted values are the Portuguese forms;
// webhook payloads and legacy records may carry English synonyms which are
// normalized at the edge (see NormalizeSubscriptionStatus).
const (
	SubscriptionStatusActive    = "ATIVA"
	SubscriptionStatusTrial     = "TRIAL"
	SubscriptionStatusCancelled = "CANCELADA"
	SubscriptionStatusExpired   = "EXPIRADA"
	SubscriptionStatusSuspended = "SUSPENSA"
)

// Subscription binds a user to a plan plus the Hotmart billing metadata.
// There is at most one per user; it is never hard-deleted, only
// status-transitioned.
type Subscription struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	PlanID                uint       `gorm:"index" json:"plan_id"`
	PlanName              string     `gorm:"type:varchar(150)" json:"plan_name"`
	PlanHotmartCode       string     `gorm:"type:varchar(100);index" json:"plan_hotmart_code"`
	HotmartSubscriberCode string     `gorm:"type:varchar(100);index" json:"hotmart_subscriber_code"`
	Status                string     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentUpToDate       bool       `gorm:"default:true" json:"payment_up_to_date"`
	ExpiresAt             *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	NextChargeAt          *time.Time `gorm:"type:timestamp;default:null" json:"next_charge_at,omitempty"`
	EnabledFeatures       string     `gorm:"type:text" json:"enabled_features"` // JSON array of feature codes
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsEntitling reports whether the subscription status grants plan features.
func (s *Subscription) IsEntitling() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrial:
		return true
	default:
		return false
	}
}

// NormalizeSubscriptionStatus maps English/Portuguese status synonyms
// case-insensitively to the canonical enum. Unrecognized values map to ""
// rather than erroring; historical records carry all sorts of junk.
func NormalizeSubscriptionStatus(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ACTIVE", "ATIVA", "ATIVO":
		return SubscriptionStatusActive
	case "TRIAL", "TRIALING":
		return SubscriptionStatusTrial
	case "CANCELLED", "CANCELED", "CANCELADA", "CANCELADO":
		return SubscriptionStatusCancelled
	case "EXPIRED", "EXPIRADA", "EXPIRADO":
		return SubscriptionStatusExpired
	case "SUSPENDED", "SUSPENSA", "SUSPENSO", "PAST_DUE", "INADIMPLENTE":
		return SubscriptionStatusSuspended
	default:
		return ""
	}
}
