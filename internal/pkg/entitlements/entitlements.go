package entitlements

import (
	"errors"
	"strings"
	"time"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/internal/pkg/subscription"
	"gorm.io/gorm"
)

// Resource identifiers for numeric plan limits.
const (
	ResourceEventsPerMonth = "events_per_month"
	ResourceClients        = "clients"
	ResourceUsers          = "users"
	ResourceStorageGB      = "storage_gb"
)

// Limit is a resolved numeric cap. Unlimited means no cap applies and Value
// is meaningless.
type Limit struct {
	Value     int
	Unlimited bool
}

// Resolver answers "does user U have feature F" and "what cap applies to
// resource R" from the user's subscription + plan. Read-only: it never
// writes; the reconciler refreshes the cached feature set.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// HasFeature resolves a feature check for a user id. Admin-role users
// bypass entitlements entirely; they never carry a subscription.
func (r *Resolver) HasFeature(userID uint, code string) (bool, error) {
	user, sub, plan, err := r.load(userID)
	if err != nil {
		return false, err
	}
	if user.IsAdmin() {
		return true, nil
	}
	return FeatureEnabled(sub, plan, code), nil
}

// LimitFor resolves the numeric cap for a resource. Absent caps and admin
// users resolve to unlimited.
func (r *Resolver) LimitFor(userID uint, resource string) (Limit, error) {
	user, sub, plan, err := r.load(userID)
	if err != nil {
		return Limit{}, err
	}
	if user.IsAdmin() {
		return Limit{Unlimited: true}, nil
	}
	if sub == nil || !sub.IsEntitling() || plan == nil {
		return Limit{Value: 0}, nil
	}
	return LimitFromPlan(plan, resource), nil
}

// CanCreateClient checks the client cap against the tenant's current count.
// bypassLimits is set by the pre-registration converter, which is an
// administrative continuation of an approved intake.
func (r *Resolver) CanCreateClient(userID uint, bypassLimits bool) (bool, error) {
	if bypassLimits {
		return true, nil
	}
	limit, err := r.LimitFor(userID, ResourceClients)
	if err != nil {
		return false, err
	}
	if limit.Unlimited {
		return true, nil
	}
	var count int64
	if err := r.db.Model(&models.Client{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count < int64(limit.Value), nil
}

// CanCreateEvent checks the events-per-month cap against events already
// booked in the month of the candidate date.
func (r *Resolver) CanCreateEvent(userID uint, eventDate time.Time, bypassLimits bool) (bool, error) {
	if bypassLimits {
		return true, nil
	}
	limit, err := r.LimitFor(userID, ResourceEventsPerMonth)
	if err != nil {
		return false, err
	}
	if limit.Unlimited {
		return true, nil
	}
	monthStart := time.Date(eventDate.Year(), eventDate.Month(), 1, 0, 0, 0, 0, eventDate.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	var count int64
	if err := r.db.Model(&models.Event{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, monthStart, monthEnd).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count < int64(limit.Value), nil
}

// FeatureEnabled is the pure feature check: entitling subscription status
// plus the code in the cached enabled list, falling back to expanding the
// plan's feature catalog when the cache is empty.
func FeatureEnabled(sub *models.Subscription, plan *models.Plan, code string) bool {
	code = strings.TrimSpace(code)
	if code == "" || sub == nil || !sub.IsEntitling() {
		return false
	}
	if codes := subscription.DecodeFeatureCodes(sub.EnabledFeatures); codes != nil {
		for _, c := range codes {
			if strings.EqualFold(c, code) {
				return true
			}
		}
		return false
	}
	if plan == nil {
		return false
	}
	for _, c := range plan.FeatureCodes() {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

// LimitFromPlan is the pure cap lookup; nil caps mean unlimited.
func LimitFromPlan(plan *models.Plan, resource string) Limit {
	var max *int
	switch resource {
	case ResourceEventsPerMonth:
		max = plan.MaxEventsPerMonth
	case ResourceClients:
		max = plan.MaxClients
	case ResourceUsers:
		max = plan.MaxUsers
	case ResourceStorageGB:
		max = plan.MaxStorageGB
	}
	if max == nil {
		return Limit{Unlimited: true}
	}
	return Limit{Value: *max}
}

func (r *Resolver) load(userID uint) (*models.User, *models.Subscription, *models.Plan, error) {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return nil, nil, nil, err
	}
	if user.IsAdmin() {
		return &user, nil, nil, nil
	}

	var sub models.Subscription
	if err := r.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &user, nil, nil, nil
		}
		return nil, nil, nil, err
	}

	var plan models.Plan
	if sub.PlanID != 0 {
		if err := r.db.Preload("Features").First(&plan, sub.PlanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &user, &sub, nil, nil
			}
			return nil, nil, nil, err
		}
		return &user, &sub, &plan, nil
	}
	return &user, &sub, nil, nil
}
