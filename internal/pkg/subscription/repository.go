package subscription

import (
	"time"

	"github.com/festaflow/festaflow/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the reconciler and the
// legacy migration.
type Repository interface {
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetSubscriptionByUserID(userID uint) (*models.Subscription, error)
	GetSubscriptionBySubscriberCode(code string) (*models.Subscription, error)
	GetSubscriptionByID(id uint) (*models.Subscription, error)
	GetPlanByID(id uint) (*models.Plan, error)
	GetPlanByHotmartCode(code string) (*models.Plan, error)
	UpsertSubscription(sub *models.Subscription) error
	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	ListUsersWithSubscriptions() ([]models.User, error)
	ClearLegacyFields(userID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a subscription repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) GetSubscriptionByUserID(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriptionBySubscriberCode(code string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("hotmart_subscriber_code = ?", code).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriptionByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetPlanByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Preload("Features").First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetPlanByHotmartCode(code string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Preload("Features").Where("hotmart_code = ?", code).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) UpsertSubscription(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id",
			"plan_name",
			"plan_hotmart_code",
			"hotmart_subscriber_code",
			"status",
			"payment_up_to_date",
			"expires_at",
			"next_charge_at",
			"enabled_features",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("user_id = ?", sub.UserID).First(sub).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) ListUsersWithSubscriptions() ([]models.User, error) {
	var users []models.User
	err := r.db.Preload("Subscription").Find(&users).Error
	return users, err
}

// ClearLegacyFields nulls the flattened subscription columns. Called only
// after the consolidated row is confirmed persisted.
func (r *gormRepository) ClearLegacyFields(userID uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"legacy_plano_id":                 nil,
		"legacy_assinatura_id":            nil,
		"legacy_assinatura_status":        "",
		"legacy_hotmart_subscriber_code":  "",
		"legacy_expires_at":               nil,
		"legacy_next_charge_at":           nil,
		"legacy_payment_up_to_date":       nil,
	}).Error
}
