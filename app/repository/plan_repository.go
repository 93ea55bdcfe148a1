package repository

import (
	"strings"

	"github.com/festaflow/festaflow/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// CreatePlan creates a new plan in the database
func (r *planRepository) CreatePlan(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// UpdatePlan updates an existing plan
func (r *planRepository) UpdatePlan(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// GetPlanByID retrieves a plan with its features preloaded
func (r *planRepository) GetPlanByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Preload("Features").First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetPlanByHotmartCode resolves a Hotmart offer code to its plan
func (r *planRepository) GetPlanByHotmartCode(code string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Preload("Features").Where("hotmart_code = ?", strings.TrimSpace(code)).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListPlans retrieves all plans, optionally only active ones
func (r *planRepository) ListPlans(activeOnly bool) ([]models.Plan, error) {
	var plans []models.Plan
	query := r.db.Preload("Features").Order("price_cents ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&plans).Error
	return plans, err
}

// ReplacePlanFeatures replaces a plan's feature associations wholesale
func (r *planRepository) ReplacePlanFeatures(planID uint, featureIDs []uint) error {
	var features []models.Feature
	if len(featureIDs) > 0 {
		if err := r.db.Where("id IN ?", featureIDs).Find(&features).Error; err != nil {
			return err
		}
	}
	plan := models.Plan{ID: planID}
	return r.db.Model(&plan).Association("Features").Replace(features)
}

// DeleteAllPlans hard deletes every plan and its feature associations.
// Used only by the seed endpoint's reset mode.
func (r *planRepository) DeleteAllPlans() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM plan_features").Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(&models.Plan{}).Error
	})
}

// CreateFeature creates a new feature in the database
func (r *planRepository) CreateFeature(feature *models.Feature) error {
	return r.db.Create(feature).Error
}

// UpdateFeature updates an existing feature
func (r *planRepository) UpdateFeature(feature *models.Feature) error {
	return r.db.Save(feature).Error
}

// GetFeatureByCode retrieves a feature by its unique code
func (r *planRepository) GetFeatureByCode(code string) (*models.Feature, error) {
	var feature models.Feature
	err := r.db.Where("code = ?", strings.TrimSpace(code)).First(&feature).Error
	if err != nil {
		return nil, err
	}
	return &feature, nil
}

// ListFeatures retrieves all features, optionally only active ones
func (r *planRepository) ListFeatures(activeOnly bool) ([]models.Feature, error) {
	var features []models.Feature
	query := r.db.Order("sort_order ASC, code ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&features).Error
	return features, err
}

// DeleteAllFeatures hard deletes every feature. Seed reset mode only.
func (r *planRepository) DeleteAllFeatures() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM plan_features").Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(&models.Feature{}).Error
	})
}
