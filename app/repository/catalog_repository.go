package repository

import (
	"github.com/festaflow/festaflow/app/models"
	"gorm.io/gorm"
)

// catalogRepository implements the CatalogRepository interface
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository instance
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// CreateEventType creates a new event type for the tenant
func (r *catalogRepository) CreateEventType(et *models.EventType) error {
	return r.db.Create(et).Error
}

// ListEventTypes lists the tenant's event types
func (r *catalogRepository) ListEventTypes(userID uint, activeOnly bool) ([]models.EventType, error) {
	var items []models.EventType
	err := r.listScoped(userID, activeOnly).Find(&items).Error
	return items, err
}

// SetEventTypeActive toggles an event type's active flag
func (r *catalogRepository) SetEventTypeActive(userID, id uint, active bool) error {
	return r.setActive(&models.EventType{}, userID, id, active)
}

// CreateCostType creates a new cost type for the tenant
func (r *catalogRepository) CreateCostType(ct *models.CostType) error {
	return r.db.Create(ct).Error
}

// ListCostTypes lists the tenant's cost types
func (r *catalogRepository) ListCostTypes(userID uint, activeOnly bool) ([]models.CostType, error) {
	var items []models.CostType
	err := r.listScoped(userID, activeOnly).Find(&items).Error
	return items, err
}

// SetCostTypeActive toggles a cost type's active flag
func (r *catalogRepository) SetCostTypeActive(userID, id uint, active bool) error {
	return r.setActive(&models.CostType{}, userID, id, active)
}

// CreateServiceType creates a new service type for the tenant
func (r *catalogRepository) CreateServiceType(st *models.ServiceType) error {
	return r.db.Create(st).Error
}

// ListServiceTypes lists the tenant's service types
func (r *catalogRepository) ListServiceTypes(userID uint, activeOnly bool) ([]models.ServiceType, error) {
	var items []models.ServiceType
	err := r.listScoped(userID, activeOnly).Find(&items).Error
	return items, err
}

// SetServiceTypeActive toggles a service type's active flag
func (r *catalogRepository) SetServiceTypeActive(userID, id uint, active bool) error {
	return r.setActive(&models.ServiceType{}, userID, id, active)
}

// CreateEntryChannel creates a new entry channel for the tenant
func (r *catalogRepository) CreateEntryChannel(ec *models.EntryChannel) error {
	return r.db.Create(ec).Error
}

// ListEntryChannels lists the tenant's entry channels
func (r *catalogRepository) ListEntryChannels(userID uint, activeOnly bool) ([]models.EntryChannel, error) {
	var items []models.EntryChannel
	err := r.listScoped(userID, activeOnly).Find(&items).Error
	return items, err
}

// SetEntryChannelActive toggles an entry channel's active flag
func (r *catalogRepository) SetEntryChannelActive(userID, id uint, active bool) error {
	return r.setActive(&models.EntryChannel{}, userID, id, active)
}

func (r *catalogRepository) listScoped(userID uint, activeOnly bool) *gorm.DB {
	query := r.db.Where("user_id = ?", userID).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	return query
}

func (r *catalogRepository) setActive(model interface{}, userID, id uint, active bool) error {
	res := r.db.Model(model).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
