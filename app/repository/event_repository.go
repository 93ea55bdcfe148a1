package repository

import (
	"time"

	"github.com/festaflow/festaflow/app/models"
	"gorm.io/gorm"
)

// eventRepository implements the EventRepository interface
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository instance
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create creates a new event in the database
func (r *eventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

// GetByID retrieves an event with its nested records, scoped to the tenant
func (r *eventRepository) GetByID(userID, id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.Preload("Payments").Preload("Costs").Preload("Services").
		Where("id = ? AND user_id = ?", id, userID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Update updates an existing event
func (r *eventRepository) Update(event *models.Event) error {
	return r.db.Save(event).Error
}

// Delete soft deletes an event and hard deletes its nested records
func (r *eventRepository) Delete(userID, id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Event{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.Cost{}).Error; err != nil {
			return err
		}
		return tx.Where("event_id = ?", id).Delete(&models.EventService{}).Error
	})
}

// ListByUser retrieves a paginated list of the tenant's events, soonest first
func (r *eventRepository) ListByUser(userID uint, offset, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("user_id = ?", userID).
		Order("date ASC").Offset(offset).Limit(limit).Find(&events).Error
	return events, err
}

// ListByUserBetween retrieves the tenant's events within [from, to)
func (r *eventRepository) ListByUserBetween(userID uint, from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Preload("Payments").Preload("Costs").
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date ASC").Find(&events).Error
	return events, err
}

// CountByUser returns the tenant's total event count
func (r *eventRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountByUserInMonth counts the tenant's events in the calendar month of ref
func (r *eventRepository) CountByUserInMonth(userID uint, ref time.Time) (int64, error) {
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	var count int64
	err := r.db.Model(&models.Event{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, monthStart, monthEnd).
		Count(&count).Error
	return count, err
}

// AddPayment records a payment installment under an event
func (r *eventRepository) AddPayment(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// UpdatePayment updates an existing payment
func (r *eventRepository) UpdatePayment(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// DeletePayment removes a payment, verifying event and tenant ownership
func (r *eventRepository) DeletePayment(userID, eventID, paymentID uint) error {
	return r.deleteNested(&models.Payment{}, userID, eventID, paymentID)
}

// AddCost records a cost entry under an event
func (r *eventRepository) AddCost(cost *models.Cost) error {
	return r.db.Create(cost).Error
}

// UpdateCost updates an existing cost entry
func (r *eventRepository) UpdateCost(cost *models.Cost) error {
	return r.db.Save(cost).Error
}

// DeleteCost removes a cost entry, verifying event and tenant ownership
func (r *eventRepository) DeleteCost(userID, eventID, costID uint) error {
	return r.deleteNested(&models.Cost{}, userID, eventID, costID)
}

// AddService attaches a contracted service to an event
func (r *eventRepository) AddService(service *models.EventService) error {
	return r.db.Create(service).Error
}

// DeleteService removes a contracted service from an event
func (r *eventRepository) DeleteService(userID, eventID, serviceID uint) error {
	return r.deleteNested(&models.EventService{}, userID, eventID, serviceID)
}

func (r *eventRepository) deleteNested(model interface{}, userID, eventID, id uint) error {
	res := r.db.Where("id = ? AND event_id = ? AND user_id = ?", id, eventID, userID).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
