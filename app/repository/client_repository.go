package repository

import (
	"strings"

	"github.com/festaflow/festaflow/app/models"
	"gorm.io/gorm"
)

// clientRepository implements the ClientRepository interface
type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository instance
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

// Create creates a new client in the database
func (r *clientRepository) Create(client *models.Client) error {
	client.Email = models.NormalizeEmail(client.Email)
	return r.db.Create(client).Error
}

// GetByID retrieves a client by id, scoped to the owning tenant
func (r *clientRepository) GetByID(userID, id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByEmail retrieves a client by normalized email within a tenant
func (r *clientRepository) GetByEmail(userID uint, email string) (*models.Client, error) {
	var client models.Client
	err := r.db.Where("user_id = ? AND email = ?", userID, models.NormalizeEmail(email)).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Update updates an existing client
func (r *clientRepository) Update(client *models.Client) error {
	client.Email = models.NormalizeEmail(client.Email)
	return r.db.Save(client).Error
}

// Delete soft deletes a client, scoped to the owning tenant
func (r *clientRepository) Delete(userID, id uint) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Client{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByUser retrieves a paginated list of the tenant's clients
func (r *clientRepository) ListByUser(userID uint, offset, limit int) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.Where("user_id = ?", userID).
		Order("name ASC").Offset(offset).Limit(limit).Find(&clients).Error
	return clients, err
}

// CountByUser returns the tenant's total client count
func (r *clientRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Client{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Search searches a tenant's clients by name, email or phone
func (r *clientRepository) Search(userID uint, query string) ([]models.Client, error) {
	var clients []models.Client
	pattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("user_id = ? AND (name LIKE ? OR email LIKE ? OR phone LIKE ?)",
		userID, pattern, pattern, pattern).
		Order("name ASC").Find(&clients).Error
	return clients, err
}
