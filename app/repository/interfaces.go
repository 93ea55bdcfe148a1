package repository

import (
	"time"

	"github.com/festaflow/festaflow/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByIDWithSubscription(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ClientRepository defines the interface for client-related database operations
type ClientRepository interface {
	Create(client *models.Client) error
	GetByID(userID, id uint) (*models.Client, error)
	GetByEmail(userID uint, email string) (*models.Client, error)
	Update(client *models.Client) error
	Delete(userID, id uint) error
	ListByUser(userID uint, offset, limit int) ([]models.Client, error)
	CountByUser(userID uint) (int64, error)
	Search(userID uint, query string) ([]models.Client, error)
}

// EventRepository defines the interface for event-related database operations.
// Payments, costs and service rows are owned by the event and managed here.
type EventRepository interface {
	Create(event *models.Event) error
	GetByID(userID, id uint) (*models.Event, error)
	Update(event *models.Event) error
	Delete(userID, id uint) error
	ListByUser(userID uint, offset, limit int) ([]models.Event, error)
	ListByUserBetween(userID uint, from, to time.Time) ([]models.Event, error)
	CountByUser(userID uint) (int64, error)
	CountByUserInMonth(userID uint, ref time.Time) (int64, error)

	AddPayment(payment *models.Payment) error
	UpdatePayment(payment *models.Payment) error
	DeletePayment(userID, eventID, paymentID uint) error

	AddCost(cost *models.Cost) error
	UpdateCost(cost *models.Cost) error
	DeleteCost(userID, eventID, costID uint) error

	AddService(service *models.EventService) error
	DeleteService(userID, eventID, serviceID uint) error
}

// PlanRepository defines the interface for the plan/feature catalog. Writes
// happen only through administrative tooling and the seed endpoint.
type PlanRepository interface {
	CreatePlan(plan *models.Plan) error
	UpdatePlan(plan *models.Plan) error
	GetPlanByID(id uint) (*models.Plan, error)
	GetPlanByHotmartCode(code string) (*models.Plan, error)
	ListPlans(activeOnly bool) ([]models.Plan, error)
	ReplacePlanFeatures(planID uint, featureIDs []uint) error
	DeleteAllPlans() error

	CreateFeature(feature *models.Feature) error
	UpdateFeature(feature *models.Feature) error
	GetFeatureByCode(code string) (*models.Feature, error)
	ListFeatures(activeOnly bool) ([]models.Feature, error)
	DeleteAllFeatures() error
}

// CatalogRepository groups the four per-tenant catalog entities. They share
// the soft activate/deactivate lifecycle.
type CatalogRepository interface {
	CreateEventType(et *models.EventType) error
	ListEventTypes(userID uint, activeOnly bool) ([]models.EventType, error)
	SetEventTypeActive(userID, id uint, active bool) error

	CreateCostType(ct *models.CostType) error
	ListCostTypes(userID uint, activeOnly bool) ([]models.CostType, error)
	SetCostTypeActive(userID, id uint, active bool) error

	CreateServiceType(st *models.ServiceType) error
	ListServiceTypes(userID uint, activeOnly bool) ([]models.ServiceType, error)
	SetServiceTypeActive(userID, id uint, active bool) error

	CreateEntryChannel(ec *models.EntryChannel) error
	ListEntryChannels(userID uint, activeOnly bool) ([]models.EntryChannel, error)
	SetEntryChannelActive(userID, id uint, active bool) error
}

// Repositories holds all repository instances
type Repositories struct {
	User    UserRepository
	Client  ClientRepository
	Event   EventRepository
	Plan    PlanRepository
	Catalog CatalogRepository
}

// NewRepositories creates all repositories with the given database connection
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Client:  NewClientRepository(db),
		Event:   NewEventRepository(db),
		Plan:    NewPlanRepository(db),
		Catalog: NewCatalogRepository(db),
	}
}
