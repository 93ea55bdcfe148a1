package preregistration

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/festaflow/festaflow/app/models"
	"gorm.io/gorm"
)

// ConversionResult reports what a successful conversion produced.
type ConversionResult struct {
	PreRegistration *models.PreRegistration `json:"pre_registration"`
	Client          *models.Client          `json:"client"`
	Event           *models.Event           `json:"event"`
	ClientReused    bool                    `json:"client_reused"`
	ServicesCopied  int                     `json:"services_copied"`
	ServicesSkipped int                     `json:"services_skipped"`
}

// conversionStore is the data surface the converter runs against.
// createConversion must be atomic: either the client (when new), the event
// and every service row land together, or none of them do.
type conversionStore interface {
	ownedPreRegistration(userID, id uint) (*models.PreRegistration, error)
	clientByEmail(userID uint, email string) (*models.Client, error)
	eventTypeIDByName(userID uint, name string) (uint, error)
	serviceType(userID, id uint) (*models.ServiceType, error)
	createConversion(client *models.Client, newClient bool, event *models.Event, services []models.EventService) error
	markConverted(pre *models.PreRegistration, updates map[string]interface{}) error
}

// Convert materializes a filled pre-registration into a Client + Event pair
// exactly once. Preconditions are checked in order, each failing fast with
// its own error. Client, event and copied services are written in one
// transaction; the flip to CONVERTIDO is the LAST write, after that
// transaction committed, so a crash mid-conversion leaves the record
// re-attemptable instead of falsely converted. A retry after the commit but
// before the flip re-resolves the client by email but creates a second
// event; that gap is inherited behavior and deliberately not papered over
// here.
func (s *Service) Convert(userID, id uint) (*ConversionResult, error) {
	pre, err := s.store.ownedPreRegistration(userID, id)
	if err != nil {
		return nil, err
	}
	if pre.Status != models.PreRegistrationStatusFilled {
		if pre.Status == models.PreRegistrationStatusConverted {
			return nil, fmt.Errorf("pré-cadastro %d já foi convertido", pre.ID)
		}
		return nil, fmt.Errorf("pré-cadastro %d não está preenchido (status %s)", pre.ID, pre.Status)
	}
	if strings.TrimSpace(pre.ClientEmail) == "" {
		return nil, errors.New("pré-cadastro sem e-mail do cliente")
	}
	if strings.TrimSpace(pre.EventDateRaw) == "" {
		return nil, errors.New("pré-cadastro sem data do evento")
	}
	if strings.TrimSpace(pre.Venue) == "" {
		return nil, errors.New("pré-cadastro sem local do evento")
	}
	if strings.TrimSpace(pre.Address) == "" {
		return nil, errors.New("pré-cadastro sem endereço do evento")
	}
	if strings.TrimSpace(pre.EventType) == "" {
		return nil, errors.New("pré-cadastro sem tipo de evento")
	}

	eventDate, err := NormalizeEventDate(pre.EventDateRaw)
	if err != nil {
		return nil, err
	}

	client, reused, err := s.resolveClient(pre)
	if err != nil {
		return nil, err
	}

	// Event creation here bypasses plan-limit validation on purpose:
	// conversion continues an already-approved intake.
	dueDate := DefaultPaymentDueDate(eventDate)
	event := &models.Event{
		UserID:            pre.UserID,
		Title:             fmt.Sprintf("%s - %s", pre.EventType, pre.ClientName),
		Date:              eventDate,
		Venue:             pre.Venue,
		Address:           pre.Address,
		GuestCount:        pre.GuestCount,
		Status:            models.EventStatusScheduled,
		TotalCents:        0,
		PaymentDueDate:    &dueDate,
		Notes:             pre.Notes,
		PreRegistrationID: &pre.ID,
	}
	if typeID, err := s.store.eventTypeIDByName(pre.UserID, strings.TrimSpace(pre.EventType)); err == nil && typeID != 0 {
		event.EventTypeID = &typeID
	}

	services, skipped := s.collectServices(pre)

	if err := s.store.createConversion(client, !reused, event, services); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.PreRegistrationStatusConverted,
		"event_id":     event.ID,
		"client_id":    client.ID,
		"converted_at": now,
	}
	if err := s.store.markConverted(pre, updates); err != nil {
		return nil, fmt.Errorf("evento criado mas pré-cadastro não atualizado: %w", err)
	}
	pre.Status = models.PreRegistrationStatusConverted
	pre.EventID = &event.ID
	pre.ClientID = &client.ID
	pre.ConvertedAt = &now

	return &ConversionResult{
		PreRegistration: pre,
		Client:          client,
		Event:           event,
		ClientReused:    reused,
		ServicesCopied:  len(services),
		ServicesSkipped: skipped,
	}, nil
}

// resolveClient reuses an existing client matched by normalized e-mail
// within the tenant, or prepares a new one from the pre-registration
// fields. New clients are not persisted here; they land inside the
// conversion transaction.
func (s *Service) resolveClient(pre *models.PreRegistration) (*models.Client, bool, error) {
	email := models.NormalizeEmail(pre.ClientEmail)

	existing, err := s.store.clientByEmail(pre.UserID, email)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	return &models.Client{
		UserID:  pre.UserID,
		Name:    pre.ClientName,
		Email:   email,
		Phone:   pre.ClientPhone,
		Address: pre.ClientAddress,
		City:    pre.ClientCity,
		State:   pre.ClientState,
	}, false, nil
}

// collectServices resolves every non-removed service reference into an
// event service row. A reference to a missing or foreign service type is
// logged and skipped, never fatal.
func (s *Service) collectServices(pre *models.PreRegistration) (services []models.EventService, skipped int) {
	for _, svc := range pre.Services {
		if svc.Removed {
			continue
		}
		serviceType, err := s.store.serviceType(pre.UserID, svc.ServiceTypeID)
		if err != nil {
			log.Printf("conversion of pre-registration %d: service type %d skipped: %v", pre.ID, svc.ServiceTypeID, err)
			skipped++
			continue
		}
		services = append(services, models.EventService{
			UserID:        pre.UserID,
			ServiceTypeID: serviceType.ID,
			Description:   serviceType.Name,
			PriceCents:    serviceType.DefaultPriceCents,
			Quantity:      1,
		})
	}
	return services, skipped
}

// gormConversionStore is the production conversionStore.
type gormConversionStore struct {
	db *gorm.DB
}

func (g gormConversionStore) ownedPreRegistration(userID, id uint) (*models.PreRegistration, error) {
	var pre models.PreRegistration
	err := g.db.Preload("Services").Where("id = ? AND user_id = ?", id, userID).First(&pre).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pre, nil
}

func (g gormConversionStore) clientByEmail(userID uint, email string) (*models.Client, error) {
	var client models.Client
	if err := g.db.Where("user_id = ? AND email = ?", userID, email).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (g gormConversionStore) eventTypeIDByName(userID uint, name string) (uint, error) {
	var et models.EventType
	if err := g.db.Where("user_id = ? AND name = ?", userID, name).First(&et).Error; err != nil {
		return 0, err
	}
	return et.ID, nil
}

func (g gormConversionStore) serviceType(userID, id uint) (*models.ServiceType, error) {
	var st models.ServiceType
	if err := g.db.Where("id = ? AND user_id = ?", id, userID).First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (g gormConversionStore) createConversion(client *models.Client, newClient bool, event *models.Event, services []models.EventService) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		if newClient {
			if err := tx.Create(client).Error; err != nil {
				return fmt.Errorf("falha ao criar cliente: %w", err)
			}
		}
		event.ClientID = client.ID
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("falha ao criar evento: %w", err)
		}
		for i := range services {
			services[i].EventID = event.ID
			if err := tx.Create(&services[i]).Error; err != nil {
				return fmt.Errorf("falha ao copiar serviço %d: %w", services[i].ServiceTypeID, err)
			}
		}
		return nil
	})
}

func (g gormConversionStore) markConverted(pre *models.PreRegistration, updates map[string]interface{}) error {
	return g.db.Model(pre).Updates(updates).Error
}
