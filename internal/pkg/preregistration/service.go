package preregistration

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/internal/pkg/env"
	"github.com/festaflow/festaflow/internal/pkg/mail"
	"github.com/festaflow/festaflow/internal/pkg/shortener"
	"gorm.io/gorm"
)

const (
	// Default public-link lifetime.
	defaultLinkTTL = 7 * 24 * time.Hour
	tokenLength    = 32
)

var (
	ErrNotFound        = errors.New("pré-cadastro não encontrado")
	ErrExpired         = errors.New("pré-cadastro expirado")
	ErrImmutable       = errors.New("pré-cadastro convertido é imutável")
	ErrAlreadyFilled   = errors.New("pré-cadastro já preenchido")
	ErrInvalidTransfer = errors.New("transição de status inválida")
)

// Service drives the public intake lifecycle: link creation, public
// fill-in, ignore/renew and deletion. Conversion lives in convert.go.
type Service struct {
	db    *gorm.DB
	store conversionStore
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, store: gormConversionStore{db: db}}
}

// CreateLink issues a new token-addressed pre-registration for the tenant
// and optionally mails the public URL to the prospect.
func (s *Service) CreateLink(userID uint, prospectEmail string, ttl time.Duration) (*models.PreRegistration, error) {
	token, err := shortener.GenerateSecureSlug(tokenLength)
	if err != nil {
		return nil, fmt.Errorf("falha ao gerar token: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultLinkTTL
	}

	pre := &models.PreRegistration{
		UserID:      userID,
		Token:       token,
		Status:      models.PreRegistrationStatusPending,
		ExpiresAt:   time.Now().Add(ttl),
		ClientEmail: models.NormalizeEmail(prospectEmail),
	}
	if err := s.db.Create(pre).Error; err != nil {
		return nil, err
	}

	if pre.ClientEmail != "" {
		go s.sendLinkEmail(pre)
	}
	return pre, nil
}

func (s *Service) sendLinkEmail(pre *models.PreRegistration) {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	link := fmt.Sprintf("%s/pre-cadastro/%s", base, pre.Token)
	body := fmt.Sprintf(
		"<p>Olá!</p><p>Preencha o formulário de pré-cadastro do seu evento pelo link abaixo:</p><p><a href=%q>%s</a></p>",
		link, link,
	)
	if err := mail.SendMail(pre.ClientEmail, "Pré-cadastro do seu evento", body); err != nil {
		log.Printf("pre-registration %d: link email failed: %v", pre.ID, err)
	}
}

// GetByToken fetches a pre-registration for the public form, lazily marking
// it EXPIRADO when past its deadline. There is no background sweeper; the
// expiration is applied on read.
func (s *Service) GetByToken(token string) (*models.PreRegistration, error) {
	var pre models.PreRegistration
	err := s.db.Preload("Services").Where("token = ?", strings.TrimSpace(token)).First(&pre).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if pre.Status == models.PreRegistrationStatusPending && pre.IsExpired(time.Now()) {
		pre.Status = models.PreRegistrationStatusExpired
		if err := s.db.Model(&pre).Update("status", pre.Status).Error; err != nil {
			return nil, err
		}
	}
	return &pre, nil
}

// FillInput is the payload of the public form submission.
type FillInput struct {
	ClientName    string `json:"client_name" validate:"required,min=2,max=150"`
	ClientEmail   string `json:"client_email" validate:"required,email,max=200"`
	ClientPhone   string `json:"client_phone" validate:"max=30"`
	ClientAddress string `json:"client_address" validate:"max=255"`
	ClientCity    string `json:"client_city" validate:"max=100"`
	ClientState   string `json:"client_state" validate:"max=50"`
	EventDate     string `json:"event_date" validate:"required"`
	Venue         string `json:"venue" validate:"required,max=200"`
	Address       string `json:"address" validate:"required,max=255"`
	EventType     string `json:"event_type" validate:"required,max=100"`
	GuestCount    int    `json:"guest_count" validate:"gte=0"`
	Notes         string `json:"notes"`
	ServiceIDs    []uint `json:"service_ids"`
}

// Fill stores the prospect's answers and moves the record to PREENCHIDO.
// Only PENDENTE records within their lifetime accept a submission.
func (s *Service) Fill(token string, in FillInput) (*models.PreRegistration, error) {
	pre, err := s.GetByToken(token)
	if err != nil {
		return nil, err
	}
	switch pre.Status {
	case models.PreRegistrationStatusPending:
		// ok
	case models.PreRegistrationStatusExpired:
		return nil, ErrExpired
	case models.PreRegistrationStatusFilled:
		return nil, ErrAlreadyFilled
	default:
		return nil, ErrInvalidTransfer
	}

	// Reject obviously bad dates at submission time, not at conversion.
	if _, err := NormalizeEventDate(in.EventDate); err != nil {
		return nil, err
	}

	now := time.Now()
	pre.ClientName = strings.TrimSpace(in.ClientName)
	pre.ClientEmail = models.NormalizeEmail(in.ClientEmail)
	pre.ClientPhone = strings.TrimSpace(in.ClientPhone)
	pre.ClientAddress = strings.TrimSpace(in.ClientAddress)
	pre.ClientCity = strings.TrimSpace(in.ClientCity)
	pre.ClientState = strings.TrimSpace(in.ClientState)
	pre.EventDateRaw = strings.TrimSpace(in.EventDate)
	pre.Venue = strings.TrimSpace(in.Venue)
	pre.Address = strings.TrimSpace(in.Address)
	pre.EventType = strings.TrimSpace(in.EventType)
	pre.GuestCount = in.GuestCount
	pre.Notes = in.Notes
	pre.Status = models.PreRegistrationStatusFilled
	pre.FilledAt = &now

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(pre).Error; err != nil {
			return err
		}
		for _, sid := range in.ServiceIDs {
			svc := models.PreRegistrationService{PreRegistrationID: pre.ID, ServiceTypeID: sid}
			if err := tx.Create(&svc).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pre, nil
}

// Ignore marks an unconverted record IGNORADO.
func (s *Service) Ignore(userID, id uint) (*models.PreRegistration, error) {
	pre, err := s.getOwned(userID, id)
	if err != nil {
		return nil, err
	}
	if pre.Status == models.PreRegistrationStatusConverted {
		return nil, ErrImmutable
	}
	pre.Status = models.PreRegistrationStatusIgnored
	if err := s.db.Model(pre).Update("status", pre.Status).Error; err != nil {
		return nil, err
	}
	return pre, nil
}

// Renew extends the deadline and re-opens EXPIRADO/IGNORADO records.
func (s *Service) Renew(userID, id uint, ttl time.Duration) (*models.PreRegistration, error) {
	pre, err := s.getOwned(userID, id)
	if err != nil {
		return nil, err
	}
	if pre.Status == models.PreRegistrationStatusConverted {
		return nil, ErrImmutable
	}
	if ttl <= 0 {
		ttl = defaultLinkTTL
	}
	pre.ExpiresAt = time.Now().Add(ttl)
	if pre.Status == models.PreRegistrationStatusExpired || pre.Status == models.PreRegistrationStatusIgnored {
		pre.Status = models.PreRegistrationStatusPending
	}
	if err := s.db.Model(pre).Updates(map[string]interface{}{
		"expires_at": pre.ExpiresAt,
		"status":     pre.Status,
	}).Error; err != nil {
		return nil, err
	}
	return pre, nil
}

// Delete removes an unconverted record. CONVERTIDO records may never be
// deleted; their back-references anchor the created client and event.
func (s *Service) Delete(userID, id uint) error {
	pre, err := s.getOwned(userID, id)
	if err != nil {
		return err
	}
	if pre.Status == models.PreRegistrationStatusConverted {
		return ErrImmutable
	}
	return s.db.Delete(pre).Error
}

// ListByUser returns the tenant's pre-registrations, newest first.
func (s *Service) ListByUser(userID uint) ([]models.PreRegistration, error) {
	var pres []models.PreRegistration
	err := s.db.Preload("Services").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&pres).Error
	return pres, err
}

func (s *Service) getOwned(userID, id uint) (*models.PreRegistration, error) {
	var pre models.PreRegistration
	err := s.db.Preload("Services").Where("id = ? AND user_id = ?", id, userID).First(&pre).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pre, nil
}
