package subscription

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/internal/pkg/hotmart"
)

// fakeRepository is an in-memory Repository for exercising the reconciler
// and the legacy migration without a database.
type fakeRepository struct {
	users         map[uint]*models.User
	subscriptions map[uint]*models.Subscription // keyed by user id
	plans         map[string]*models.Plan       // keyed by hotmart code
	webhookEvents map[string]*models.WebhookEvent
	nextSubID     uint
	failUpsert    bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:         make(map[uint]*models.User),
		subscriptions: make(map[uint]*models.Subscription),
		plans:         make(map[string]*models.Plan),
		webhookEvents: make(map[string]*models.WebhookEvent),
		nextSubID:     1,
	}
}

func (f *fakeRepository) GetUserByEmail(email string) (*models.User, error) {
	normalized := models.NormalizeEmail(email)
	for _, u := range f.users {
		if models.NormalizeEmail(u.Email) == normalized {
			copy := *u
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetUserByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *u
	return &copy, nil
}

func (f *fakeRepository) GetSubscriptionByUserID(userID uint) (*models.Subscription, error) {
	s, ok := f.subscriptions[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s
	return &copy, nil
}

func (f *fakeRepository) GetSubscriptionBySubscriberCode(code string) (*models.Subscription, error) {
	for _, s := range f.subscriptions {
		if s.HotmartSubscriberCode == code {
			copy := *s
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetSubscriptionByID(id uint) (*models.Subscription, error) {
	for _, s := range f.subscriptions {
		if s.ID == id {
			copy := *s
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetPlanByID(id uint) (*models.Plan, error) {
	for _, p := range f.plans {
		if p.ID == id {
			copy := *p
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetPlanByHotmartCode(code string) (*models.Plan, error) {
	p, ok := f.plans[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *p
	return &copy, nil
}

func (f *fakeRepository) UpsertSubscription(sub *models.Subscription) error {
	if f.failUpsert {
		return gorm.ErrInvalidTransaction
	}
	if existing, ok := f.subscriptions[sub.UserID]; ok {
		sub.ID = existing.ID
	} else {
		sub.ID = f.nextSubID
		f.nextSubID++
	}
	copy := *sub
	f.subscriptions[sub.UserID] = &copy
	return nil
}

func (f *fakeRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	key := event.Provider + "/" + event.ProviderEventID
	if existing, ok := f.webhookEvents[key]; ok {
		copy := *existing
		return false, &copy, nil
	}
	event.ID = uint(len(f.webhookEvents) + 1)
	copy := *event
	f.webhookEvents[key] = &copy
	return true, event, nil
}

func (f *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	for _, e := range f.webhookEvents {
		if e.ID == id {
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListUsersWithSubscriptions() ([]models.User, error) {
	users := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		copy := *u
		if s, ok := f.subscriptions[u.ID]; ok {
			sc := *s
			copy.Subscription = &sc
		} else {
			copy.Subscription = nil
		}
		users = append(users, copy)
	}
	return users, nil
}

func (f *fakeRepository) ClearLegacyFields(userID uint) error {
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LegacyPlanID = nil
	u.LegacySubscriptionID = nil
	u.LegacyStatus = ""
	u.LegacyHotmartSubscriberCode = ""
	u.LegacyExpiresAt = nil
	u.LegacyNextChargeAt = nil
	u.LegacyPaymentUpToDate = nil
	return nil
}

func (f *fakeRepository) addUser(id uint, email string) *models.User {
	u := &models.User{ID: id, Name: "Test User", Email: email, Role: models.ROLE_USER, Status: models.STATUS_ACTIVE}
	f.users[id] = u
	return u
}

func (f *fakeRepository) addPlan(id uint, code, name string, features ...string) *models.Plan {
	p := &models.Plan{ID: id, Name: name, HotmartCode: code}
	for i, code := range features {
		p.Features = append(p.Features, models.Feature{ID: uint(i + 1), Code: code, IsActive: true})
	}
	f.plans[code] = p
	return p
}

func TestApply_ActivationCreatesSubscription(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.addUser(1, "maria@exemplo.com")
	repo.addPlan(10, "FF-PRO-M", "Profissional", "gestao_clientes", "relatorios")
	svc := NewService(repo)

	next := time.Now().AddDate(0, 1, 0)
	sub, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:          hotmart.EventPurchaseApproved,
		BuyerEmail:     "maria@exemplo.com",
		SubscriberCode: "SUB-1",
		PlanCode:       "FF-PRO-M",
		NextChargeAt:   &next,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.True(t, sub.PaymentUpToDate)
	assert.Equal(t, uint(10), sub.PlanID)
	assert.Equal(t, "SUB-1", sub.HotmartSubscriberCode)
	assert.Equal(t, []string{"gestao_clientes", "relatorios"}, DecodeFeatureCodes(sub.EnabledFeatures))
}

func TestApply_TrialActivation(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.addUser(1, "maria@exemplo.com")
	repo.addPlan(10, "FF-PRO-M", "Profissional")
	svc := NewService(repo)

	sub, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:      hotmart.EventPurchaseApproved,
		BuyerEmail: "maria@exemplo.com",
		PlanCode:   "FF-PRO-M",
		IsTrial:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusTrial, sub.Status)
}

func TestApply_CancellationAndReactivation(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.addUser(1, "maria@exemplo.com")
	repo.addPlan(10, "FF-PRO-M", "Profissional")
	repo.subscriptions[1] = &models.Subscription{
		ID: 1, UserID: 1, PlanID: 10,
		Status:                models.SubscriptionStatusActive,
		HotmartSubscriberCode: "SUB-1",
		PaymentUpToDate:       true,
	}
	svc := NewService(repo)

	sub, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:          hotmart.EventSubscriptionCancelled,
		SubscriberCode: "SUB-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCancelled, sub.Status)
	assert.False(t, sub.IsEntitling())

	sub, err = svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:          hotmart.EventSubscriptionActivated,
		SubscriberCode: "SUB-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.True(t, sub.IsEntitling())
}

func TestApply_SuspensionMarksPaymentOverdue(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.addUser(1, "maria@exemplo.com")
	repo.subscriptions[1] = &models.Subscription{
		ID: 1, UserID: 1,
		Status:                models.SubscriptionStatusActive,
		HotmartSubscriberCode: "SUB-1",
		PaymentUpToDate:       true,
	}
	svc := NewService(repo)

	for _, event := range []string{
		hotmart.EventPurchaseChargeback,
		hotmart.EventPurchaseDelayed,
		hotmart.EventSubscriptionSuspended,
	} {
		sub, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
			Event:          event,
			SubscriberCode: "SUB-1",
		})
		require.NoError(t, err, event)
		assert.Equal(t, models.SubscriptionStatusSuspended, sub.Status, event)
		assert.False(t, sub.PaymentUpToDate, event)
	}
}

func TestApply_NonActivationWithoutSubscriptionIs404(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.addUser(1, "maria@exemplo.com")
	svc := NewService(repo)

	_, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:      hotmart.EventSubscriptionCancelled,
		BuyerEmail: "maria@exemplo.com",
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "assinatura", notFound.Entity)
}

func TestApply_UnknownBuyerIs404(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepository())
	_, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:      hotmart.EventPurchaseApproved,
		BuyerEmail: "ninguem@exemplo.com",
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestApply_AdminUserRejected(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	admin := repo.addUser(1, "admin@exemplo.com")
	admin.Role = models.ROLE_ADMIN
	svc := NewService(repo)

	_, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:      hotmart.EventPurchaseApproved,
		BuyerEmail: "admin@exemplo.com",
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestApply_UnknownPlanIs404(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.addUser(1, "maria@exemplo.com")
	svc := NewService(repo)

	_, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:      hotmart.EventPurchaseApproved,
		BuyerEmail: "maria@exemplo.com",
		PlanCode:   "FF-INEXISTENTE",
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "plano", notFound.Entity)
}

func TestApply_SwitchPlanSwapsPlanAndFeatures(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.addUser(1, "maria@exemplo.com")
	repo.addPlan(10, "FF-ESSENCIAL-M", "Essencial", "gestao_clientes")
	repo.addPlan(11, "FF-PRO-M", "Profissional", "gestao_clientes", "relatorios")
	repo.subscriptions[1] = &models.Subscription{
		ID: 1, UserID: 1, PlanID: 10,
		PlanHotmartCode:       "FF-ESSENCIAL-M",
		Status:                models.SubscriptionStatusActive,
		HotmartSubscriberCode: "SUB-1",
		EnabledFeatures:       `["gestao_clientes"]`,
	}
	svc := NewService(repo)

	sub, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:            hotmart.EventSwitchPlan,
		SubscriberCode:   "SUB-1",
		PlanCode:         "FF-PRO-M",
		PreviousPlanCode: "FF-ESSENCIAL-M",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(11), sub.PlanID)
	assert.Equal(t, "FF-PRO-M", sub.PlanHotmartCode)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Contains(t, DecodeFeatureCodes(sub.EnabledFeatures), "relatorios")
}

func TestApply_SwitchPlanFailsFastWithoutPersisting(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.addUser(1, "maria@exemplo.com")
	repo.addPlan(10, "FF-ESSENCIAL-M", "Essencial")
	repo.subscriptions[1] = &models.Subscription{
		ID: 1, UserID: 1, PlanID: 10,
		PlanHotmartCode:       "FF-ESSENCIAL-M",
		Status:                models.SubscriptionStatusActive,
		HotmartSubscriberCode: "SUB-1",
	}
	svc := NewService(repo)

	_, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:          hotmart.EventSwitchPlan,
		SubscriberCode: "SUB-1",
		PlanCode:       "FF-INEXISTENTE",
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	assert.Equal(t, uint(10), repo.subscriptions[1].PlanID, "failed switch must not persist")
}

func TestApply_SwitchPlanMissingReferentsAre404(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.addUser(1, "maria@exemplo.com")
	repo.addPlan(10, "FF-ESSENCIAL-M", "Essencial")
	repo.subscriptions[1] = &models.Subscription{
		ID: 1, UserID: 1, PlanID: 10,
		Status: models.SubscriptionStatusActive,
	}
	svc := NewService(repo)

	// A subscription without a subscriber code has nothing to switch.
	_, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:      hotmart.EventSwitchPlan,
		BuyerEmail: "maria@exemplo.com",
		PlanCode:   "FF-ESSENCIAL-M",
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "assinante", notFound.Entity)

	// A target plan stripped of its provider code is equally unswitchable.
	repo.subscriptions[1].HotmartSubscriberCode = "SUB-1"
	repo.plans["FF-SEM-CODIGO"] = &models.Plan{ID: 12, Name: "Sem Código"}
	_, err = svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:          hotmart.EventSwitchPlan,
		SubscriberCode: "SUB-1",
		PlanCode:       "FF-SEM-CODIGO",
	})
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "plano", notFound.Entity)
}

func TestApply_ChargeDateUpdateKeepsStatus(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.addUser(1, "maria@exemplo.com")
	repo.subscriptions[1] = &models.Subscription{
		ID: 1, UserID: 1,
		Status:                models.SubscriptionStatusTrial,
		HotmartSubscriberCode: "SUB-1",
	}
	svc := NewService(repo)

	next := time.Now().AddDate(0, 1, 0)
	sub, err := svc.Apply(context.Background(), &hotmart.TransitionRequest{
		Event:          hotmart.EventUpdateChargeDate,
		SubscriberCode: "SUB-1",
		NextChargeAt:   &next,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusTrial, sub.Status)
	require.NotNil(t, sub.NextChargeAt)
	assert.WithinDuration(t, next, *sub.NextChargeAt, time.Second)
}

func TestRecordWebhookEvent_Deduplicates(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepository())
	req := &hotmart.TransitionRequest{
		Event:           hotmart.EventPurchaseApproved,
		ProviderEventID: "evt-1",
		RawJSON:         `{"event":"PURCHASE_APPROVED"}`,
	}

	created, first, err := svc.RecordWebhookEvent(req, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "203.0.113.7", first.SourceIP)

	created, second, err := svc.RecordWebhookEvent(req, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestRecordWebhookEvent_HashFallbackForMissingID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepository())
	req := &hotmart.TransitionRequest{
		Event:   hotmart.EventPurchaseApproved,
		RawJSON: `{"event":"PURCHASE_APPROVED","data":{}}`,
	}

	created, stored, err := svc.RecordWebhookEvent(req, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, strings.HasPrefix(stored.ProviderEventID, "hash:"))

	// Identical body dedups via the hash key.
	created, _, err = svc.RecordWebhookEvent(req, "")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestDecodeFeatureCodes(t *testing.T) {
	t.Parallel()

	assert.Nil(t, DecodeFeatureCodes(""))
	assert.Nil(t, DecodeFeatureCodes("not json"))
	assert.Equal(t, []string{"a", "b"}, DecodeFeatureCodes(`["a","b"]`))
	assert.Empty(t, DecodeFeatureCodes("[]"))
}
