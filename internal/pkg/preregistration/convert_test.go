package preregistration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/festaflow/festaflow/app/models"
)

// fakeConversionStore is an in-memory conversionStore for exercising the
// converter without a database. createConversion mirrors the production
// contract: on failure nothing is recorded.
type fakeConversionStore struct {
	pres         map[uint]*models.PreRegistration
	clients      map[string]*models.Client // keyed by normalized email
	eventTypes   map[string]uint
	serviceTypes map[uint]*models.ServiceType

	createdClients  []*models.Client
	createdEvents   []*models.Event
	createdServices []models.EventService
	marked          map[uint]map[string]interface{}

	failCreate bool
	failMark   bool
	nextID     uint
}

func newFakeConversionStore() *fakeConversionStore {
	return &fakeConversionStore{
		pres:         make(map[uint]*models.PreRegistration),
		clients:      make(map[string]*models.Client),
		eventTypes:   make(map[string]uint),
		serviceTypes: make(map[uint]*models.ServiceType),
		marked:       make(map[uint]map[string]interface{}),
		nextID:       100,
	}
}

func (f *fakeConversionStore) ownedPreRegistration(userID, id uint) (*models.PreRegistration, error) {
	pre, ok := f.pres[id]
	if !ok || pre.UserID != userID {
		return nil, ErrNotFound
	}
	return pre, nil
}

func (f *fakeConversionStore) clientByEmail(userID uint, email string) (*models.Client, error) {
	c, ok := f.clients[email]
	if !ok || c.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeConversionStore) eventTypeIDByName(userID uint, name string) (uint, error) {
	_ = userID
	id, ok := f.eventTypes[name]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return id, nil
}

func (f *fakeConversionStore) serviceType(userID, id uint) (*models.ServiceType, error) {
	st, ok := f.serviceTypes[id]
	if !ok || st.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return st, nil
}

func (f *fakeConversionStore) createConversion(client *models.Client, newClient bool, event *models.Event, services []models.EventService) error {
	if f.failCreate {
		return gorm.ErrInvalidTransaction
	}
	if newClient {
		f.nextID++
		client.ID = f.nextID
		f.createdClients = append(f.createdClients, client)
	}
	f.nextID++
	event.ID = f.nextID
	event.ClientID = client.ID
	f.createdEvents = append(f.createdEvents, event)
	for i := range services {
		services[i].EventID = event.ID
		f.createdServices = append(f.createdServices, services[i])
	}
	return nil
}

func (f *fakeConversionStore) markConverted(pre *models.PreRegistration, updates map[string]interface{}) error {
	if f.failMark {
		return gorm.ErrInvalidTransaction
	}
	f.marked[pre.ID] = updates
	return nil
}

func filledPre(id uint) *models.PreRegistration {
	return &models.PreRegistration{
		ID:           id,
		UserID:       1,
		Status:       models.PreRegistrationStatusFilled,
		ClientName:   "Ana Souza",
		ClientEmail:  "ana@example.com",
		ClientPhone:  "11 99999-0000",
		EventDateRaw: "2025-06-10",
		Venue:        "Espaço Jardim",
		Address:      "Rua das Flores, 100",
		EventType:    "Casamento",
		GuestCount:   120,
	}
}

func TestConvert_CreatesClientAndEvent(t *testing.T) {
	t.Parallel()

	store := newFakeConversionStore()
	store.pres[1] = filledPre(1)
	svc := &Service{store: store}

	result, err := svc.Convert(1, 1)
	require.NoError(t, err)

	assert.False(t, result.ClientReused)
	require.Len(t, store.createdClients, 1)
	assert.Equal(t, "ana@example.com", result.Client.Email)
	assert.Equal(t, "Ana Souza", result.Client.Name)

	require.Len(t, store.createdEvents, 1)
	event := result.Event
	assert.Equal(t, "Casamento - Ana Souza", event.Title)
	assert.Equal(t, result.Client.ID, event.ClientID)
	assert.Equal(t, models.EventStatusScheduled, event.Status)
	assert.True(t, event.Date.Equal(time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)))
	require.NotNil(t, event.PaymentDueDate)
	assert.True(t, event.PaymentDueDate.Equal(time.Date(2025, 7, 10, 0, 0, 0, 0, time.Local)),
		"payment due date defaults to 30 days after the event")

	pre := result.PreRegistration
	assert.Equal(t, models.PreRegistrationStatusConverted, pre.Status)
	require.NotNil(t, pre.EventID)
	assert.Equal(t, event.ID, *pre.EventID)
	require.NotNil(t, pre.ClientID)
	assert.Equal(t, result.Client.ID, *pre.ClientID)
	assert.NotNil(t, pre.ConvertedAt)
	assert.Contains(t, store.marked, uint(1))
}

func TestConvert_ReusesClientByEmail(t *testing.T) {
	t.Parallel()

	store := newFakeConversionStore()
	store.pres[1] = filledPre(1)
	store.clients["ana@example.com"] = &models.Client{ID: 7, UserID: 1, Name: "Ana S.", Email: "ana@example.com"}
	svc := &Service{store: store}

	result, err := svc.Convert(1, 1)
	require.NoError(t, err)

	assert.True(t, result.ClientReused)
	assert.Empty(t, store.createdClients, "matched client must not be duplicated")
	assert.Equal(t, uint(7), result.Event.ClientID)
}

func TestConvert_RejectsDoubleConversion(t *testing.T) {
	t.Parallel()

	store := newFakeConversionStore()
	pre := filledPre(1)
	pre.Status = models.PreRegistrationStatusConverted
	store.pres[1] = pre
	svc := &Service{store: store}

	_, err := svc.Convert(1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "já foi convertido")
	assert.Empty(t, store.createdEvents, "second conversion must not create anything")
}

func TestConvert_Preconditions(t *testing.T) {
	t.Parallel()

	store := newFakeConversionStore()
	svc := &Service{store: store}

	pending := filledPre(1)
	pending.Status = models.PreRegistrationStatusPending
	store.pres[1] = pending

	noVenue := filledPre(2)
	noVenue.Venue = "  "
	store.pres[2] = noVenue

	badDate := filledPre(3)
	badDate.EventDateRaw = "10/06/2025"
	store.pres[3] = badDate

	_, err := svc.Convert(1, 1)
	assert.ErrorContains(t, err, "não está preenchido")

	_, err = svc.Convert(1, 2)
	assert.ErrorContains(t, err, "sem local")

	_, err = svc.Convert(1, 3)
	require.Error(t, err, "unparseable event date must abort the conversion")

	_, err = svc.Convert(2, 1)
	assert.ErrorIs(t, err, ErrNotFound, "foreign tenants must not convert")

	assert.Empty(t, store.createdEvents)
	assert.Empty(t, store.marked)
}

func TestConvert_CreateFailureLeavesRecordReattemptable(t *testing.T) {
	t.Parallel()

	store := newFakeConversionStore()
	store.pres[1] = filledPre(1)
	store.failCreate = true
	svc := &Service{store: store}

	_, err := svc.Convert(1, 1)
	require.Error(t, err)

	assert.Equal(t, models.PreRegistrationStatusFilled, store.pres[1].Status,
		"failed write set must leave the record re-attemptable")
	assert.Empty(t, store.createdClients, "no partial client may survive a failed conversion")
	assert.Empty(t, store.marked, "status flip must not run after a failed write set")
}

func TestConvert_StatusFlipIsLastWrite(t *testing.T) {
	t.Parallel()

	store := newFakeConversionStore()
	store.pres[1] = filledPre(1)
	store.failMark = true
	svc := &Service{store: store}

	_, err := svc.Convert(1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "não atualizado")

	assert.Len(t, store.createdEvents, 1, "client and event commit before the flip")
	assert.Equal(t, models.PreRegistrationStatusFilled, store.pres[1].Status)
}

func TestConvert_CopiesServicesAndSkipsBadReferences(t *testing.T) {
	t.Parallel()

	store := newFakeConversionStore()
	pre := filledPre(1)
	pre.Services = []models.PreRegistrationService{
		{ID: 1, PreRegistrationID: 1, ServiceTypeID: 5},
		{ID: 2, PreRegistrationID: 1, ServiceTypeID: 6, Removed: true},
		{ID: 3, PreRegistrationID: 1, ServiceTypeID: 99},
	}
	store.pres[1] = pre
	store.serviceTypes[5] = &models.ServiceType{ID: 5, UserID: 1, Name: "Buffet", DefaultPriceCents: 500000}
	svc := &Service{store: store}

	result, err := svc.Convert(1, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ServicesCopied)
	assert.Equal(t, 1, result.ServicesSkipped, "unknown service types are skipped, removed ones silently dropped")
	require.Len(t, store.createdServices, 1)
	assert.Equal(t, "Buffet", store.createdServices[0].Description)
	assert.Equal(t, int64(500000), store.createdServices[0].PriceCents)
	assert.Equal(t, result.Event.ID, store.createdServices[0].EventID)
}
