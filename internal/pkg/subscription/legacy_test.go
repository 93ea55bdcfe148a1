package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festaflow/festaflow/app/models"
)

func legacyUser(id uint, email string) *models.User {
	planID := uint(10)
	upToDate := false
	expires := time.Now().AddDate(0, 1, 0)
	return &models.User{
		ID:                          id,
		Name:                        "Legacy User",
		Email:                       email,
		Role:                        models.ROLE_USER,
		Status:                      models.STATUS_ACTIVE,
		LegacyPlanID:                &planID,
		LegacyStatus:                "ACTIVE",
		LegacyHotmartSubscriberCode: "LEG-1",
		LegacyExpiresAt:             &expires,
		LegacyPaymentUpToDate:       &upToDate,
	}
}

func TestExtractLegacyShape(t *testing.T) {
	t.Parallel()

	u := legacyUser(1, "maria@exemplo.com")
	shape, ok := ExtractLegacyShape(u)
	require.True(t, ok)

	assert.Equal(t, uint(1), shape.UserID)
	assert.Equal(t, models.SubscriptionStatusActive, shape.Status, "English legacy status must normalize")
	assert.Equal(t, "LEG-1", shape.HotmartSubscriberCode)
	assert.Equal(t, uint(10), shape.PlanID)
	assert.False(t, shape.PaymentUpToDate)

	_, ok = ExtractLegacyShape(&models.User{ID: 2, Email: "sem@legado.com"})
	assert.False(t, ok, "user without legacy columns has no shape")
}

func TestToConsolidated(t *testing.T) {
	t.Parallel()

	plan := &models.Plan{
		ID: 10, Name: "Profissional", HotmartCode: "FF-PRO-M",
		Features: []models.Feature{{Code: "relatorios", IsActive: true}},
	}
	sub := ToConsolidated(models.Subscription{UserID: 1, Status: models.SubscriptionStatusActive}, plan)

	assert.Equal(t, uint(10), sub.PlanID)
	assert.Equal(t, "FF-PRO-M", sub.PlanHotmartCode)
	assert.Equal(t, []string{"relatorios"}, DecodeFeatureCodes(sub.EnabledFeatures))

	orphan := ToConsolidated(models.Subscription{UserID: 2}, nil)
	assert.Equal(t, "[]", orphan.EnabledFeatures, "missing plan still yields a valid empty feature set")
}

func TestMigrateLegacyShapes_MigratesAndClears(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.users[1] = legacyUser(1, "maria@exemplo.com")
	repo.addPlan(10, "FF-PRO-M", "Profissional", "relatorios")
	svc := NewService(repo)

	report, err := svc.MigrateLegacyShapes(false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalProcessed)
	assert.Equal(t, 1, report.Migrated)
	assert.Equal(t, 0, report.Errors)

	sub, err := repo.GetSubscriptionByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "LEG-1", sub.HotmartSubscriberCode)
	assert.Equal(t, uint(10), sub.PlanID)

	assert.False(t, repo.users[1].HasLegacySubscriptionFields(), "legacy columns cleared after persist")
}

func TestMigrateLegacyShapes_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.users[1] = legacyUser(1, "maria@exemplo.com")
	repo.addPlan(10, "FF-PRO-M", "Profissional")
	svc := NewService(repo)

	report, err := svc.MigrateLegacyShapes(true)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Migrated)
	_, err = repo.GetSubscriptionByUserID(1)
	assert.Error(t, err, "dry run must not create subscriptions")
	assert.True(t, repo.users[1].HasLegacySubscriptionFields(), "dry run must not clear legacy columns")
}

func TestMigrateLegacyShapes_SecondRunIsNoop(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.users[1] = legacyUser(1, "maria@exemplo.com")
	repo.addPlan(10, "FF-PRO-M", "Profissional")
	svc := NewService(repo)

	_, err := svc.MigrateLegacyShapes(false)
	require.NoError(t, err)

	report, err := svc.MigrateLegacyShapes(false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Migrated)
	assert.Equal(t, 0, report.Errors)
	assert.Empty(t, report.Details, "already-consolidated users are skipped silently")
}

func TestMigrateLegacyShapes_SkipsAdminsAndCleanUsers(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	admin := legacyUser(1, "admin@exemplo.com")
	admin.Role = models.ROLE_ADMIN
	repo.users[1] = admin
	repo.addUser(2, "limpa@exemplo.com")
	svc := NewService(repo)

	report, err := svc.MigrateLegacyShapes(false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalProcessed)
	assert.Equal(t, 0, report.Migrated)
	assert.Empty(t, report.Details)
	assert.True(t, repo.users[1].HasLegacySubscriptionFields(), "admin legacy columns are left untouched")
}

func TestMigrateLegacyShapes_ExistingSubscriptionOnlyCleansLegacy(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.users[1] = legacyUser(1, "maria@exemplo.com")
	repo.subscriptions[1] = &models.Subscription{
		ID: 1, UserID: 1, Status: models.SubscriptionStatusActive,
		HotmartSubscriberCode: "SUB-REAL",
	}
	svc := NewService(repo)

	dryReport, err := svc.MigrateLegacyShapes(true)
	require.NoError(t, err)

	report, err := svc.MigrateLegacyShapes(false)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, 1, report.Migrated)
	assert.Equal(t, dryReport.Migrated, report.Migrated,
		"dry run and real run must report the same totals")
	assert.False(t, repo.users[1].HasLegacySubscriptionFields())
	assert.Equal(t, "SUB-REAL", repo.subscriptions[1].HotmartSubscriberCode,
		"existing consolidated row must not be overwritten by legacy data")
}

func TestMigrateLegacyShapes_PersistFailureKeepsLegacyColumns(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.users[1] = legacyUser(1, "maria@exemplo.com")
	repo.addPlan(10, "FF-PRO-M", "Profissional")
	repo.failUpsert = true
	svc := NewService(repo)

	report, err := svc.MigrateLegacyShapes(false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Errors)
	assert.True(t, repo.users[1].HasLegacySubscriptionFields(),
		"failed persist must leave the legacy shape in place")
}
