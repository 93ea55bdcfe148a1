package entitlements

import (
	"testing"

	"github.com/festaflow/festaflow/app/models"
)

func activeSub(features string) *models.Subscription {
	return &models.Subscription{
		UserID:          1,
		Status:          models.SubscriptionStatusActive,
		EnabledFeatures: features,
	}
}

func TestFeatureEnabled_UsesCachedCodes(t *testing.T) {
	t.Parallel()

	sub := activeSub(`["gestao_clientes","relatorios"]`)
	if !FeatureEnabled(sub, nil, "relatorios") {
		t.Fatalf("cached feature should be enabled")
	}
	if !FeatureEnabled(sub, nil, "RELATORIOS") {
		t.Fatalf("feature check should be case-insensitive")
	}
	if FeatureEnabled(sub, nil, "multiplos_usuarios") {
		t.Fatalf("feature outside the cache must be disabled")
	}
}

func TestFeatureEnabled_FallsBackToPlanWhenCacheEmpty(t *testing.T) {
	t.Parallel()

	plan := &models.Plan{
		Features: []models.Feature{
			{Code: "gestao_eventos", IsActive: true},
			{Code: "relatorios_avancados", IsActive: false},
		},
	}
	sub := activeSub("")

	if !FeatureEnabled(sub, plan, "gestao_eventos") {
		t.Fatalf("empty cache should expand the plan feature set")
	}
	if FeatureEnabled(sub, plan, "relatorios_avancados") {
		t.Fatalf("inactive plan features must not grant access")
	}
}

func TestFeatureEnabled_NonEntitlingStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []string{
		models.SubscriptionStatusCancelled,
		models.SubscriptionStatusExpired,
		models.SubscriptionStatusSuspended,
	} {
		sub := activeSub(`["gestao_clientes"]`)
		sub.Status = status
		if FeatureEnabled(sub, nil, "gestao_clientes") {
			t.Fatalf("status %s must not entitle", status)
		}
	}

	if FeatureEnabled(nil, nil, "gestao_clientes") {
		t.Fatalf("missing subscription must not entitle")
	}
	if FeatureEnabled(activeSub(`["x"]`), nil, "") {
		t.Fatalf("empty feature code must not entitle")
	}
}

func TestFeatureEnabled_TrialEntitles(t *testing.T) {
	t.Parallel()

	sub := activeSub(`["pre_cadastro"]`)
	sub.Status = models.SubscriptionStatusTrial
	if !FeatureEnabled(sub, nil, "pre_cadastro") {
		t.Fatalf("trial subscriptions carry full plan entitlements")
	}
}

func TestLimitFromPlan(t *testing.T) {
	t.Parallel()

	five := 5
	plan := &models.Plan{MaxClients: &five}

	limit := LimitFromPlan(plan, ResourceClients)
	if limit.Unlimited || limit.Value != 5 {
		t.Fatalf("expected cap of 5 clients, got %+v", limit)
	}

	limit = LimitFromPlan(plan, ResourceEventsPerMonth)
	if !limit.Unlimited {
		t.Fatalf("nil cap must resolve to unlimited, got %+v", limit)
	}

	limit = LimitFromPlan(plan, "unknown_resource")
	if !limit.Unlimited {
		t.Fatalf("unknown resources carry no cap, got %+v", limit)
	}
}
