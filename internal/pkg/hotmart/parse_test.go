package hotmart

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseEvent_PurchaseApproved(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"id": "evt-123",
		"event": "PURCHASE_APPROVED",
		"data": {
			"buyer": {"email": " maria@exemplo.com ", "name": "Maria"},
			"purchase": {"transaction": "HP1", "is_trial": true, "date_next_charge": 1760000000000},
			"subscription": {
				"status": "ACTIVE",
				"plan": {"code": "FF-PRO-M", "name": "Profissional"},
				"subscriber": {"code": "SUB-1"}
			}
		}
	}`)

	req, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Event != EventPurchaseApproved {
		t.Fatalf("expected event %s, got %s", EventPurchaseApproved, req.Event)
	}
	if req.ProviderEventID != "evt-123" {
		t.Fatalf("unexpected provider event id %q", req.ProviderEventID)
	}
	if req.BuyerEmail != "maria@exemplo.com" {
		t.Fatalf("buyer email not trimmed: %q", req.BuyerEmail)
	}
	if req.SubscriberCode != "SUB-1" || req.PlanCode != "FF-PRO-M" {
		t.Fatalf("subscriber/plan not extracted: %q %q", req.SubscriberCode, req.PlanCode)
	}
	if !req.IsTrial {
		t.Fatalf("expected trial flag from purchase block")
	}
	if req.NextChargeAt == nil {
		t.Fatalf("expected next charge date from purchase fallback")
	}
}

func TestParseEvent_LowercaseEventIsNormalized(t *testing.T) {
	t.Parallel()

	body := []byte(`{"event": "purchase_approved", "data": {"buyer": {"email": "a@b.com"}}}`)
	req, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Event != EventPurchaseApproved {
		t.Fatalf("event not upper-cased: %q", req.Event)
	}
}

func TestParseEvent_UnsupportedEvent(t *testing.T) {
	t.Parallel()

	body := []byte(`{"event": "PURCHASE_BILLET_PRINTED", "data": {"buyer": {"email": "a@b.com"}}}`)
	_, err := ParseEvent(body)
	if !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("expected ErrUnsupportedEvent, got %v", err)
	}
}

func TestParseEvent_MissingSubscriberIdentity(t *testing.T) {
	t.Parallel()

	body := []byte(`{"event": "SUBSCRIPTION_CANCELLATION", "data": {}}`)
	if _, err := ParseEvent(body); err == nil {
		t.Fatalf("expected error for payload with no subscriber code and no buyer email")
	}
}

func TestParseEvent_MalformedJSON(t *testing.T) {
	t.Parallel()

	if _, err := ParseEvent([]byte(`{not json`)); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestParseEvent_SwitchPlan(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"event": "SWITCH_PLAN",
		"data": {
			"subscription": {"subscriber": {"code": "SUB-9"}},
			"plans": [
				{"code": "FF-ESSENCIAL-M", "name": "Essencial", "current": false},
				{"code": "FF-PRO-M", "name": "Profissional", "current": true}
			]
		}
	}`)

	req, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PlanCode != "FF-PRO-M" {
		t.Fatalf("incoming plan should be the current entry, got %q", req.PlanCode)
	}
	if req.PreviousPlanCode != "FF-ESSENCIAL-M" {
		t.Fatalf("outgoing plan not captured, got %q", req.PreviousPlanCode)
	}
}

func TestParseEvent_SwitchPlanWithoutCurrentEntry(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"event": "SWITCH_PLAN",
		"data": {
			"subscription": {"subscriber": {"code": "SUB-9"}},
			"plans": [{"code": "FF-ESSENCIAL-M", "current": false}]
		}
	}`)
	if _, err := ParseEvent(body); err == nil {
		t.Fatalf("expected error when no plan entry is current")
	}
}

func TestVerifyHottok(t *testing.T) {
	t.Parallel()

	if !VerifyHottok(" secret-token ", "secret-token") {
		t.Fatalf("trimmed matching token should verify")
	}
	if VerifyHottok("wrong", "secret-token") {
		t.Fatalf("mismatched token must not verify")
	}
	if VerifyHottok("", "secret-token") {
		t.Fatalf("empty header must not verify")
	}
	if VerifyHottok("anything", "") {
		t.Fatalf("unset secret must not verify")
	}
}

func TestIsSupportedEvent(t *testing.T) {
	t.Parallel()

	for _, e := range SupportedEvents {
		if !IsSupportedEvent(e) {
			t.Fatalf("%s should be supported", e)
		}
		if !IsSupportedEvent(strings.ToLower(e)) {
			t.Fatalf("%s should be supported case-insensitively", e)
		}
	}
	if IsSupportedEvent("PURCHASE_BILLET_PRINTED") {
		t.Fatalf("unlisted event must not be supported")
	}
}

func TestBuildMockPayload_RoundTripsThroughParse(t *testing.T) {
	t.Parallel()

	body, err := BuildMockPayload(MockInput{
		Event:          EventSubscriptionRenewed,
		SubscriberCode: "MOCK-joao",
		BuyerEmail:     "joao@exemplo.com",
		BuyerName:      "João",
		PlanCode:       "FF-PREMIUM-M",
		PlanName:       "Premium",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("mock payload must parse like a real delivery: %v", err)
	}
	if req.SubscriberCode != "MOCK-joao" || req.PlanCode != "FF-PREMIUM-M" {
		t.Fatalf("mock payload lost identity: %q %q", req.SubscriberCode, req.PlanCode)
	}
	if req.NextChargeAt == nil || req.NextChargeAt.Before(time.Now()) {
		t.Fatalf("mock renewal should carry a future charge date")
	}
}

func TestBuildMockPayload_SwitchPlanEntries(t *testing.T) {
	t.Parallel()

	body, err := BuildMockPayload(MockInput{
		Event:          EventSwitchPlan,
		SubscriberCode: "MOCK-ana",
		BuyerEmail:     "ana@exemplo.com",
		PlanCode:       "FF-ESSENCIAL-M",
		NewPlanCode:    "FF-PRO-M",
		NewPlanName:    "Profissional",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("mock payload is not valid JSON: %v", err)
	}
	if len(p.Data.Plans) != 2 {
		t.Fatalf("expected two plan entries, got %d", len(p.Data.Plans))
	}

	req, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PlanCode != "FF-PRO-M" || req.PreviousPlanCode != "FF-ESSENCIAL-M" {
		t.Fatalf("switch-plan mock resolved wrong plans: %q %q", req.PlanCode, req.PreviousPlanCode)
	}
}
