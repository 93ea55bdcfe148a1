package hotmart

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MockInput carries the values the mock endpoint resolved from the live
// database so the generated payload references real subscribers and plans.
type MockInput struct {
	Event          string
	SubscriberCode string
	BuyerEmail     string
	BuyerName      string
	PlanCode       string
	PlanName       string
	// NewPlanCode/NewPlanName are used only for SWITCH_PLAN.
	NewPlanCode string
	NewPlanName string
	Trial       bool
}

// BuildMockPayload assembles a payload shaped like a real Hotmart delivery
// for local testing. Not production behavior: the production endpoint only
// ever parses what Hotmart sends.
func BuildMockPayload(in MockInput) ([]byte, error) {
	now := time.Now()
	nextCharge := now.AddDate(0, 1, 0)

	p := Payload{
		ID:           uuid.NewString(),
		Event:        in.Event,
		Version:      "2.0.0",
		CreationDate: now.UnixMilli(),
		Data: PayloadData{
			Product: &Product{ID: 1, Name: "FestaFlow"},
			Buyer:   &Buyer{Email: in.BuyerEmail, Name: in.BuyerName},
			Purchase: &Purchase{
				Transaction:    "HP" + uuid.NewString()[:8],
				Status:         "APPROVED",
				ApprovedDate:   now.UnixMilli(),
				DateNextCharge: nextCharge.UnixMilli(),
				IsTrial:        in.Trial,
			},
			Subscription: &Subscription{
				Status:         mockSubscriptionStatus(in.Event),
				Plan:           &PayloadPlan{Code: in.PlanCode, Name: in.PlanName},
				Subscriber:     &Subscriber{Code: in.SubscriberCode, Email: in.BuyerEmail},
				DateNextCharge: nextCharge.UnixMilli(),
			},
		},
	}

	if in.Event == EventSwitchPlan {
		p.Data.Plans = []SwitchPlanEntry{
			{Code: in.PlanCode, Name: in.PlanName, Current: false},
			{Code: in.NewPlanCode, Name: in.NewPlanName, Current: true},
		}
	}
	if in.Event == EventSubscriptionExpired {
		p.Data.Subscription.ExpiresDate = now.UnixMilli()
	}

	return json.Marshal(p)
}

func mockSubscriptionStatus(event string) string {
	switch {
	case IsActivationEvent(event):
		return "ACTIVE"
	case event == EventSubscriptionCancelled:
		return "CANCELLED"
	case event == EventSubscriptionExpired:
		return "EXPIRED"
	case IsSuspensionEvent(event):
		return "SUSPENDED"
	default:
		return "ACTIVE"
	}
}
