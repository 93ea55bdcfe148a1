package hotmart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedEvent is wrapped by ParseEvent for unknown event types so
// the webhook controller can answer 400 with the supported enumeration.
var ErrUnsupportedEvent = errors.New("unsupported hotmart event type")

// ParseEvent validates and normalizes a raw webhook body into a
// TransitionRequest. It never touches the database; subscriber and plan
// resolution happen in the reconciler.
func ParseEvent(body []byte) (*TransitionRequest, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("malformed hotmart payload: %w", err)
	}

	event := strings.ToUpper(strings.TrimSpace(p.Event))
	if event == "" {
		return nil, fmt.Errorf("%w: (empty)", ErrUnsupportedEvent)
	}
	if !IsSupportedEvent(event) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, event)
	}

	req := &TransitionRequest{
		Event:           event,
		ProviderEventID: strings.TrimSpace(p.ID),
		RawJSON:         string(body),
	}

	if b := p.Data.Buyer; b != nil {
		req.BuyerEmail = strings.TrimSpace(b.Email)
		req.BuyerName = strings.TrimSpace(b.Name)
	}
	if s := p.Data.Subscription; s != nil {
		req.StatusHint = strings.TrimSpace(s.Status)
		if s.Subscriber != nil {
			req.SubscriberCode = strings.TrimSpace(s.Subscriber.Code)
			if req.BuyerEmail == "" {
				req.BuyerEmail = strings.TrimSpace(s.Subscriber.Email)
			}
		}
		if s.Plan != nil {
			req.PlanCode = strings.TrimSpace(s.Plan.Code)
			req.PlanName = strings.TrimSpace(s.Plan.Name)
		}
		req.NextChargeAt = millisToTime(s.DateNextCharge)
		req.ExpiresAt = millisToTime(s.ExpiresDate)
	}
	if pu := p.Data.Purchase; pu != nil {
		req.IsTrial = pu.IsTrial
		if req.NextChargeAt == nil {
			req.NextChargeAt = millisToTime(pu.DateNextCharge)
		}
	}

	if event == EventSwitchPlan {
		if err := applySwitchPlan(req, p.Data.Plans); err != nil {
			return nil, err
		}
	}

	if req.SubscriberCode == "" && req.BuyerEmail == "" {
		return nil, errors.New("hotmart payload identifies no subscriber: missing subscriber code and buyer email")
	}

	return req, nil
}

func applySwitchPlan(req *TransitionRequest, plans []SwitchPlanEntry) error {
	if len(plans) == 0 {
		return errors.New("SWITCH_PLAN payload carries no plans")
	}
	for _, entry := range plans {
		code := strings.TrimSpace(entry.Code)
		if entry.Current {
			req.PlanCode = code
			req.PlanName = strings.TrimSpace(entry.Name)
		} else if req.PreviousPlanCode == "" {
			req.PreviousPlanCode = code
		}
	}
	if req.PlanCode == "" {
		return errors.New("SWITCH_PLAN payload has no current plan entry")
	}
	return nil
}
