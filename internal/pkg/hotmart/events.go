package hotmart

import "strings"

// Hotmart webhook event types handled by the subscription reconciler.
const (
	EventPurchaseApproved      = "PURCHASE_APPROVED"
	EventSubscriptionActivated = "SUBSCRIPTION_ACTIVATED"
	EventSubscriptionRenewed   = "SUBSCRIPTION_RENEWED"
	EventSubscriptionCancelled = "SUBSCRIPTION_CANCELLATION"
	EventSubscriptionExpired   = "SUBSCRIPTION_EXPIRED"
	EventSubscriptionSuspended = "SUBSCRIPTION_SUSPENDED"
	EventSwitchPlan            = "SWITCH_PLAN"
	EventUpdateChargeDate      = "UPDATE_SUBSCRIPTION_CHARGE_DATE"
	EventPurchaseChargeback    = "PURCHASE_CHARGEBACK"
	EventPurchaseProtest       = "PURCHASE_PROTEST"
	EventPurchaseRefunded      = "PURCHASE_REFUNDED"
	EventPurchaseDelayed       = "PURCHASE_DELAYED"
)

// SupportedEvents lists every event type the webhook endpoint accepts, in
// the order reported back on a 400 response.
var SupportedEvents = []string{
	EventPurchaseApproved,
	EventSubscriptionActivated,
	EventSubscriptionRenewed,
	EventSubscriptionCancelled,
	EventSubscriptionExpired,
	EventSubscriptionSuspended,
	EventSwitchPlan,
	EventUpdateChargeDate,
	EventPurchaseChargeback,
	EventPurchaseProtest,
	EventPurchaseRefunded,
	EventPurchaseDelayed,
}

// IsSupportedEvent reports whether the (upper-cased) event type is handled.
func IsSupportedEvent(event string) bool {
	e := strings.ToUpper(strings.TrimSpace(event))
	for _, s := range SupportedEvents {
		if e == s {
			return true
		}
	}
	return false
}

// IsActivationEvent reports whether the event (re)activates a subscription.
func IsActivationEvent(event string) bool {
	switch event {
	case EventPurchaseApproved, EventSubscriptionActivated, EventSubscriptionRenewed:
		return true
	default:
		return false
	}
}

// IsSuspensionEvent reports whether the event suspends a subscription
// regardless of its prior status.
func IsSuspensionEvent(event string) bool {
	switch event {
	case EventSubscriptionSuspended, EventPurchaseChargeback,
		EventPurchaseProtest, EventPurchaseRefunded, EventPurchaseDelayed:
		return true
	default:
		return false
	}
}
