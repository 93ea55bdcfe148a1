package hotmart

import "time"

// Payload mirrors the Hotmart webhook v2 envelope. Only the fields the
// reconciler consumes are modeled; the raw JSON is persisted alongside.
type Payload struct {
	ID           string      `json:"id"`
	Event        string      `json:"event"`
	Version      string      `json:"version,omitempty"`
	CreationDate int64       `json:"creation_date,omitempty"` // epoch millis
	Data         PayloadData `json:"data"`
}

type PayloadData struct {
	Product      *Product      `json:"product,omitempty"`
	Buyer        *Buyer        `json:"buyer,omitempty"`
	Purchase     *Purchase     `json:"purchase,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
	// Plans is populated only on SWITCH_PLAN events; exactly one entry
	// carries current=true (the incoming plan).
	Plans []SwitchPlanEntry `json:"plans,omitempty"`
}

type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Buyer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Purchase struct {
	Transaction    string `json:"transaction"`
	Status         string `json:"status,omitempty"`
	ApprovedDate   int64  `json:"approved_date,omitempty"`    // epoch millis
	DateNextCharge int64  `json:"date_next_charge,omitempty"` // epoch millis
	Recurrence     int    `json:"recurrence_number,omitempty"`
	IsTrial        bool   `json:"is_trial,omitempty"`
}

type Subscription struct {
	Status         string       `json:"status,omitempty"`
	Plan           *PayloadPlan `json:"plan,omitempty"`
	Subscriber     *Subscriber  `json:"subscriber,omitempty"`
	DateNextCharge int64        `json:"date_next_charge,omitempty"`
	ExpiresDate    int64        `json:"expires_date,omitempty"`
}

type PayloadPlan struct {
	ID   int64  `json:"id,omitempty"`
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

type Subscriber struct {
	Code  string `json:"code"`
	Email string `json:"email,omitempty"`
}

type SwitchPlanEntry struct {
	ID      int64  `json:"id,omitempty"`
	Code    string `json:"code,omitempty"`
	Name    string `json:"name,omitempty"`
	Current bool   `json:"current"`
}

// TransitionRequest is the normalized form every webhook payload is reduced
// to before it reaches the reconciler.
type TransitionRequest struct {
	Event            string
	ProviderEventID  string
	SubscriberCode   string
	BuyerEmail       string
	BuyerName        string
	PlanCode         string // incoming plan on SWITCH_PLAN, current plan otherwise
	PlanName         string
	PreviousPlanCode string // outgoing plan, SWITCH_PLAN only
	StatusHint       string // raw provider status string, may be empty
	IsTrial          bool
	NextChargeAt     *time.Time
	ExpiresAt        *time.Time
	RawJSON          string
	TokenValid       bool
}

func millisToTime(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms)
	return &t
}
