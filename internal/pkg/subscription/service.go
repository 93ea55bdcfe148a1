package subscription

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/internal/pkg/hotmart"
	"gorm.io/gorm"
)

// Service applies normalized Hotmart events to the persisted subscription
// state. One subscription per user; transitions follow the status machine
// documented on Apply.
type Service struct {
	repo Repository
}

// NewService creates a subscription service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a subscription service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// Apply resolves the subscriber, runs the status transition and persists the
// result. Transitions:
//
//	(none)                     + activation  -> ATIVA (TRIAL when flagged)
//	ATIVA/TRIAL                + cancel      -> CANCELADA
//	ATIVA/TRIAL                + expire      -> EXPIRADA
//	any                        + suspension  -> SUSPENSA
//	CANCELADA/EXPIRADA/SUSPENSA + activation -> ATIVA
//
// SWITCH_PLAN swaps the plan references and re-derives the enabled feature
// set without touching the status unless the payload signals one.
func (s *Service) Apply(ctx context.Context, req *hotmart.TransitionRequest) (*models.Subscription, error) {
	_ = ctx
	if req == nil {
		return nil, errors.New("transition request is required")
	}

	user, sub, err := s.resolveSubscriber(req)
	if err != nil {
		return nil, err
	}
	if user != nil && user.IsAdmin() {
		return nil, &ValidationError{Msg: "admin users carry no subscription"}
	}

	if req.Event == hotmart.EventSwitchPlan {
		return s.applySwitchPlan(user, sub, req)
	}

	if sub == nil {
		if !hotmart.IsActivationEvent(req.Event) {
			return nil, &NotFoundError{Entity: "assinatura", Ref: subscriberRef(req)}
		}
		sub = &models.Subscription{UserID: user.ID}
	}

	switch {
	case hotmart.IsActivationEvent(req.Event):
		if req.IsTrial {
			sub.Status = models.SubscriptionStatusTrial
		} else {
			sub.Status = models.SubscriptionStatusActive
		}
		sub.PaymentUpToDate = true
	case req.Event == hotmart.EventSubscriptionCancelled:
		sub.Status = models.SubscriptionStatusCancelled
	case req.Event == hotmart.EventSubscriptionExpired:
		sub.Status = models.SubscriptionStatusExpired
	case hotmart.IsSuspensionEvent(req.Event):
		sub.Status = models.SubscriptionStatusSuspended
		sub.PaymentUpToDate = false
	case req.Event == hotmart.EventUpdateChargeDate:
		// Charge-date updates leave the status untouched.
	}

	if req.SubscriberCode != "" {
		sub.HotmartSubscriberCode = req.SubscriberCode
	}
	if req.NextChargeAt != nil {
		sub.NextChargeAt = req.NextChargeAt
	}
	if req.ExpiresAt != nil {
		sub.ExpiresAt = req.ExpiresAt
	}

	if err := s.attachPlan(sub, req.PlanCode); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// applySwitchPlan implements the SWITCH_PLAN flow with its fail-fast 404
// semantics: user, current subscription and incoming plan must all resolve,
// the plan must carry a Hotmart code and the subscription a subscriber code.
// Nothing is persisted until every check passed.
func (s *Service) applySwitchPlan(user *models.User, sub *models.Subscription, req *hotmart.TransitionRequest) (*models.Subscription, error) {
	if user == nil {
		return nil, &NotFoundError{Entity: "usuário", Ref: subscriberRef(req)}
	}
	if sub == nil {
		return nil, &NotFoundError{Entity: "assinatura", Ref: subscriberRef(req)}
	}
	if sub.HotmartSubscriberCode == "" {
		return nil, &NotFoundError{Entity: "assinante", Ref: subscriberRef(req)}
	}
	if req.PlanCode == "" {
		return nil, &ValidationError{Msg: "switch-plan payload has no incoming plan code"}
	}
	if req.PreviousPlanCode != "" {
		if _, err := s.repo.GetPlanByHotmartCode(req.PreviousPlanCode); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "plano", Ref: req.PreviousPlanCode}
			}
			return nil, err
		}
	}

	plan, err := s.repo.GetPlanByHotmartCode(req.PlanCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "plano", Ref: req.PlanCode}
		}
		return nil, err
	}
	if plan.HotmartCode == "" {
		return nil, &NotFoundError{Entity: "plano", Ref: plan.Name}
	}

	sub.PlanID = plan.ID
	sub.PlanName = plan.Name
	sub.PlanHotmartCode = plan.HotmartCode
	sub.EnabledFeatures = encodeFeatureCodes(plan.FeatureCodes())

	// Status stays as-is unless the payload also signals a change.
	if hinted := models.NormalizeSubscriptionStatus(req.StatusHint); hinted != "" && hinted != sub.Status {
		sub.Status = hinted
	}

	if err := s.repo.UpsertSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// resolveSubscriber locates the target user and their subscription, first by
// provider subscriber code, then by buyer email. A missing subscription is
// not an error here; activation events create one.
func (s *Service) resolveSubscriber(req *hotmart.TransitionRequest) (*models.User, *models.Subscription, error) {
	if req.SubscriberCode != "" {
		sub, err := s.repo.GetSubscriptionBySubscriberCode(req.SubscriberCode)
		if err == nil {
			user, uerr := s.repo.GetUserByID(sub.UserID)
			if uerr != nil {
				return nil, nil, uerr
			}
			return user, sub, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
	}

	if req.BuyerEmail == "" {
		return nil, nil, &NotFoundError{Entity: "usuário", Ref: subscriberRef(req)}
	}
	user, err := s.repo.GetUserByEmail(req.BuyerEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Entity: "usuário", Ref: req.BuyerEmail}
		}
		return nil, nil, err
	}

	sub, err := s.repo.GetSubscriptionByUserID(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, nil, nil
		}
		return nil, nil, err
	}
	return user, sub, nil
}

// attachPlan fills the plan references and the cached feature set when the
// payload names a plan; events without a plan code keep whatever the
// subscription already carries.
func (s *Service) attachPlan(sub *models.Subscription, planCode string) error {
	if planCode == "" {
		return nil
	}
	plan, err := s.repo.GetPlanByHotmartCode(planCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "plano", Ref: planCode}
		}
		return err
	}
	sub.PlanID = plan.ID
	sub.PlanName = plan.Name
	sub.PlanHotmartCode = plan.HotmartCode
	sub.EnabledFeatures = encodeFeatureCodes(plan.FeatureCodes())
	return nil
}

// RecordWebhookEvent persists webhook payloads idempotently, keyed by the
// provider event id (or a payload hash when the provider sent none). The
// delivering peer's IP is stored alongside for auditing.
func (s *Service) RecordWebhookEvent(req *hotmart.TransitionRequest, sourceIP string) (bool, *models.WebhookEvent, error) {
	eventID := strings.TrimSpace(req.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(req.RawJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Provider:        models.WebhookProviderHotmart,
		ProviderEventID: eventID,
		EventType:       req.Event,
		PayloadJSON:     req.RawJSON,
		SourceIP:        sourceIP,
		TokenValid:      req.TokenValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

func subscriberRef(req *hotmart.TransitionRequest) string {
	if req.SubscriberCode != "" {
		return req.SubscriberCode
	}
	return req.BuyerEmail
}

func encodeFeatureCodes(codes []string) string {
	if len(codes) == 0 {
		return "[]"
	}
	b, err := json.Marshal(codes)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeFeatureCodes unpacks the cached enabled-feature list from a
// subscription record. Malformed or empty values decode to nil.
func DecodeFeatureCodes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil
	}
	return codes
}
