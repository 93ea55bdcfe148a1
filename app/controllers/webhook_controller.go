package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/internal/pkg/database"
	"github.com/festaflow/festaflow/internal/pkg/env"
	"github.com/festaflow/festaflow/internal/pkg/hotmart"
	"github.com/festaflow/festaflow/internal/pkg/subscription"
)

// HandleHotmartWebhook receives Hotmart postback deliveries. Every delivery
// is persisted before processing; duplicates (same provider event id) are
// acknowledged without reprocessing so Hotmart's retries stay harmless.
func HandleHotmartWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	secret := env.GetEnv("HOTMART_HOTTOK", "")
	tokenValid := hotmart.VerifyHottok(c.Get(hotmart.HottokHeader), secret)

	req, err := hotmart.ParseEvent(rawBody)
	if err != nil {
		if errors.Is(err, hotmart.ErrUnsupportedEvent) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":            "unsupported_event",
				"message":          err.Error(),
				"supported_events": hotmart.SupportedEvents,
			})
		}
		return jsonError(c, fiber.StatusBadRequest, "invalid_payload", err.Error())
	}
	req.TokenValid = tokenValid

	svc := subscription.NewServiceFromDB(database.GetDB())
	return processHotmartEvent(c, svc, req, true)
}

type mockWebhookRequest struct {
	Event          string `json:"event"`
	SubscriberCode string `json:"subscriber_code"`
	UserEmail      string `json:"email"`
	PlanCode       string `json:"plan_code"`
	NewPlanCode    string `json:"new_plan_code"`
	Trial          bool   `json:"trial"`
}

// mockRequestFromCtx reads the mock inputs from query parameters; a JSON
// body carrying the same fields works as a fallback when no event query
// parameter is present.
func mockRequestFromCtx(c *fiber.Ctx) mockWebhookRequest {
	req := mockWebhookRequest{
		Event:          c.Query("event"),
		SubscriberCode: c.Query("subscriberCode"),
		UserEmail:      c.Query("email"),
		PlanCode:       c.Query("planCode"),
		NewPlanCode:    c.Query("newPlanCode"),
		Trial:          c.QueryBool("trial", false),
	}
	if strings.TrimSpace(req.Event) == "" {
		_ = c.BodyParser(&req)
	}
	return req
}

// HandleHotmartWebhookMock builds a Hotmart-shaped payload from live records
// and runs it through the normal pipeline. Reachable only behind the admin
// gate; it exists so the subscription flow can be exercised without real
// purchases.
func HandleHotmartWebhookMock(c *fiber.Ctx) error {
	req := mockRequestFromCtx(c)
	event := strings.ToUpper(strings.TrimSpace(req.Event))
	if !hotmart.IsSupportedEvent(event) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":            "unsupported_event",
			"message":          "evento não suportado: " + req.Event,
			"supported_events": hotmart.SupportedEvents,
		})
	}

	db := database.GetDB()
	svc := subscription.NewServiceFromDB(db)

	in, err := buildMockInput(db, event, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "usuário, assinatura ou plano não encontrado para o mock")
		}
		return jsonError(c, fiber.StatusBadRequest, "invalid_mock", err.Error())
	}

	payload, err := hotmart.BuildMockPayload(*in)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "falha ao montar payload de teste")
	}
	parsed, err := hotmart.ParseEvent(payload)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", err.Error())
	}
	parsed.TokenValid = true

	sub, duplicate, err := runHotmartPipeline(c, svc, parsed, false)
	if err != nil {
		return err
	}
	if duplicate {
		return c.JSON(mockSuccessResponse(parsed, nil, payload, true))
	}
	return c.JSON(mockSuccessResponse(parsed, sub, payload, false))
}

// mockSuccessResponse is the mock endpoint's success envelope: the event
// name, a human message and the synthetic payload that was fed through the
// pipeline.
func mockSuccessResponse(req *hotmart.TransitionRequest, sub *models.Subscription, payload []byte, duplicate bool) fiber.Map {
	message := "evento duplicado ignorado"
	if !duplicate && sub != nil {
		message = fmt.Sprintf("evento %s aplicado; assinatura agora %s", req.Event, sub.Status)
	}
	return fiber.Map{
		"success": true,
		"message": message,
		"event":   req.Event,
		"payload": json.RawMessage(payload),
	}
}

// processHotmartEvent is the record -> apply -> mark-processed flow for real
// deliveries, which always carry (and must pass) the hottok check.
func processHotmartEvent(c *fiber.Ctx, svc *subscription.Service, req *hotmart.TransitionRequest, enforceToken bool) error {
	sub, duplicate, err := runHotmartPipeline(c, svc, req, enforceToken)
	if err != nil {
		return err
	}
	if duplicate {
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	return c.JSON(fiber.Map{
		"ok":     true,
		"event":  req.Event,
		"status": sub.Status,
		"plan":   sub.PlanHotmartCode,
	})
}

// runHotmartPipeline records the delivery, verifies the token, applies the
// transition and marks the stored event processed. A non-nil error return
// means an error response was already written to the context.
func runHotmartPipeline(c *fiber.Ctx, svc *subscription.Service, req *hotmart.TransitionRequest, enforceToken bool) (*models.Subscription, bool, error) {
	created, stored, err := svc.RecordWebhookEvent(req, GetClientIP(c))
	if err != nil {
		return nil, false, jsonError(c, fiber.StatusInternalServerError, "webhook_persist_failed", "falha ao registrar evento")
	}
	if !created {
		return nil, true, nil
	}
	if enforceToken && !req.TokenValid {
		_ = svc.MarkWebhookProcessed(stored.ID, errors.New("invalid hottok"))
		return nil, false, jsonError(c, fiber.StatusUnauthorized, "invalid_token", "hottok inválido")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sub, applyErr := svc.Apply(ctx, req)
	_ = svc.MarkWebhookProcessed(stored.ID, applyErr)
	if applyErr != nil {
		var notFound *subscription.NotFoundError
		var validation *subscription.ValidationError
		switch {
		case errors.As(applyErr, &notFound):
			return nil, false, jsonError(c, fiber.StatusNotFound, "not_found", applyErr.Error())
		case errors.As(applyErr, &validation):
			return nil, false, jsonError(c, fiber.StatusBadRequest, "validation_failed", applyErr.Error())
		default:
			return nil, false, jsonError(c, fiber.StatusInternalServerError, "subscription_sync_failed", "falha ao aplicar evento")
		}
	}
	return sub, false, nil
}

// buildMockInput resolves real user, subscription and plan rows so the mock
// payload round-trips through the resolver the way a live delivery would.
// The subscriber is addressed by subscriberCode when given, by email
// otherwise.
func buildMockInput(db *gorm.DB, event string, req mockWebhookRequest) (*hotmart.MockInput, error) {
	repo := subscription.NewRepository(db)

	var user *models.User
	var sub *models.Subscription
	if code := strings.TrimSpace(req.SubscriberCode); code != "" {
		s, err := repo.GetSubscriptionBySubscriberCode(code)
		if err != nil {
			return nil, err
		}
		sub = s
		user, err = repo.GetUserByID(s.UserID)
		if err != nil {
			return nil, err
		}
	} else {
		u, err := repo.GetUserByEmail(strings.TrimSpace(req.UserEmail))
		if err != nil {
			return nil, err
		}
		user = u
		if s, err := repo.GetSubscriptionByUserID(user.ID); err == nil {
			sub = s
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	in := &hotmart.MockInput{
		Event:      event,
		BuyerEmail: user.Email,
		BuyerName:  user.Name,
		Trial:      req.Trial,
	}
	if sub != nil {
		in.SubscriberCode = sub.HotmartSubscriberCode
		in.PlanCode = sub.PlanHotmartCode
		in.PlanName = sub.PlanName
	}
	if in.SubscriberCode == "" {
		in.SubscriberCode = "MOCK-" + strings.ToUpper(strings.Split(user.Email, "@")[0])
	}

	if code := strings.TrimSpace(req.PlanCode); code != "" {
		plan, err := repo.GetPlanByHotmartCode(code)
		if err != nil {
			return nil, err
		}
		in.PlanCode = plan.HotmartCode
		in.PlanName = plan.Name
	}
	if in.PlanCode == "" {
		return nil, errors.New("informe planCode: o usuário não tem plano atual")
	}

	if event == hotmart.EventSwitchPlan {
		code := strings.TrimSpace(req.NewPlanCode)
		if code == "" {
			return nil, errors.New("SWITCH_PLAN exige newPlanCode")
		}
		plan, err := repo.GetPlanByHotmartCode(code)
		if err != nil {
			return nil, err
		}
		in.NewPlanCode = plan.HotmartCode
		in.NewPlanName = plan.Name
	}

	return in, nil
}
