package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/internal/pkg/hotmart"
)

func TestMockRequestFromCtx_QueryParameters(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	var got mockWebhookRequest
	app.Post("/mock", func(c *fiber.Ctx) error {
		got = mockRequestFromCtx(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST",
		"/mock?event=SWITCH_PLAN&subscriberCode=SUB-1&email=maria%40exemplo.com&planCode=FF-PRO-M&newPlanCode=FF-PREMIUM-M&trial=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "SWITCH_PLAN", got.Event)
	assert.Equal(t, "SUB-1", got.SubscriberCode)
	assert.Equal(t, "maria@exemplo.com", got.UserEmail)
	assert.Equal(t, "FF-PRO-M", got.PlanCode)
	assert.Equal(t, "FF-PREMIUM-M", got.NewPlanCode)
	assert.True(t, got.Trial)
}

func TestMockRequestFromCtx_BodyFallback(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	var got mockWebhookRequest
	app.Post("/mock", func(c *fiber.Ctx) error {
		got = mockRequestFromCtx(c)
		return c.SendStatus(fiber.StatusOK)
	})

	body := `{"event":"PURCHASE_APPROVED","email":"maria@exemplo.com","plan_code":"FF-PRO-M"}`
	req := httptest.NewRequest("POST", "/mock", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "PURCHASE_APPROVED", got.Event)
	assert.Equal(t, "maria@exemplo.com", got.UserEmail)
	assert.Equal(t, "FF-PRO-M", got.PlanCode)
}

func TestHandleHotmartWebhookMock_UnsupportedEvent(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Post("/mock", HandleHotmartWebhookMock)

	req := httptest.NewRequest("POST", "/mock?event=NOT_A_THING&email=maria%40exemplo.com", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "supported_events")
}

func TestMockSuccessResponse_Shape(t *testing.T) {
	t.Parallel()

	req := &hotmart.TransitionRequest{Event: hotmart.EventPurchaseApproved}
	sub := &models.Subscription{Status: models.SubscriptionStatusActive}
	payload := []byte(`{"event":"PURCHASE_APPROVED"}`)

	resp := mockSuccessResponse(req, sub, payload, false)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "PURCHASE_APPROVED", resp["event"])
	assert.Contains(t, resp["message"], models.SubscriptionStatusActive)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"payload":{"event":"PURCHASE_APPROVED"}`,
		"the synthetic payload is echoed back verbatim, not re-encoded as a string")

	dup := mockSuccessResponse(req, nil, payload, true)
	assert.Equal(t, true, dup["success"])
	assert.Equal(t, "evento duplicado ignorado", dup["message"])
}

func TestGetClientIP_HeaderPrecedence(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	var got string
	app.Post("/ip", func(c *fiber.Ctx) error {
		got = GetClientIP(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/ip", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.4", got)

	req = httptest.NewRequest("POST", "/ip", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	_, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", got, "the CDN header wins over X-Forwarded-For")
}
