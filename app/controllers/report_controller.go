package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/app/repository"
	"github.com/festaflow/festaflow/internal/pkg/preregistration"
	"github.com/festaflow/festaflow/internal/pkg/usercontext"
)

// HandleFinancialReport summarizes revenue, costs and margin over a date
// range (?from, ?to; defaults to the current month). Amounts are integer
// cents throughout.
func HandleFinancialReport(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	if raw := c.Query("from"); raw != "" {
		t, err := preregistration.NormalizeEventDate(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_date", err.Error())
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := preregistration.NormalizeEventDate(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_date", err.Error())
		}
		to = t.AddDate(0, 0, 1)
	}

	events, err := repository.GetGlobalFactory().GetEventRepository().ListByUserBetween(userID, from, to)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar eventos")
	}

	var (
		contracted int64
		received   int64
		pending    int64
		costs      int64
		byStatus   = map[string]int{}
	)
	for i := range events {
		ev := &events[i]
		byStatus[ev.Status]++
		if ev.Status == models.EventStatusCancelled {
			continue
		}
		contracted += ev.TotalCents
		for _, p := range ev.Payments {
			switch p.Status {
			case models.PaymentStatusPaid:
				received += p.AmountCents
			case models.PaymentStatusPending, models.PaymentStatusOverdue:
				pending += p.AmountCents
			}
		}
		for _, cost := range ev.Costs {
			costs += cost.AmountCents
		}
	}

	return c.JSON(fiber.Map{
		"periodo": fiber.Map{
			"de":  from.Format("2006-01-02"),
			"ate": to.AddDate(0, 0, -1).Format("2006-01-02"),
		},
		"eventos": fiber.Map{
			"total":      len(events),
			"por_status": byStatus,
		},
		"financeiro": fiber.Map{
			"contratado_cents": contracted,
			"recebido_cents":   received,
			"pendente_cents":   pending,
			"custos_cents":     costs,
			"margem_cents":     received - costs,
		},
	})
}
