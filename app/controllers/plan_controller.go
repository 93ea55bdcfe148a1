package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/app/repository"
	"github.com/festaflow/festaflow/internal/pkg/database"
	"github.com/festaflow/festaflow/internal/pkg/entitlements"
	"github.com/festaflow/festaflow/internal/pkg/subscription"
	"github.com/festaflow/festaflow/internal/pkg/usercontext"
)

// HandlePlanList returns the active plan catalog. Public: pricing pages
// consume it without a session.
func HandlePlanList(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().ListPlans(true)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar planos")
	}
	return c.JSON(fiber.Map{"plans": plans})
}

// HandleMySubscription returns the caller's subscription with resolved
// entitlements: status, plan, enabled features and numeric limits.
func HandleMySubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	if userCtx.IsAdmin {
		return c.JSON(fiber.Map{
			"is_admin": true,
			"message":  "Administradores não possuem assinatura",
		})
	}

	db := database.GetDB()
	var sub models.Subscription
	err := db.Where("user_id = ?", userCtx.UserID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{
				"subscription": nil,
				"entitled":     false,
			})
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar assinatura")
	}

	resolver := entitlements.NewResolver(db)
	limits := fiber.Map{}
	for _, resource := range []string{
		entitlements.ResourceEventsPerMonth,
		entitlements.ResourceClients,
		entitlements.ResourceUsers,
		entitlements.ResourceStorageGB,
	} {
		limit, err := resolver.LimitFor(userCtx.UserID, resource)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao resolver limites")
		}
		if limit.Unlimited {
			limits[resource] = nil
		} else {
			limits[resource] = limit.Value
		}
	}

	return c.JSON(fiber.Map{
		"subscription": fiber.Map{
			"status":             sub.Status,
			"plan":               sub.PlanName,
			"plan_hotmart_code":  sub.PlanHotmartCode,
			"payment_up_to_date": sub.PaymentUpToDate,
			"expires_at":         formatTimePtr(sub.ExpiresAt),
			"next_charge_at":     formatTimePtr(sub.NextChargeAt),
		},
		"entitled": sub.IsEntitling(),
		"features": subscription.DecodeFeatureCodes(sub.EnabledFeatures),
		"limits":   limits,
	})
}
