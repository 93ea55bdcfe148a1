package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/app/repository"
	"github.com/festaflow/festaflow/internal/pkg/database"
	"github.com/festaflow/festaflow/internal/pkg/subscription"
)

// AdminController handles admin-only HTTP requests using repository pattern
type AdminController struct {
	repos *repository.Repositories
}

// NewAdminController creates a new admin controller with repository dependencies
func NewAdminController(repos *repository.Repositories) *AdminController {
	return &AdminController{
		repos: repos,
	}
}

type migrateRequest struct {
	DryRun bool `json:"dryRun"`
}

// HandleMigrateLegacySubscriptions runs the flattened-columns-to-consolidated
// subscription migration over every user. Re-runnable; dryRun reports what
// would change without writing.
func (ac *AdminController) HandleMigrateLegacySubscriptions(c *fiber.Ctx) error {
	var req migrateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
		}
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	report, err := svc.MigrateLegacyShapes(req.DryRun)
	if err != nil {
		log.Printf("[Admin] legacy subscription migration failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "migration_failed", "Falha ao executar migração")
	}

	log.Printf("[Admin] legacy subscription migration: processados=%d migrados=%d erros=%d dryRun=%v",
		report.TotalProcessed, report.Migrated, report.Errors, req.DryRun)

	message := "Migração executada"
	if req.DryRun {
		message = "Simulação executada (nenhuma alteração gravada)"
	}
	return c.JSON(fiber.Map{
		"success": report.Errors == 0,
		"message": message,
		"dryRun":  req.DryRun,
		"estatisticas": fiber.Map{
			"totalProcessados": report.TotalProcessed,
			"migrados":         report.Migrated,
			"erros":            report.Errors,
		},
		"detalhes": report.Details,
	})
}

// HandleListUsers returns a paginated user list with subscription state for
// support work.
func (ac *AdminController) HandleListUsers(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)

	users, err := ac.repos.User.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar usuários")
	}
	total, err := ac.repos.User.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao contar usuários")
	}

	db := database.GetDB()
	items := make([]fiber.Map, 0, len(users))
	for i := range users {
		u := &users[i]
		item := fiber.Map{
			"id":           u.ID,
			"name":         u.Name,
			"email":        u.Email,
			"company_name": u.CompanyName,
			"role":         u.Role,
			"status":       u.Status,
			"created_at":   u.CreatedAt,
		}
		var sub models.Subscription
		if err := db.Where("user_id = ?", u.ID).First(&sub).Error; err == nil {
			item["subscription"] = fiber.Map{
				"status":             sub.Status,
				"plan":               sub.PlanName,
				"plan_hotmart_code":  sub.PlanHotmartCode,
				"payment_up_to_date": sub.PaymentUpToDate,
				"expires_at":         formatTimePtr(sub.ExpiresAt),
				"next_charge_at":     formatTimePtr(sub.NextChargeAt),
			}
		}
		items = append(items, item)
	}

	return c.JSON(fiber.Map{"total": total, "users": items})
}

// HandleListWebhookEvents returns recent webhook deliveries for debugging
// subscription sync issues.
func (ac *AdminController) HandleListWebhookEvents(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)

	var events []models.WebhookEvent
	err := database.GetDB().
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&events).Error
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar eventos")
	}

	items := make([]fiber.Map, 0, len(events))
	for i := range events {
		e := &events[i]
		items = append(items, fiber.Map{
			"id":                e.ID,
			"provider":          e.Provider,
			"provider_event_id": e.ProviderEventID,
			"event_type":        e.EventType,
			"token_valid":       e.TokenValid,
			"processed_at":      formatTimePtr(e.ProcessedAt),
			"processing_error":  e.ProcessingError,
			"created_at":        e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"events": items})
}
