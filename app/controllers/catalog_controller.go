package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/app/repository"
	"github.com/festaflow/festaflow/internal/pkg/usercontext"
)

// The four catalog entities share one request/lifecycle shape; the parse
// helpers at the bottom keep the per-entity handlers thin.

type catalogNameRequest struct {
	Name              string `json:"name"`
	DefaultPriceCents int64  `json:"default_price_cents"`
}

type catalogActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// HandleEventTypeCreate creates an event type for the tenant.
func HandleEventTypeCreate(c *fiber.Ctx) error {
	userID, name, _, err := parseCatalogCreate(c)
	if err != nil {
		return err
	}
	et := &models.EventType{UserID: userID, Name: name, IsActive: true}
	if err := repository.GetGlobalFactory().GetCatalogRepository().CreateEventType(et); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao criar tipo de evento")
	}
	return c.Status(fiber.StatusCreated).JSON(et)
}

// HandleEventTypeList lists the tenant's event types.
func HandleEventTypeList(c *fiber.Ctx) error {
	items, err := repository.GetGlobalFactory().GetCatalogRepository().
		ListEventTypes(usercontext.GetUserID(c), c.QueryBool("active_only", false))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar tipos de evento")
	}
	return c.JSON(fiber.Map{"items": items})
}

// HandleEventTypeSetActive toggles an event type.
func HandleEventTypeSetActive(c *fiber.Ctx) error {
	active, err := parseCatalogActive(c)
	if err != nil {
		return err
	}
	return mapCatalogToggle(c, repository.GetGlobalFactory().GetCatalogRepository().
		SetEventTypeActive(usercontext.GetUserID(c), parseUintParam(c, "id"), active))
}

// HandleCostTypeCreate creates a cost type for the tenant.
func HandleCostTypeCreate(c *fiber.Ctx) error {
	userID, name, _, err := parseCatalogCreate(c)
	if err != nil {
		return err
	}
	ct := &models.CostType{UserID: userID, Name: name, IsActive: true}
	if err := repository.GetGlobalFactory().GetCatalogRepository().CreateCostType(ct); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao criar tipo de custo")
	}
	return c.Status(fiber.StatusCreated).JSON(ct)
}

// HandleCostTypeList lists the tenant's cost types.
func HandleCostTypeList(c *fiber.Ctx) error {
	items, err := repository.GetGlobalFactory().GetCatalogRepository().
		ListCostTypes(usercontext.GetUserID(c), c.QueryBool("active_only", false))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar tipos de custo")
	}
	return c.JSON(fiber.Map{"items": items})
}

// HandleCostTypeSetActive toggles a cost type.
func HandleCostTypeSetActive(c *fiber.Ctx) error {
	active, err := parseCatalogActive(c)
	if err != nil {
		return err
	}
	return mapCatalogToggle(c, repository.GetGlobalFactory().GetCatalogRepository().
		SetCostTypeActive(usercontext.GetUserID(c), parseUintParam(c, "id"), active))
}

// HandleServiceTypeCreate creates a sellable service type for the tenant.
func HandleServiceTypeCreate(c *fiber.Ctx) error {
	userID, name, req, err := parseCatalogCreate(c)
	if err != nil {
		return err
	}
	st := &models.ServiceType{
		UserID:            userID,
		Name:              name,
		DefaultPriceCents: req.DefaultPriceCents,
		IsActive:          true,
	}
	if err := repository.GetGlobalFactory().GetCatalogRepository().CreateServiceType(st); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao criar tipo de serviço")
	}
	return c.Status(fiber.StatusCreated).JSON(st)
}

// HandleServiceTypeList lists the tenant's service types.
func HandleServiceTypeList(c *fiber.Ctx) error {
	items, err := repository.GetGlobalFactory().GetCatalogRepository().
		ListServiceTypes(usercontext.GetUserID(c), c.QueryBool("active_only", false))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar tipos de serviço")
	}
	return c.JSON(fiber.Map{"items": items})
}

// HandleServiceTypeSetActive toggles a service type.
func HandleServiceTypeSetActive(c *fiber.Ctx) error {
	active, err := parseCatalogActive(c)
	if err != nil {
		return err
	}
	return mapCatalogToggle(c, repository.GetGlobalFactory().GetCatalogRepository().
		SetServiceTypeActive(usercontext.GetUserID(c), parseUintParam(c, "id"), active))
}

// HandleEntryChannelCreate creates an entry channel for the tenant.
func HandleEntryChannelCreate(c *fiber.Ctx) error {
	userID, name, _, err := parseCatalogCreate(c)
	if err != nil {
		return err
	}
	ec := &models.EntryChannel{UserID: userID, Name: name, IsActive: true}
	if err := repository.GetGlobalFactory().GetCatalogRepository().CreateEntryChannel(ec); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao criar canal de entrada")
	}
	return c.Status(fiber.StatusCreated).JSON(ec)
}

// HandleEntryChannelList lists the tenant's entry channels.
func HandleEntryChannelList(c *fiber.Ctx) error {
	items, err := repository.GetGlobalFactory().GetCatalogRepository().
		ListEntryChannels(usercontext.GetUserID(c), c.QueryBool("active_only", false))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar canais de entrada")
	}
	return c.JSON(fiber.Map{"items": items})
}

// HandleEntryChannelSetActive toggles an entry channel.
func HandleEntryChannelSetActive(c *fiber.Ctx) error {
	active, err := parseCatalogActive(c)
	if err != nil {
		return err
	}
	return mapCatalogToggle(c, repository.GetGlobalFactory().GetCatalogRepository().
		SetEntryChannelActive(usercontext.GetUserID(c), parseUintParam(c, "id"), active))
}

func parseCatalogCreate(c *fiber.Ctx) (uint, string, catalogNameRequest, error) {
	userID := usercontext.GetUserID(c)

	var req catalogNameRequest
	if err := c.BodyParser(&req); err != nil {
		return 0, "", req, jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return 0, "", req, jsonError(c, fiber.StatusBadRequest, "validation_failed", "name deve ter ao menos 2 caracteres")
	}
	return userID, name, req, nil
}

func parseCatalogActive(c *fiber.Ctx) (bool, error) {
	var req catalogActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return false, jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}
	return req.IsActive, nil
}

func mapCatalogToggle(c *fiber.Ctx, err error) error {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Registro não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao atualizar registro")
	}
	return c.JSON(fiber.Map{"message": "Registro atualizado"})
}
