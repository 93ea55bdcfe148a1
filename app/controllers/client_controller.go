package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/app/repository"
	"github.com/festaflow/festaflow/internal/pkg/database"
	"github.com/festaflow/festaflow/internal/pkg/entitlements"
	"github.com/festaflow/festaflow/internal/pkg/usercontext"
)

type clientRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	EntryChannelID *uint  `json:"entry_channel_id"`
	Notes          string `json:"notes"`
}

// HandleClientCreate creates a client for the tenant, enforcing the plan's
// client cap.
func HandleClientCreate(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var req clientRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}

	resolver := entitlements.NewResolver(database.GetDB())
	allowed, err := resolver.CanCreateClient(userID, false)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao verificar limites do plano")
	}
	if !allowed {
		return jsonError(c, fiber.StatusForbidden, "limit_reached", "Limite de clientes do plano atingido")
	}

	client := &models.Client{
		UserID:         userID,
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		Phone:          strings.TrimSpace(req.Phone),
		Address:        strings.TrimSpace(req.Address),
		City:           strings.TrimSpace(req.City),
		State:          strings.TrimSpace(req.State),
		EntryChannelID: req.EntryChannelID,
		Notes:          req.Notes,
	}
	if err := client.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := repository.GetGlobalFactory().GetClientRepository().Create(client); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao criar cliente")
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

// HandleClientList returns the tenant's clients, paginated, with optional
// ?q= search.
func HandleClientList(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	repo := repository.GetGlobalFactory().GetClientRepository()

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		clients, err := repo.Search(userID, q)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao buscar clientes")
		}
		return c.JSON(fiber.Map{"clients": clients, "total": len(clients)})
	}

	offset, limit := parsePagination(c)
	clients, err := repo.ListByUser(userID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar clientes")
	}
	total, err := repo.CountByUser(userID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao contar clientes")
	}
	return c.JSON(fiber.Map{"clients": clients, "total": total})
}

// HandleClientGet returns one client by id.
func HandleClientGet(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := parseUintParam(c, "id")

	client, err := repository.GetGlobalFactory().GetClientRepository().GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Cliente não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar cliente")
	}
	return c.JSON(client)
}

// HandleClientUpdate updates a client's fields.
func HandleClientUpdate(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := parseUintParam(c, "id")

	repo := repository.GetGlobalFactory().GetClientRepository()
	client, err := repo.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Cliente não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar cliente")
	}

	var req clientRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}

	client.Name = strings.TrimSpace(req.Name)
	client.Email = req.Email
	client.Phone = strings.TrimSpace(req.Phone)
	client.Address = strings.TrimSpace(req.Address)
	client.City = strings.TrimSpace(req.City)
	client.State = strings.TrimSpace(req.State)
	client.EntryChannelID = req.EntryChannelID
	client.Notes = req.Notes
	if err := client.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := repo.Update(client); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao atualizar cliente")
	}
	return c.JSON(client)
}

// HandleClientDelete soft deletes a client. Events referencing the client
// keep their client_id; history stays intact.
func HandleClientDelete(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := parseUintParam(c, "id")

	err := repository.GetGlobalFactory().GetClientRepository().Delete(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Cliente não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao remover cliente")
	}
	return c.JSON(fiber.Map{"message": "Cliente removido"})
}
