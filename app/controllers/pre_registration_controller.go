package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/festaflow/festaflow/internal/pkg/database"
	"github.com/festaflow/festaflow/internal/pkg/env"
	"github.com/festaflow/festaflow/internal/pkg/hcaptcha"
	"github.com/festaflow/festaflow/internal/pkg/metrics/counter"
	"github.com/festaflow/festaflow/internal/pkg/preregistration"
	"github.com/festaflow/festaflow/internal/pkg/usercontext"
)

var fillValidator = validator.New()

type createLinkRequest struct {
	Email   string `json:"email"`
	TTLDays int    `json:"ttl_days"`
}

// HandlePreRegistrationCreate issues a new public intake link for the tenant.
func HandlePreRegistrationCreate(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var req createLinkRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
		}
	}

	svc := preregistration.NewService(database.GetDB())
	pre, err := svc.CreateLink(userID, req.Email, time.Duration(req.TTLDays)*24*time.Hour)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao criar pré-cadastro")
	}

	return c.Status(fiber.StatusCreated).JSON(pre)
}

// HandlePreRegistrationList returns the tenant's pre-registrations.
func HandlePreRegistrationList(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	svc := preregistration.NewService(database.GetDB())
	pres, err := svc.ListByUser(userID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar pré-cadastros")
	}
	return c.JSON(fiber.Map{"pre_cadastros": pres})
}

// HandlePreRegistrationPublicGet serves the public form data by token. Views
// are counted through Redis and drained to the row later.
func HandlePreRegistrationPublicGet(c *fiber.Ctx) error {
	token := c.Params("token")

	svc := preregistration.NewService(database.GetDB())
	pre, err := svc.GetByToken(token)
	if err != nil {
		return mapPreRegistrationError(c, err)
	}

	if err := counter.AddPreRegistrationView(pre.ID); err != nil {
		log.Printf("pre-registration %d: view counter failed: %v", pre.ID, err)
	}

	return c.JSON(pre)
}

// HandlePreRegistrationPublicFill accepts the prospect's form submission.
// Captcha-gated outside dev; the endpoint is reachable without a session.
func HandlePreRegistrationPublicFill(c *fiber.Ctx) error {
	token := c.Params("token")

	var in struct {
		preregistration.FillInput
		Captcha string `json:"h-captcha-response"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}

	if !env.IsDev() {
		valid, err := hcaptcha.Verify(in.Captcha)
		if err != nil || !valid {
			return jsonError(c, fiber.StatusBadRequest, "captcha_failed", "Validação do captcha falhou")
		}
	}

	if err := fillValidator.Struct(in.FillInput); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	svc := preregistration.NewService(database.GetDB())
	pre, err := svc.Fill(token, in.FillInput)
	if err != nil {
		return mapPreRegistrationError(c, err)
	}
	return c.JSON(pre)
}

// HandlePreRegistrationIgnore marks a record IGNORADO.
func HandlePreRegistrationIgnore(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := parseUintParam(c, "id")

	svc := preregistration.NewService(database.GetDB())
	pre, err := svc.Ignore(userID, id)
	if err != nil {
		return mapPreRegistrationError(c, err)
	}
	return c.JSON(pre)
}

type renewRequest struct {
	TTLDays int `json:"ttl_days"`
}

// HandlePreRegistrationRenew extends the deadline and re-opens the record.
func HandlePreRegistrationRenew(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := parseUintParam(c, "id")

	var req renewRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
		}
	}

	svc := preregistration.NewService(database.GetDB())
	pre, err := svc.Renew(userID, id, time.Duration(req.TTLDays)*24*time.Hour)
	if err != nil {
		return mapPreRegistrationError(c, err)
	}
	return c.JSON(pre)
}

// HandlePreRegistrationConvert materializes a filled record into a client
// and event.
func HandlePreRegistrationConvert(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := parseUintParam(c, "id")

	svc := preregistration.NewService(database.GetDB())
	result, err := svc.Convert(userID, id)
	if err != nil {
		if errors.Is(err, preregistration.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", err.Error())
		}
		return jsonError(c, fiber.StatusBadRequest, "conversion_failed", err.Error())
	}
	return c.JSON(result)
}

// HandlePreRegistrationDelete removes an unconverted record.
func HandlePreRegistrationDelete(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := parseUintParam(c, "id")

	svc := preregistration.NewService(database.GetDB())
	if err := svc.Delete(userID, id); err != nil {
		return mapPreRegistrationError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Pré-cadastro removido"})
}

func mapPreRegistrationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, preregistration.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, preregistration.ErrExpired):
		return jsonError(c, fiber.StatusGone, "expired", err.Error())
	case errors.Is(err, preregistration.ErrAlreadyFilled),
		errors.Is(err, preregistration.ErrImmutable),
		errors.Is(err, preregistration.ErrInvalidTransfer):
		return jsonError(c, fiber.StatusConflict, "invalid_state", err.Error())
	default:
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}
}
