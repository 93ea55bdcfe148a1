package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/app/repository"
	"github.com/festaflow/festaflow/internal/pkg/database"
	"github.com/festaflow/festaflow/internal/pkg/entitlements"
	"github.com/festaflow/festaflow/internal/pkg/preregistration"
	"github.com/festaflow/festaflow/internal/pkg/usercontext"
)

type eventRequest struct {
	ClientID       uint   `json:"client_id"`
	EventTypeID    *uint  `json:"event_type_id"`
	Title          string `json:"title"`
	Date           string `json:"date"`
	Venue          string `json:"venue"`
	Address        string `json:"address"`
	GuestCount     int    `json:"guest_count"`
	Status         string `json:"status"`
	TotalCents     int64  `json:"total_cents"`
	PaymentDueDate string `json:"payment_due_date"`
	Notes          string `json:"notes"`
}

var eventStatuses = map[string]bool{
	models.EventStatusScheduled: true,
	models.EventStatusConfirmed: true,
	models.EventStatusDone:      true,
	models.EventStatusCancelled: true,
}

// HandleEventCreate books a new event, enforcing the plan's monthly event cap
// for the month the event lands in.
func HandleEventCreate(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}

	date, err := preregistration.NormalizeEventDate(req.Date)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_date", err.Error())
	}

	repos := repository.GetGlobalFactory().GetRepositories()
	if _, err := repos.Client.GetByID(userID, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Cliente não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar cliente")
	}

	resolver := entitlements.NewResolver(database.GetDB())
	allowed, err := resolver.CanCreateEvent(userID, date, false)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao verificar limites do plano")
	}
	if !allowed {
		return jsonError(c, fiber.StatusForbidden, "limit_reached", "Limite de eventos do mês atingido")
	}

	event := &models.Event{
		UserID:      userID,
		ClientID:    req.ClientID,
		EventTypeID: req.EventTypeID,
		Title:       strings.TrimSpace(req.Title),
		Date:        date,
		Venue:       strings.TrimSpace(req.Venue),
		Address:     strings.TrimSpace(req.Address),
		GuestCount:  req.GuestCount,
		Status:      models.EventStatusScheduled,
		TotalCents:  req.TotalCents,
		Notes:       req.Notes,
	}
	if req.PaymentDueDate != "" {
		due, err := preregistration.NormalizeEventDate(req.PaymentDueDate)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_date", err.Error())
		}
		event.PaymentDueDate = &due
	}
	if err := event.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := repos.Event.Create(event); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao criar evento")
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// HandleEventList returns the tenant's events, paginated, or a date-range
// slice when ?from and ?to are given.
func HandleEventList(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	repo := repository.GetGlobalFactory().GetEventRepository()

	fromRaw, toRaw := c.Query("from"), c.Query("to")
	if fromRaw != "" && toRaw != "" {
		from, err := preregistration.NormalizeEventDate(fromRaw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_date", err.Error())
		}
		to, err := preregistration.NormalizeEventDate(toRaw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_date", err.Error())
		}
		events, err := repo.ListByUserBetween(userID, from, to.AddDate(0, 0, 1))
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar eventos")
		}
		return c.JSON(fiber.Map{"events": events, "total": len(events)})
	}

	offset, limit := parsePagination(c)
	events, err := repo.ListByUser(userID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao listar eventos")
	}
	total, err := repo.CountByUser(userID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao contar eventos")
	}
	return c.JSON(fiber.Map{"events": events, "total": total})
}

// HandleEventGet returns one event with payments, costs and services.
func HandleEventGet(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := parseUintParam(c, "id")

	event, err := repository.GetGlobalFactory().GetEventRepository().GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Evento não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar evento")
	}
	return c.JSON(event)
}

// HandleEventUpdate updates an event's fields, including status moves.
func HandleEventUpdate(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := parseUintParam(c, "id")

	repo := repository.GetGlobalFactory().GetEventRepository()
	event, err := repo.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Evento não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar evento")
	}

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}

	if req.Date != "" {
		date, err := preregistration.NormalizeEventDate(req.Date)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_date", err.Error())
		}
		event.Date = date
	}
	if req.Status != "" {
		status := strings.ToUpper(strings.TrimSpace(req.Status))
		if !eventStatuses[status] {
			return jsonError(c, fiber.StatusBadRequest, "invalid_status", "Status de evento inválido: "+req.Status)
		}
		event.Status = status
	}
	if req.Title != "" {
		event.Title = strings.TrimSpace(req.Title)
	}
	if req.Venue != "" {
		event.Venue = strings.TrimSpace(req.Venue)
	}
	if req.Address != "" {
		event.Address = strings.TrimSpace(req.Address)
	}
	if req.GuestCount > 0 {
		event.GuestCount = req.GuestCount
	}
	if req.TotalCents > 0 {
		event.TotalCents = req.TotalCents
	}
	if req.EventTypeID != nil {
		event.EventTypeID = req.EventTypeID
	}
	if req.Notes != "" {
		event.Notes = req.Notes
	}
	if req.PaymentDueDate != "" {
		due, err := preregistration.NormalizeEventDate(req.PaymentDueDate)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_date", err.Error())
		}
		event.PaymentDueDate = &due
	}
	if err := event.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := repo.Update(event); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao atualizar evento")
	}
	return c.JSON(event)
}

// HandleEventDelete removes an event with its payments, costs and services.
func HandleEventDelete(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := parseUintParam(c, "id")

	err := repository.GetGlobalFactory().GetEventRepository().Delete(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Evento não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao remover evento")
	}
	return c.JSON(fiber.Map{"message": "Evento removido"})
}

type paymentRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
	PaidAt      string `json:"paid_at"`
	Notes       string `json:"notes"`
}

var paymentStatuses = map[string]bool{
	models.PaymentStatusPending:  true,
	models.PaymentStatusPaid:     true,
	models.PaymentStatusOverdue:  true,
	models.PaymentStatusRefunded: true,
}

// HandleEventPaymentAdd records an installment under an event.
func HandleEventPaymentAdd(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	eventID := parseUintParam(c, "id")

	repo := repository.GetGlobalFactory().GetEventRepository()
	if _, err := repo.GetByID(userID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Evento não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar evento")
	}

	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}
	if req.AmountCents <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "amount_cents deve ser positivo")
	}

	payment := &models.Payment{
		EventID:     eventID,
		UserID:      userID,
		AmountCents: req.AmountCents,
		Method:      strings.TrimSpace(req.Method),
		Status:      models.PaymentStatusPending,
		Notes:       req.Notes,
	}
	if req.Status != "" {
		status := strings.ToUpper(strings.TrimSpace(req.Status))
		if !paymentStatuses[status] {
			return jsonError(c, fiber.StatusBadRequest, "invalid_status", "Status de pagamento inválido: "+req.Status)
		}
		payment.Status = status
	}
	if t, ok := parseOptionalDate(req.DueDate); ok {
		payment.DueDate = t
	}
	if t, ok := parseOptionalDate(req.PaidAt); ok {
		payment.PaidAt = t
		if req.Status == "" {
			payment.Status = models.PaymentStatusPaid
		}
	}

	if err := repo.AddPayment(payment); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao registrar pagamento")
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// HandleEventPaymentDelete removes an installment.
func HandleEventPaymentDelete(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	eventID := parseUintParam(c, "id")
	paymentID := parseUintParam(c, "paymentId")

	err := repository.GetGlobalFactory().GetEventRepository().DeletePayment(userID, eventID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Pagamento não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao remover pagamento")
	}
	return c.JSON(fiber.Map{"message": "Pagamento removido"})
}

type costRequest struct {
	CostTypeID  *uint  `json:"cost_type_id"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	PaidAt      string `json:"paid_at"`
}

// HandleEventCostAdd books an expense against an event.
func HandleEventCostAdd(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	eventID := parseUintParam(c, "id")

	repo := repository.GetGlobalFactory().GetEventRepository()
	if _, err := repo.GetByID(userID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Evento não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar evento")
	}

	var req costRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}
	if req.AmountCents <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "amount_cents deve ser positivo")
	}
	if strings.TrimSpace(req.Description) == "" {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "description é obrigatório")
	}

	cost := &models.Cost{
		EventID:     eventID,
		UserID:      userID,
		CostTypeID:  req.CostTypeID,
		Description: strings.TrimSpace(req.Description),
		AmountCents: req.AmountCents,
	}
	if t, ok := parseOptionalDate(req.PaidAt); ok {
		cost.PaidAt = t
	}

	if err := repo.AddCost(cost); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao registrar custo")
	}
	return c.Status(fiber.StatusCreated).JSON(cost)
}

// HandleEventCostDelete removes an expense.
func HandleEventCostDelete(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	eventID := parseUintParam(c, "id")
	costID := parseUintParam(c, "costId")

	err := repository.GetGlobalFactory().GetEventRepository().DeleteCost(userID, eventID, costID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Custo não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao remover custo")
	}
	return c.JSON(fiber.Map{"message": "Custo removido"})
}

type eventServiceRequest struct {
	ServiceTypeID uint   `json:"service_type_id"`
	Description   string `json:"description"`
	PriceCents    *int64 `json:"price_cents"`
	Quantity      int    `json:"quantity"`
}

// HandleEventServiceAdd attaches a catalog service to an event. Price
// defaults to the service type's default when not overridden.
func HandleEventServiceAdd(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	eventID := parseUintParam(c, "id")

	repos := repository.GetGlobalFactory().GetRepositories()
	if _, err := repos.Event.GetByID(userID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Evento não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar evento")
	}

	var req eventServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}

	var serviceType models.ServiceType
	err := database.GetDB().Where("id = ? AND user_id = ?", req.ServiceTypeID, userID).First(&serviceType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Tipo de serviço não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao carregar tipo de serviço")
	}

	service := &models.EventService{
		EventID:       eventID,
		UserID:        userID,
		ServiceTypeID: serviceType.ID,
		Description:   strings.TrimSpace(req.Description),
		PriceCents:    serviceType.DefaultPriceCents,
		Quantity:      1,
	}
	if service.Description == "" {
		service.Description = serviceType.Name
	}
	if req.PriceCents != nil {
		service.PriceCents = *req.PriceCents
	}
	if req.Quantity > 0 {
		service.Quantity = req.Quantity
	}

	if err := repos.Event.AddService(service); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao adicionar serviço")
	}
	return c.Status(fiber.StatusCreated).JSON(service)
}

// HandleEventServiceDelete detaches a service from an event.
func HandleEventServiceDelete(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	eventID := parseUintParam(c, "id")
	serviceID := parseUintParam(c, "serviceId")

	err := repository.GetGlobalFactory().GetEventRepository().DeleteService(userID, eventID, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Serviço não encontrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao remover serviço")
	}
	return c.JSON(fiber.Map{"message": "Serviço removido"})
}

// parseOptionalDate parses an optional date string, returning ok=false when
// empty and an ignored failure when malformed.
func parseOptionalDate(raw string) (*time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	t, err := preregistration.NormalizeEventDate(raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
