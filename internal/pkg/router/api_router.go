package router

import (
	"github.com/festaflow/festaflow/app/controllers"
	"github.com/festaflow/festaflow/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{Max: 120}))

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", controllers.HandleAuthRegister)
	auth.Get("/activate", controllers.HandleAuthActivate)
	auth.Post("/login", controllers.HandleAuthLogin)
	auth.Post("/logout", controllers.HandleAuthLogout)

	// Public, token-addressed pre-registration form
	public := api.Group("/public")
	public.Get("/pre-cadastro/:token", controllers.HandlePreRegistrationPublicGet)
	public.Post("/pre-cadastro/:token", controllers.HandlePreRegistrationPublicFill)

	// Public plan catalog for pricing pages
	api.Get("/planos", controllers.HandlePlanList)

	// Hotmart webhooks; hottok is checked inside, not via middleware, so
	// invalid deliveries are still recorded
	webhooks := api.Group("/webhooks")
	webhooks.Post("/hotmart", controllers.HandleHotmartWebhook)
	webhooks.Post("/hotmart/mock", middleware.AdminGate(), controllers.HandleHotmartWebhookMock)

	// Tenant routes (session required)
	tenant := api.Group("", middleware.RequireAuth)

	tenant.Get("/assinatura", controllers.HandleMySubscription)

	clients := tenant.Group("/clientes")
	clients.Post("/", controllers.HandleClientCreate)
	clients.Get("/", controllers.HandleClientList)
	clients.Get("/:id", controllers.HandleClientGet)
	clients.Put("/:id", controllers.HandleClientUpdate)
	clients.Delete("/:id", controllers.HandleClientDelete)

	events := tenant.Group("/eventos")
	events.Post("/", controllers.HandleEventCreate)
	events.Get("/", controllers.HandleEventList)
	events.Get("/:id", controllers.HandleEventGet)
	events.Put("/:id", controllers.HandleEventUpdate)
	events.Delete("/:id", controllers.HandleEventDelete)
	events.Post("/:id/pagamentos", controllers.HandleEventPaymentAdd)
	events.Delete("/:id/pagamentos/:paymentId", controllers.HandleEventPaymentDelete)
	events.Post("/:id/custos", controllers.HandleEventCostAdd)
	events.Delete("/:id/custos/:costId", controllers.HandleEventCostDelete)
	events.Post("/:id/servicos", controllers.HandleEventServiceAdd)
	events.Delete("/:id/servicos/:serviceId", controllers.HandleEventServiceDelete)

	pres := tenant.Group("/pre-cadastros")
	pres.Post("/", controllers.HandlePreRegistrationCreate)
	pres.Get("/", controllers.HandlePreRegistrationList)
	pres.Post("/:id/ignorar", controllers.HandlePreRegistrationIgnore)
	pres.Post("/:id/renovar", controllers.HandlePreRegistrationRenew)
	pres.Post("/:id/converter", controllers.HandlePreRegistrationConvert)
	pres.Delete("/:id", controllers.HandlePreRegistrationDelete)

	catalog := tenant.Group("/catalogo")
	catalog.Post("/tipos-evento", controllers.HandleEventTypeCreate)
	catalog.Get("/tipos-evento", controllers.HandleEventTypeList)
	catalog.Patch("/tipos-evento/:id", controllers.HandleEventTypeSetActive)
	catalog.Post("/tipos-custo", controllers.HandleCostTypeCreate)
	catalog.Get("/tipos-custo", controllers.HandleCostTypeList)
	catalog.Patch("/tipos-custo/:id", controllers.HandleCostTypeSetActive)
	catalog.Post("/tipos-servico", controllers.HandleServiceTypeCreate)
	catalog.Get("/tipos-servico", controllers.HandleServiceTypeList)
	catalog.Patch("/tipos-servico/:id", controllers.HandleServiceTypeSetActive)
	catalog.Post("/canais-entrada", controllers.HandleEntryChannelCreate)
	catalog.Get("/canais-entrada", controllers.HandleEntryChannelList)
	catalog.Patch("/canais-entrada/:id", controllers.HandleEntryChannelSetActive)

	tenant.Get("/relatorios/financeiro", controllers.HandleFinancialReport)

	// Operational endpoints behind the admin gate (session admin, shared
	// secret header, or dev)
	admin := api.Group("/admin", middleware.AdminGate())
	admin.Post("/migrate-user-assinatura-structure", controllers.HandleAdminMigrateLegacySubscriptions)
	admin.Get("/usuarios", controllers.HandleAdminListUsers)
	admin.Get("/webhook-events", controllers.HandleAdminListWebhookEvents)

	seed := api.Group("/seed", middleware.AdminGate())
	seed.Post("/funcionalidades-planos", controllers.HandleSeedCatalog)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
