package router

import (
	"github.com/festaflow/festaflow/app/controllers"
	"github.com/festaflow/festaflow/internal/pkg/middleware"
	"github.com/festaflow/festaflow/internal/pkg/session"
	"github.com/festaflow/festaflow/internal/pkg/statistics"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize admin controller with repositories
	controllers.InitializeAdminController()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/stats", func(c *fiber.Ctx) error {
		data := statistics.GetStatisticsData()
		return c.JSON(fiber.Map{
			"total_users":  data.TotalUsers,
			"total_events": data.TotalEvents,
			"events_today": data.EventsToday,
		})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
