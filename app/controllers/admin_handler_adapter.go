package controllers

import (
	"github.com/festaflow/festaflow/app/repository"
	"github.com/gofiber/fiber/v2"
)

// Global admin controller instance
var adminController *AdminController

// InitializeAdminController initializes the global admin controller with repositories
func InitializeAdminController() {
	repos := repository.GetGlobalRepositories()
	adminController = NewAdminController(repos)
}

// GetAdminController returns the global admin controller instance
func GetAdminController() *AdminController {
	if adminController == nil {
		InitializeAdminController()
	}
	return adminController
}

// Adapter functions so the router can register plain handlers

// HandleAdminMigrateLegacySubscriptions - Adapter for the legacy subscription migration
func HandleAdminMigrateLegacySubscriptions(c *fiber.Ctx) error {
	return GetAdminController().HandleMigrateLegacySubscriptions(c)
}

// HandleAdminListUsers - Adapter for the admin user list
func HandleAdminListUsers(c *fiber.Ctx) error {
	return GetAdminController().HandleListUsers(c)
}

// HandleAdminListWebhookEvents - Adapter for the webhook event list
func HandleAdminListWebhookEvents(c *fiber.Ctx) error {
	return GetAdminController().HandleListWebhookEvents(c)
}
