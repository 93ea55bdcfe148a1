package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/festaflow/festaflow/internal/pkg/database"
	"github.com/festaflow/festaflow/internal/pkg/seed"
)

// HandleSeedCatalog applies the in-code feature/plan catalog. With ?reset=true
// both tables are wiped first. Behind the admin gate; the upsert keys are
// feature codes and plan hotmart codes, so re-running is how catalog updates
// are rolled out.
func HandleSeedCatalog(c *fiber.Ctx) error {
	reset := c.QueryBool("reset", false)

	result, err := seed.Apply(database.GetDB(), reset)
	if err != nil {
		log.Printf("[Seed] catalog seed failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "seed_failed", err.Error())
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"resultado": result,
	})
}
