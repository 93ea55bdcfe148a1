package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/festaflow/festaflow/internal/pkg/env"
	"github.com/festaflow/festaflow/internal/pkg/usercontext"
)

// AdminGate protects operational endpoints (seed, migrations, webhook mock).
// Access is granted by an admin session OR by presenting the shared admin
// secret in X-API-Key / Authorization. In dev the gate is open so local
// tooling works without a configured secret.
func AdminGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if env.IsDev() {
			return c.Next()
		}

		if isAdmin, ok := c.Locals(usercontext.KeyIsAdmin).(bool); ok && isAdmin {
			return c.Next()
		}

		secret := strings.TrimSpace(env.GetEnv("ADMIN_API_SECRET", ""))
		presented := extractAPIKeyFromHeader(c)
		if secret != "" && presented != "" &&
			subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) == 1 {
			return c.Next()
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "admin credentials required",
		})
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
