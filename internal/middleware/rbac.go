package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/paperdrop-api/internal/authz"
	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/utils"
)

// RequireRole admits only the listed roles. No role implies another.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalUserRole).(models.Role)
		if !ok || role == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// Require guards a route with the roles the authorization matrix grants for action.
func Require(action authz.Action) fiber.Handler {
	return RequireRole(authz.RolesFor(action)...)
}
