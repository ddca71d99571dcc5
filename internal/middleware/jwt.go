package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/utils"
)

// Request locals populated by Authenticate.
const (
	LocalUser     = "user"
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
)

// TokenParser verifies an access token and returns its subject.
type TokenParser interface {
	Parse(raw string) (uint, error)
}

// UserLoader resolves the account behind a token.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
}

// Authenticate validates the bearer token and loads the account it names.
// The role used for authorization is always the stored one, never a token claim.
func Authenticate(tokens TokenParser, users UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := tokens.Parse(tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "user no longer exists")
			}
			return err
		}

		if !user.Approved {
			return utils.SendError(c, fiber.StatusForbidden, "account pending admin approval")
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUserRole, user.Role)

		return c.Next()
	}
}

// CurrentUser returns the account stored by Authenticate.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(LocalUser).(models.User)
	return user, ok && user.ID != 0
}
