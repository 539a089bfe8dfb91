package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/models"
	"github.com/gofiber/fiber/v2"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenVerifier resolves a bearer token to the user ID it carries.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder looks users up by ID.
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Protected verifies the bearer token, resolves the user it names and stores
// it for downstream handlers. Any failure stops the chain with a 401.
func Protected(tokens TokenVerifier, users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "missing token")
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)
		if !ok || tokenString == "" {
			return unauthorized(c, "invalid token format")
		}

		userID, err := tokens.Verify(tokenString)
		if err != nil {
			return unauthorized(c, "invalid or expired token")
		}

		user, err := users.GetUserByID(c.UserContext(), userID)
		if errors.Is(err, database.ErrNotFound) {
			return unauthorized(c, "user no longer exists")
		}
		if err != nil {
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

// CurrentUser returns the user stored by Protected, or nil outside a
// protected route.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(userKey).(*models.User)
	return u
}
