package middleware

import (
	"log"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
)

// TokenValidator checks an access token. *services.AuthService implements it.
type TokenValidator interface {
	ValidateToken(token string) (jwt.MapClaims, error)
}

// AuthRequired rejects requests without a valid bearer token and stores the
// caller's id and email in the context locals.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "Authorization header is required", nil)
		}

		token, ok := bearerToken(header)
		if !ok {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'", nil)
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			log.Printf("JWT validation failed for %s %s: %v", c.Method(), c.Path(), err)
			return unauthorized(c, "Invalid or expired token", err)
		}

		c.Locals(LocalUserID, claims["user_id"])
		c.Locals(LocalEmail, claims["email"])
		return c.Next()
	}
}

// UserID returns the id stored by AuthRequired, or "" outside protected routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, message string, err error) error {
	body := fiber.Map{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(fiber.StatusUnauthorized).JSON(body)
}
