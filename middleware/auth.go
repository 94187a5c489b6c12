package middleware

import (
	"errors"
	"strings"

	"parcel-delivery/models/user"
	"parcel-delivery/types"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequireAuth checks for a valid bearer token. A missing or malformed header
// is 401; a token the identity verifier rejects is 403. The verified email is
// attached to the request context.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Authorization token missing",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Invalid authorization header format",
			})
		}

		claims, err := VerifyJWT(tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Status:  fiber.StatusForbidden,
				Message: "Invalid or expired token",
			})
		}

		email, ok := claims["email"].(string)
		if !ok || email == "" {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Status:  fiber.StatusForbidden,
				Message: "Email missing in token claims",
			})
		}

		c.Locals("user", claims)
		c.Locals("email", strings.ToLower(email))

		return c.Next()
	}
}

// RequireAdmin looks up the authenticated email in the users table and
// rejects the request unless the role is admin. Must run after RequireAuth.
func RequireAdmin(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, ok := c.Locals("email").(string)
		if !ok || email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Authorization token missing",
			})
		}

		u, err := utils.GetUserByEmail(db, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
					Status:  fiber.StatusForbidden,
					Message: "Admin access required",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to verify role",
			})
		}

		if u.Role != user.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Status:  fiber.StatusForbidden,
				Message: "Admin access required",
			})
		}

		return c.Next()
	}
}
