package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborteam/Backend-Care-Harbor/src/lib"
)

// ProtectRoute is a middleware that checks for a valid JWT token, resolves the
// account and its marketplace profile, and attaches both to the request context
func ProtectRoute(c *fiber.Ctx) error {

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authorized - No token provided",
		})
	}

	// Expected format: "Bearer <token>"
	var token string
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		token = authHeader[7:]
	} else {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authorized - Invalid token format",
		})
	}

	decoded, err := lib.VerifyJWT(token)
	if err != nil || decoded == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authorized - Invalid token",
		})
	}

	// JSON numbers decode as float64 in MapClaims
	userIDValue, ok := decoded["userId"].(float64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authorized - Invalid token",
		})
	}

	user, err := lib.FindUserByID(uint(userIDValue))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not found",
		})
	}

	profileID, err := primitive.ObjectIDFromHex(user.ProfileID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Account has no valid profile",
		})
	}

	profile, err := lib.FindProfileByID(c.Context(), profileID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Profile not found",
		})
	}

	c.Locals("user", *user)
	c.Locals("profile", *profile)

	return c.Next()
}
