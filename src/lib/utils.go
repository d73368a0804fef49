package lib

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborteam/Backend-Care-Harbor/src/models"
)

// Returns a map with a message key for API responses
func MessageResponse(message string) fiber.Map {
	return fiber.Map{
		"message": message,
	}
}

// Generates a JWT token for the given user ID
func GenerateJWT(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "fallback-secret-key"
	}

	return token.SignedString([]byte(secret))
}

// Verifies and decodes a JWT token, returning its claims
func VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "fallback-secret-key"
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
}

// Searches for an account by ID, excluding the password hash from the result
func FindUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := DB.Select("id", "created_at", "updated_at", "name", "email", "role", "profile_id").
		First(&user, userID).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindProfileByID loads a marketplace profile document by its ObjectID.
func FindProfileByID(ctx context.Context, profileID primitive.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	err := Mongo.Collection("profiles").
		FindOne(ctx, bson.M{"_id": profileID}).
		Decode(&profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ProfileDisplayName resolves a profile's display name for system messages.
// Returns the empty string when the profile cannot be found; callers fall
// back to a neutral placeholder.
func ProfileDisplayName(ctx context.Context, profileID primitive.ObjectID) string {
	profile, err := FindProfileByID(ctx, profileID)
	if err != nil {
		return ""
	}
	return profile.DisplayName
}

// ConnectionTTL returns how long a pending inquiry stays actionable before it
// counts as expired. Configurable via CONNECTION_TTL_DAYS, default 30 days.
func ConnectionTTL() time.Duration {
	days := 30
	if v := os.Getenv("CONNECTION_TTL_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	return time.Duration(days) * 24 * time.Hour
}
