package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/harborteam/Backend-Care-Harbor/src/lib"
	"github.com/harborteam/Backend-Care-Harbor/src/models"
)

// Signup handles account registration: validates input, checks for duplicates,
// hashes the password, creates the marketplace profile document and the account
// row, and returns a JWT
func Signup(c *fiber.Ctx) error {

	var userData struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := c.BodyParser(&userData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if userData.Name == "" || userData.Email == "" || userData.Password == "" || userData.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "All fields are required",
		})
	}

	if len(userData.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Password must be at least 6 characters",
		})
	}

	if userData.Role != string(models.ProfileKindFamily) && userData.Role != string(models.ProfileKindProvider) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Role must be family or provider",
		})
	}

	var existingUser models.User
	if err := lib.DB.Where("email = ?", userData.Email).First(&existingUser).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userData.Password), 11)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	// The profile document goes in first so the account can link to it
	now := time.Now()
	profile := models.Profile{
		Kind:        models.ProfileKind(userData.Role),
		DisplayName: userData.Name,
		CareTypes:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	profilesCollection := lib.Mongo.Collection("profiles")
	insertResult, err := profilesCollection.InsertOne(c.Context(), profile)
	if err != nil {
		log.Printf("Error creating profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create profile",
		})
	}
	profileID := insertResult.InsertedID.(primitive.ObjectID).Hex()

	newUser := models.User{
		Name:      userData.Name,
		Email:     userData.Email,
		Password:  string(hashedPassword),
		Role:      userData.Role,
		ProfileID: profileID,
	}

	if err := lib.DB.Create(&newUser).Error; err != nil {
		log.Printf("Error creating user: %v", err)
		// Best effort rollback of the orphaned profile
		profilesCollection.DeleteOne(c.Context(), bson.M{"_id": insertResult.InsertedID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create user",
		})
	}

	token, err := lib.GenerateJWT(newUser.ID)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to generate token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account registered successfully",
		"token":   token,
	})
}

// Login authenticates an account by email and password and returns a JWT
func Login(c *fiber.Ctx) error {

	var loginData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&loginData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if loginData.Email == "" || loginData.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email and password are required",
		})
	}

	var user models.User
	err := lib.DB.Where("email = ?", loginData.Email).First(&user).Error
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginData.Password))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	token, err := lib.GenerateJWT(user.ID)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// GetCurrentUser returns the authenticated account along with its profile and
// the profile completeness score
func GetCurrentUser(c *fiber.Ctx) error {

	user, ok := c.Locals("user").(models.User)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}
	profile := c.Locals("profile").(models.Profile)

	return c.JSON(fiber.Map{
		"user":         user,
		"profile":      profile,
		"completeness": profile.CompletenessScore(),
	})
}

// Logout clears the authentication cookie to log out the user
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt-careharbor",
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		SameSite: "Strict",
		Secure:   false, // true in production behind HTTPS
		Path:     "/",
	})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}
