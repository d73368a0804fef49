package controllers

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harborteam/Backend-Care-Harbor/src/lib"
	"github.com/harborteam/Backend-Care-Harbor/src/models"
)

// SearchProviders returns provider profiles from the directory, filtered by
// care type and location, excluding the searcher's own profile
func SearchProviders(c *fiber.Ctx) error {
	profile := c.Locals("profile").(models.Profile)

	filter := bson.M{
		"kind": models.ProfileKindProvider,
		"_id":  bson.M{"$ne": profile.Id},
	}
	if careType := c.Query("care_type"); careType != "" {
		filter["care_types"] = careType
	}
	if state := c.Query("state"); state != "" {
		filter["state"] = state
	}
	if location := c.Query("location"); location != "" {
		filter["location"] = bson.M{"$regex": location, "$options": "i"}
	}

	limit := int64(20)
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.ParseInt(l, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	findOptions := options.Find().
		SetLimit(limit).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := lib.Mongo.Collection("profiles").Find(c.Context(), filter, findOptions)
	if err != nil {
		log.Printf("Error searching providers: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error searching providers",
		})
	}
	defer cursor.Close(c.Context())

	var providers []models.Profile
	if err := cursor.All(c.Context(), &providers); err != nil {
		log.Printf("Error decoding providers: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error processing results",
		})
	}

	return c.JSON(providers)
}

// GetPublicProfile returns a profile by id
func GetPublicProfile(c *fiber.Ctx) error {
	profileID, err := primitive.ObjectIDFromHex(c.Params("profileId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid profile ID format",
		})
	}

	profile, err := lib.FindProfileByID(c.Context(), profileID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Profile not found",
			})
		}
		log.Printf("Error in GetPublicProfile controller: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.JSON(profile)
}

// UpdateProfile updates the authenticated profile with allowed fields and
// returns the updated document with its new completeness score
func UpdateProfile(c *fiber.Ctx) error {
	profile := c.Locals("profile").(models.Profile)

	allowedFields := []string{
		"display_name",
		"headline",
		"bio",
		"location",
		"state",
		"care_types",
		"hourly_rate",
		"photo_url",
	}

	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	updatedData := bson.M{}
	for _, field := range allowedFields {
		if value, exists := body[field]; exists && value != nil {
			switch field {
			case "care_types":
				if careTypes, ok := value.([]interface{}); ok {
					updatedData[field] = careTypes
				}
			default:
				updatedData[field] = value
			}
		}
	}

	if len(updatedData) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No updatable fields provided",
		})
	}

	updatedData["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"_id": profile.Id}
	update := bson.M{"$set": updatedData}

	var updated models.Profile
	err := lib.Mongo.Collection("profiles").
		FindOneAndUpdate(c.Context(), filter, update, opts).
		Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Profile not found",
			})
		}
		log.Printf("Error updating profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error updating profile",
		})
	}

	return c.JSON(fiber.Map{
		"profile":      updated,
		"completeness": updated.CompletenessScore(),
	})
}
