package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harborteam/Backend-Care-Harbor/src/lib"
	"github.com/harborteam/Backend-Care-Harbor/src/models"
)

// createNotification writes a lifecycle notification for a profile. Failures
// are logged and swallowed: notifications are not critical to the operation
// that triggered them.
func createNotification(c *fiber.Ctx, recipient primitive.ObjectID, notifType models.NotificationType, relatedProfile, relatedConnection primitive.ObjectID) {
	notification := models.Notification{
		Id:                primitive.NewObjectID(),
		Recipient:         recipient,
		Type:              notifType,
		RelatedProfile:    relatedProfile,
		RelatedConnection: relatedConnection,
		Read:              false,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	collection := lib.Mongo.Collection("notifications")
	if _, err := collection.InsertOne(c.Context(), notification); err != nil {
		fmt.Printf("Error creating notification: %v\n", err)
	}
}

// GetNotifications returns all notifications for the authenticated profile,
// populating the related profile data
func GetNotifications(c *fiber.Ctx) error {
	profile := c.Locals("profile").(models.Profile)

	collection := lib.Mongo.Collection("notifications")
	filter := bson.M{"recipient": profile.Id}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := collection.Find(c.Context(), filter, opts)
	if err != nil {
		fmt.Printf("Error finding notifications: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
	defer cursor.Close(c.Context())

	var notifications []models.Notification
	if err := cursor.All(c.Context(), &notifications); err != nil {
		fmt.Printf("Error decoding notifications: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	type NotificationResponse struct {
		ID                primitive.ObjectID      `json:"id"`
		Type              models.NotificationType `json:"type"`
		Read              bool                    `json:"read"`
		RelatedConnection primitive.ObjectID      `json:"related_connection,omitempty"`
		RelatedProfile    *models.ProfileDto      `json:"related_profile,omitempty"`
		CreatedAt         time.Time               `json:"createdAt"`
	}

	response := make([]NotificationResponse, 0, len(notifications))

	profilesCollection := lib.Mongo.Collection("profiles")
	for _, notification := range notifications {
		item := NotificationResponse{
			ID:                notification.Id,
			Type:              notification.Type,
			Read:              notification.Read,
			RelatedConnection: notification.RelatedConnection,
			CreatedAt:         notification.CreatedAt,
		}

		if !notification.RelatedProfile.IsZero() {
			var related models.ProfileDto
			err := profilesCollection.FindOne(
				c.Context(),
				bson.M{"_id": notification.RelatedProfile},
				options.FindOne().SetProjection(bson.M{
					"kind":         1,
					"display_name": 1,
					"photo_url":    1,
				}),
			).Decode(&related)

			if err == nil {
				item.RelatedProfile = &related
			} else if err != mongo.ErrNoDocuments {
				fmt.Printf("Error finding related profile: %v\n", err)
			}
		}

		response = append(response, item)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// MarkNotificationAsRead marks a notification as read for the authenticated
// profile
func MarkNotificationAsRead(c *fiber.Ctx) error {
	notificationID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid notification ID format",
		})
	}

	profile := c.Locals("profile").(models.Profile)

	// Only the recipient may update their own notifications
	filter := bson.M{
		"_id":       notificationID,
		"recipient": profile.Id,
	}
	update := bson.M{
		"$set": bson.M{
			"read":      true,
			"updatedAt": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	collection := lib.Mongo.Collection("notifications")
	var updated models.Notification
	err = collection.FindOneAndUpdate(c.Context(), filter, update, opts).Decode(&updated)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Notification not found or you don't have permission to update it",
			})
		}
		fmt.Printf("Error in MarkNotificationAsRead: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteNotification deletes a notification for the authenticated profile
func DeleteNotification(c *fiber.Ctx) error {
	notificationID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid notification ID format",
		})
	}

	profile := c.Locals("profile").(models.Profile)

	filter := bson.M{
		"_id":       notificationID,
		"recipient": profile.Id,
	}

	collection := lib.Mongo.Collection("notifications")
	result, err := collection.DeleteOne(c.Context(), filter)
	if err != nil {
		fmt.Printf("Error in DeleteNotification: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	if result.DeletedCount == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Notification not found or you don't have permission to delete it",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Notification deleted successfully",
	})
}
