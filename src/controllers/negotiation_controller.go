package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harborteam/Backend-Care-Harbor/src/lib"
	"github.com/harborteam/Backend-Care-Harbor/src/models"
)

// Negotiation endpoints: call-time proposals, confirmations, cancellations
// and thread messages. All validation lives in the model; each handler here
// is a read, a transition, and a merge write of the touched metadata fields.
// The write is a plain last-writer-wins update — concurrent edits of the
// same connection can drop one side's change (see DESIGN.md).

func loadConnectionForUpdate(c *fiber.Ctx) (*models.Connection, error) {
	connectionID, err := primitive.ObjectIDFromHex(c.Params("connectionId"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid connection ID format",
		})
	}

	conn, err := findConnectionByID(c, connectionID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Connection not found",
			})
		}
		fmt.Printf("Error finding connection: %v\n", err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	return conn, nil
}

// ProposeTime records a call-time proposal on an inquiry. Either participant
// may propose; a live proposal or scheduled call blocks a new one
func ProposeTime(c *fiber.Ctx) error {
	conn, errResp := loadConnectionForUpdate(c)
	if conn == nil {
		return errResp
	}

	profile := c.Locals("profile").(models.Profile)

	var body struct {
		Time     time.Time `json:"time"`
		Timezone string    `json:"timezone,omitempty"`
	}
	if err := c.BodyParser(&body); err != nil || body.Time.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A proposed time is required",
		})
	}

	now := time.Now()
	if err := conn.ProposeTime(profile.Id, body.Time, body.Timezone, now, lib.ConnectionTTL()); err != nil {
		return transitionError(c, err)
	}

	update := bson.M{
		"$set": bson.M{
			"metadata.time_proposal": conn.Metadata.TimeProposal,
			"updatedAt":              now,
		},
	}
	if _, err := lib.Mongo.Collection("connections").UpdateOne(c.Context(), bson.M{"_id": conn.Id}, update); err != nil {
		fmt.Printf("Error saving time proposal: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save proposal",
		})
	}

	createNotification(c, conn.OtherParticipant(profile.Id), models.NotificationTypeTimeProposed, profile.Id, conn.Id)

	return c.Status(fiber.StatusOK).JSON(conn.Metadata)
}

// ConfirmTime confirms the counterparty's live proposal, turning it into a
// confirmed scheduled call
func ConfirmTime(c *fiber.Ctx) error {
	conn, errResp := loadConnectionForUpdate(c)
	if conn == nil {
		return errResp
	}

	profile := c.Locals("profile").(models.Profile)

	now := time.Now()
	if err := conn.ConfirmTime(profile.Id, now, lib.ConnectionTTL()); err != nil {
		return transitionError(c, err)
	}

	update := bson.M{
		"$set": bson.M{
			"metadata.scheduled_call": conn.Metadata.ScheduledCall,
			"metadata.time_proposal":  nil,
			"updatedAt":               now,
		},
	}
	if _, err := lib.Mongo.Collection("connections").UpdateOne(c.Context(), bson.M{"_id": conn.Id}, update); err != nil {
		fmt.Printf("Error saving confirmed call: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to confirm call",
		})
	}

	createNotification(c, conn.OtherParticipant(profile.Id), models.NotificationTypeCallConfirmed, profile.Id, conn.Id)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"scheduled_call": conn.Metadata.ScheduledCall,
	})
}

// CancelCall cancels a confirmed call, clears the transient negotiation fields
// and appends a system message to the thread
func CancelCall(c *fiber.Ctx) error {
	conn, errResp := loadConnectionForUpdate(c)
	if conn == nil {
		return errResp
	}

	profile := c.Locals("profile").(models.Profile)

	actingName := lib.ProfileDisplayName(c.Context(), profile.Id)

	now := time.Now()
	if _, err := conn.CancelCall(profile.Id, actingName, now); err != nil {
		return transitionError(c, err)
	}

	// The thread is always rewritten in full alongside the merged call state
	update := bson.M{
		"$set": bson.M{
			"metadata.scheduled_call":    conn.Metadata.ScheduledCall,
			"metadata.thread":            conn.Metadata.Thread,
			"metadata.next_step_request": nil,
			"metadata.time_proposal":     nil,
			"updatedAt":                  now,
		},
	}
	if _, err := lib.Mongo.Collection("connections").UpdateOne(c.Context(), bson.M{"_id": conn.Id}, update); err != nil {
		fmt.Printf("Error saving cancelled call: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to cancel call",
		})
	}

	createNotification(c, conn.OtherParticipant(profile.Id), models.NotificationTypeCallCancelled, profile.Id, conn.Id)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"thread":         conn.Metadata.Thread,
		"scheduled_call": conn.Metadata.ScheduledCall,
	})
}

// AppendMessage appends a chat message to the connection thread and returns
// the full updated thread so the client can render it without re-fetching
func AppendMessage(c *fiber.Ctx) error {
	conn, errResp := loadConnectionForUpdate(c)
	if conn == nil {
		return errResp
	}

	profile := c.Locals("profile").(models.Profile)

	var body struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&body); err != nil || body.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Message text is required",
		})
	}

	now := time.Now()
	if _, err := conn.AppendMessage(profile.Id, body.Text, now, lib.ConnectionTTL()); err != nil {
		return transitionError(c, err)
	}

	update := bson.M{
		"$set": bson.M{
			"metadata.thread": conn.Metadata.Thread,
			"updatedAt":       now,
		},
	}
	if _, err := lib.Mongo.Collection("connections").UpdateOne(c.Context(), bson.M{"_id": conn.Id}, update); err != nil {
		fmt.Printf("Error saving thread message: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to send message",
		})
	}

	createNotification(c, conn.OtherParticipant(profile.Id), models.NotificationTypeMessageReceived, profile.Id, conn.Id)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"thread": conn.Metadata.Thread,
	})
}
