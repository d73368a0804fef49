package controllers

import (
	"errors"
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

// findConnectionByID loads a connection document. Returns mongo.ErrNoDocuments
// when the id does not exist.
func findConnectionByID(c *fiber.Ctx, connectionID primitive.ObjectID) (*models.Connection, error) {
	var conn models.Connection
	err := lib.Mongo.Collection("connections").
		FindOne(c.Context(), bson.M{"_id": connectionID}).
		Decode(&conn)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// transitionError maps a state-machine error onto the HTTP response: 403 for
// authorization failures, 409 for a conflicting live proposal, 400 for every
// other failed precondition. The error text is the client-facing message.
func transitionError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	switch {
	case errors.Is(err, models.ErrNotParticipant), errors.Is(err, models.ErrNotRecipient):
		status = fiber.StatusForbidden
	case errors.Is(err, models.ErrProposalExists):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(lib.MessageResponse(err.Error()))
}

// SendConnection creates a connection from the authenticated profile to another
// profile: an inquiry (which enters the negotiation lifecycle), or a save or
// dismiss bookmark (which does not)
func SendConnection(c *fiber.Ctx) error {
	targetIDStr := c.Params("profileId")
	targetID, err := primitive.ObjectIDFromHex(targetIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid profile ID format",
		})
	}

	profile := c.Locals("profile").(models.Profile)

	if profile.Id == targetID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "You can't send a connection request to yourself",
		})
	}

	var body struct {
		Type    string `json:"type"`
		Message string `json:"message,omitempty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	connType := models.ConnectionType(body.Type)
	switch connType {
	case models.ConnectionTypeInquiry, models.ConnectionTypeSave, models.ConnectionTypeDismiss:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Type must be inquiry, save or dismiss",
		})
	}

	// The target profile has to exist before anything is written
	if _, err := lib.FindProfileByID(c.Context(), targetID); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Profile not found",
			})
		}
		fmt.Printf("Error finding target profile: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	connectionsCollection := lib.Mongo.Collection("connections")

	// One live inquiry per pair; one bookmark of each type per pair
	filter := bson.M{
		"from_profile": profile.Id,
		"to_profile":   targetID,
		"type":         connType,
	}
	if connType == models.ConnectionTypeInquiry {
		filter["status"] = models.ConnectionStatusPending
	}

	var existing models.Connection
	err = connectionsCollection.FindOne(c.Context(), filter).Decode(&existing)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A connection of this type already exists",
		})
	} else if err != mongo.ErrNoDocuments {
		fmt.Printf("Error checking existing connection: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	now := time.Now()
	status := models.ConnectionStatusPending
	if connType != models.ConnectionTypeInquiry {
		// Bookmarks never sit in the negotiation lifecycle
		status = models.ConnectionStatusAccepted
	}

	newConnection := models.Connection{
		Id:          primitive.NewObjectID(),
		FromProfile: profile.Id,
		ToProfile:   targetID,
		Type:        connType,
		Status:      status,
		Metadata:    models.ConnectionMetadata{Thread: []models.ThreadMessage{}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if connType == models.ConnectionTypeInquiry && body.Message != "" {
		newConnection.Metadata.Thread = append(newConnection.Metadata.Thread, models.ThreadMessage{
			FromProfile: profile.Id,
			Text:        body.Message,
			CreatedAt:   now,
		})
	}

	if _, err := connectionsCollection.InsertOne(c.Context(), newConnection); err != nil {
		fmt.Printf("Error creating connection: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create connection",
		})
	}

	if connType == models.ConnectionTypeInquiry {
		createNotification(c, targetID, models.NotificationTypeInquiryReceived, profile.Id, newConnection.Id)
	}

	return c.Status(fiber.StatusCreated).JSON(newConnection)
}

// AcceptConnection accepts a pending inquiry. Only the recipient profile may
// accept, and only while the request is still pending
func AcceptConnection(c *fiber.Ctx) error {
	return respondToConnection(c, true)
}

// DeclineConnection declines a pending inquiry. Same authorization rules as
// AcceptConnection
func DeclineConnection(c *fiber.Ctx) error {
	return respondToConnection(c, false)
}

func respondToConnection(c *fiber.Ctx, accept bool) error {
	connectionID, err := primitive.ObjectIDFromHex(c.Params("connectionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid connection ID format",
		})
	}

	profile := c.Locals("profile").(models.Profile)

	conn, err := findConnectionByID(c, connectionID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Connection not found",
			})
		}
		fmt.Printf("Error finding connection: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	now := time.Now()
	ttl := lib.ConnectionTTL()
	if accept {
		err = conn.Accept(profile.Id, now, ttl)
	} else {
		err = conn.Decline(profile.Id, now, ttl)
	}
	if err != nil {
		return transitionError(c, err)
	}

	update := bson.M{
		"$set": bson.M{
			"status":    conn.Status,
			"updatedAt": now,
		},
	}
	if _, err := lib.Mongo.Collection("connections").UpdateOne(c.Context(), bson.M{"_id": connectionID}, update); err != nil {
		fmt.Printf("Error updating connection: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update connection",
		})
	}

	notifType := models.NotificationTypeInquiryAccepted
	if !accept {
		notifType = models.NotificationTypeInquiryDeclined
	}
	createNotification(c, conn.FromProfile, notifType, profile.Id, conn.Id)

	return c.Status(fiber.StatusOK).JSON(conn)
}

// ArchiveConnection moves a resolved inquiry out of the active lists. Either
// participant may archive
func ArchiveConnection(c *fiber.Ctx) error {
	connectionID, err := primitive.ObjectIDFromHex(c.Params("connectionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid connection ID format",
		})
	}

	profile := c.Locals("profile").(models.Profile)

	conn, err := findConnectionByID(c, connectionID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Connection not found",
			})
		}
		fmt.Printf("Error finding connection: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	now := time.Now()
	if err := conn.Archive(profile.Id, now, lib.ConnectionTTL()); err != nil {
		return transitionError(c, err)
	}

	update := bson.M{
		"$set": bson.M{
			"status":    conn.Status,
			"updatedAt": now,
		},
	}
	if _, err := lib.Mongo.Collection("connections").UpdateOne(c.Context(), bson.M{"_id": connectionID}, update); err != nil {
		fmt.Printf("Error archiving connection: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to archive connection",
		})
	}

	return c.Status(fiber.StatusOK).JSON(conn)
}

// GetConnection returns a single connection with its full thread. Participants
// only
func GetConnection(c *fiber.Ctx) error {
	connectionID, err := primitive.ObjectIDFromHex(c.Params("connectionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid connection ID format",
		})
	}

	profile := c.Locals("profile").(models.Profile)

	conn, err := findConnectionByID(c, connectionID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Connection not found",
			})
		}
		fmt.Printf("Error finding connection: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	if !conn.IsParticipant(profile.Id) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Not authorized to view this connection",
		})
	}

	// Readers see lazy expiration without waiting for the sweeper
	conn.Status = conn.EffectiveStatus(time.Now(), lib.ConnectionTTL())

	return c.Status(fiber.StatusOK).JSON(conn)
}

// GetMyConnections lists the authenticated profile's inquiries, optionally
// filtered by ?status=
func GetMyConnections(c *fiber.Ctx) error {
	profile := c.Locals("profile").(models.Profile)

	filter := bson.M{
		"$or": []bson.M{
			{"from_profile": profile.Id},
			{"to_profile": profile.Id},
		},
		"type": models.ConnectionTypeInquiry,
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := lib.Mongo.Collection("connections").Find(c.Context(), filter, opts)
	if err != nil {
		fmt.Printf("Error finding connections: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	defer cursor.Close(c.Context())

	var connections []models.Connection
	if err := cursor.All(c.Context(), &connections); err != nil {
		fmt.Printf("Error decoding connections: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	now := time.Now()
	ttl := lib.ConnectionTTL()
	for i := range connections {
		connections[i].Status = connections[i].EffectiveStatus(now, ttl)
	}

	if statusFilter := c.Query("status"); statusFilter != "" {
		filtered := make([]models.Connection, 0, len(connections))
		for _, conn := range connections {
			if string(conn.Status) == statusFilter {
				filtered = append(filtered, conn)
			}
		}
		connections = filtered
	}

	return c.Status(fiber.StatusOK).JSON(connections)
}

// GetConnectionRequests returns all pending inquiries addressed to the
// authenticated profile, with the sender profile populated
func GetConnectionRequests(c *fiber.Ctx) error {
	profile := c.Locals("profile").(models.Profile)

	filter := bson.M{
		"to_profile": profile.Id,
		"type":       models.ConnectionTypeInquiry,
		"status":     models.ConnectionStatusPending,
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := lib.Mongo.Collection("connections").Find(c.Context(), filter, opts)
	if err != nil {
		fmt.Printf("Error finding connection requests: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	defer cursor.Close(c.Context())

	var connections []models.Connection
	if err := cursor.All(c.Context(), &connections); err != nil {
		fmt.Printf("Error decoding connections: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	type ConnectionRequestResponse struct {
		ID        primitive.ObjectID      `json:"_id"`
		Sender    *models.ProfileDto      `json:"sender"`
		Status    models.ConnectionStatus `json:"status"`
		Thread    []models.ThreadMessage  `json:"thread"`
		CreatedAt time.Time               `json:"createdAt"`
	}

	now := time.Now()
	ttl := lib.ConnectionTTL()
	response := make([]ConnectionRequestResponse, 0, len(connections))

	profilesCollection := lib.Mongo.Collection("profiles")
	for _, conn := range connections {
		if conn.ExpiredByTTL(now, ttl) {
			continue
		}

		var sender models.ProfileDto
		err := profilesCollection.FindOne(
			c.Context(),
			bson.M{"_id": conn.FromProfile},
			options.FindOne().SetProjection(bson.M{
				"kind":         1,
				"display_name": 1,
				"headline":     1,
				"location":     1,
				"photo_url":    1,
			}),
		).Decode(&sender)

		item := ConnectionRequestResponse{
			ID:        conn.Id,
			Status:    conn.Status,
			Thread:    conn.Metadata.Thread,
			CreatedAt: conn.CreatedAt,
		}
		if err == nil {
			item.Sender = &sender
		} else if err != mongo.ErrNoDocuments {
			fmt.Printf("Error finding sender profile: %v\n", err)
		}
		response = append(response, item)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetSavedProfiles lists the profiles the authenticated profile has saved
func GetSavedProfiles(c *fiber.Ctx) error {
	profile := c.Locals("profile").(models.Profile)

	filter := bson.M{
		"from_profile": profile.Id,
		"type":         models.ConnectionTypeSave,
	}
	cursor, err := lib.Mongo.Collection("connections").Find(c.Context(), filter)
	if err != nil {
		fmt.Printf("Error finding saved profiles: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	defer cursor.Close(c.Context())

	var saves []models.Connection
	if err := cursor.All(c.Context(), &saves); err != nil {
		fmt.Printf("Error decoding saved profiles: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	if len(saves) == 0 {
		return c.Status(fiber.StatusOK).JSON([]models.ProfileDto{})
	}

	savedIDs := make([]primitive.ObjectID, 0, len(saves))
	for _, s := range saves {
		savedIDs = append(savedIDs, s.ToProfile)
	}

	profilesCursor, err := lib.Mongo.Collection("profiles").Find(
		c.Context(),
		bson.M{"_id": bson.M{"$in": savedIDs}},
		options.Find().SetProjection(bson.M{
			"kind":         1,
			"display_name": 1,
			"headline":     1,
			"location":     1,
			"photo_url":    1,
		}),
	)
	if err != nil {
		fmt.Printf("Error finding saved profile documents: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	defer profilesCursor.Close(c.Context())

	var profiles []models.ProfileDto
	if err := profilesCursor.All(c.Context(), &profiles); err != nil {
		fmt.Printf("Error decoding saved profile documents: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(profiles)
}

// GetConnectionStatus returns the inquiry status between the authenticated
// profile and another profile
func GetConnectionStatus(c *fiber.Ctx) error {
	targetID, err := primitive.ObjectIDFromHex(c.Params("profileId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid profile ID format",
		})
	}

	profile := c.Locals("profile").(models.Profile)

	if profile.Id == targetID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cannot check connection status with yourself",
		})
	}

	filter := bson.M{
		"$or": []bson.M{
			{"from_profile": profile.Id, "to_profile": targetID},
			{"from_profile": targetID, "to_profile": profile.Id},
		},
		"type": models.ConnectionTypeInquiry,
	}
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})

	var conn models.Connection
	err = lib.Mongo.Collection("connections").FindOne(c.Context(), filter, opts).Decode(&conn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"status": "not_connected",
			})
		}
		fmt.Printf("Error checking connection status: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	status := conn.EffectiveStatus(time.Now(), lib.ConnectionTTL())
	if status == models.ConnectionStatusPending && conn.ToProfile == profile.Id {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":       "received",
			"connectionId": conn.Id,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":       status,
		"connectionId": conn.Id,
	})
}

// GetConnectionStats returns the inquiry report for the authenticated profile:
// status tallies, response rate and the trailing six-month volume series
func GetConnectionStats(c *fiber.Ctx) error {
	profile := c.Locals("profile").(models.Profile)

	filter := bson.M{
		"$or": []bson.M{
			{"from_profile": profile.Id},
			{"to_profile": profile.Id},
		},
	}
	cursor, err := lib.Mongo.Collection("connections").Find(c.Context(), filter)
	if err != nil {
		fmt.Printf("Error finding connections for stats: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	defer cursor.Close(c.Context())

	var connections []models.Connection
	if err := cursor.All(c.Context(), &connections); err != nil {
		fmt.Printf("Error decoding connections for stats: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	stats := models.ComputeConnectionStats(connections, time.Now(), lib.ConnectionTTL())
	return c.Status(fiber.StatusOK).JSON(stats)
}
