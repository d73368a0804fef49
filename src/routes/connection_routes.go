package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/harborteam/Backend-Care-Harbor/src/controllers"
	"github.com/harborteam/Backend-Care-Harbor/src/middleware"
)

// ConnectionRoutes sets up connection-related routes: inquiries and bookmarks,
// the accept/decline/archive lifecycle, call scheduling, thread messages and
// the inquiry stats report
func ConnectionRoutes(app *fiber.App) {
	connection := app.Group("/api/v1/connections", middleware.ProtectRoute)

	connection.Post("/request/:profileId", controllers.SendConnection)
	connection.Get("/", controllers.GetMyConnections)
	connection.Get("/requests", controllers.GetConnectionRequests)
	connection.Get("/saved", controllers.GetSavedProfiles)
	connection.Get("/stats", controllers.GetConnectionStats)
	connection.Get("/status/:profileId", controllers.GetConnectionStatus)
	connection.Get("/:connectionId", controllers.GetConnection)

	connection.Put("/accept/:connectionId", controllers.AcceptConnection)
	connection.Put("/decline/:connectionId", controllers.DeclineConnection)
	connection.Put("/archive/:connectionId", controllers.ArchiveConnection)

	connection.Post("/:connectionId/messages", controllers.AppendMessage)
	connection.Post("/:connectionId/call/propose", controllers.ProposeTime)
	connection.Put("/:connectionId/call/confirm", controllers.ConfirmTime)
	connection.Put("/:connectionId/call/cancel", controllers.CancelCall)
}
