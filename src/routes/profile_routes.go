package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/harborteam/Backend-Care-Harbor/src/controllers"
	"github.com/harborteam/Backend-Care-Harbor/src/middleware"
)

// ProfileRoutes sets up profile-related routes: the provider directory search,
// public profiles, and updating the authenticated profile
func ProfileRoutes(app *fiber.App) {
	profile := app.Group("/api/v1/profiles", middleware.ProtectRoute)

	profile.Get("/search", controllers.SearchProviders)
	profile.Get("/:profileId", controllers.GetPublicProfile)
	profile.Put("/", controllers.UpdateProfile)
}
