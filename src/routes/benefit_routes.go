package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/harborteam/Backend-Care-Harbor/src/controllers"
)

// BenefitRoutes sets up the benefits-finder routes: the program directory and
// the questionnaire matcher. Both are public so families can explore benefits
// before creating an account
func BenefitRoutes(app *fiber.App) {
	benefit := app.Group("/api/v1/benefits")

	benefit.Get("/", controllers.ListBenefitPrograms)
	benefit.Post("/match", controllers.MatchBenefits)
}
