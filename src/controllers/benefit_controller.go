package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harborteam/Backend-Care-Harbor/src/lib"
	"github.com/harborteam/Backend-Care-Harbor/src/models"
)

func loadBenefitPrograms(c *fiber.Ctx) ([]models.BenefitProgram, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := lib.Mongo.Collection("benefit_programs").Find(c.Context(), bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(c.Context())

	var programs []models.BenefitProgram
	if err := cursor.All(c.Context(), &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// ListBenefitPrograms returns the full benefits directory
func ListBenefitPrograms(c *fiber.Ctx) error {
	programs, err := loadBenefitPrograms(c)
	if err != nil {
		log.Printf("Error loading benefit programs: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	return c.JSON(programs)
}

// MatchBenefits runs the benefits-finder questionnaire answers against the
// directory and returns the programs the answers qualify for
func MatchBenefits(c *fiber.Ctx) error {
	var answers models.BenefitAnswers
	if err := c.BodyParser(&answers); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if answers.Age <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Age is required",
		})
	}

	programs, err := loadBenefitPrograms(c)
	if err != nil {
		log.Printf("Error loading benefit programs: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	matched := models.MatchBenefitPrograms(programs, answers)

	return c.JSON(fiber.Map{
		"matched": matched,
		"total":   len(matched),
	})
}
