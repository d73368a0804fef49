package lib

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/harborteam/Backend-Care-Harbor/src/models"
)

// SeedBenefitPrograms loads the starter benefits directory into Mongo on
// first boot. A non-empty collection is left alone so admin edits survive
// restarts.
func SeedBenefitPrograms() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := Mongo.Collection("benefit_programs")

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Printf("Error counting benefit programs: %v", err)
		return
	}
	if count > 0 {
		return
	}

	now := time.Now()
	programs := []interface{}{
		models.BenefitProgram{
			Name:             "Medicaid Home & Community Based Services",
			Agency:           "Centers for Medicare & Medicaid Services",
			Description:      "In-home care and community services for low-income seniors who would otherwise need nursing facility care.",
			MinAge:           65,
			MaxMonthlyIncome: 2829,
			CreatedAt:        now,
		},
		models.BenefitProgram{
			Name:         "VA Aid and Attendance",
			Agency:       "Department of Veterans Affairs",
			Description:  "Monthly payment added to the VA pension for veterans and survivors who need help with daily activities.",
			MinAge:       65,
			VeteransOnly: true,
			CreatedAt:    now,
		},
		models.BenefitProgram{
			Name:             "Supplemental Security Income",
			Agency:           "Social Security Administration",
			Description:      "Monthly cash assistance for seniors with limited income and resources.",
			MinAge:           65,
			MaxMonthlyIncome: 943,
			CreatedAt:        now,
		},
		models.BenefitProgram{
			Name:           "Property Tax Postponement",
			Agency:         "California State Controller",
			Description:    "Lets eligible senior homeowners defer property taxes on their primary residence.",
			MinAge:         62,
			HomeownersOnly: true,
			States:         []string{"CA"},
			CreatedAt:      now,
		},
		models.BenefitProgram{
			Name:             "Low Income Home Energy Assistance Program",
			Agency:           "Administration for Children and Families",
			Description:      "Helps cover heating and cooling costs for low-income households, with priority for older adults.",
			MaxMonthlyIncome: 2430,
			CreatedAt:        now,
		},
	}

	if _, err := collection.InsertMany(ctx, programs); err != nil {
		log.Printf("Error seeding benefit programs: %v", err)
		return
	}

	log.Printf("Seeded %d benefit programs", len(programs))
}
