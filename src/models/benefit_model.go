package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BenefitProgram is one entry in the benefits directory. Eligibility fields
// with zero values mean "no restriction": MaxMonthlyIncome 0 is no income
// cap, an empty States list means the program is nationwide.
type BenefitProgram struct {
	Id               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name             string             `json:"name" bson:"name"`
	Agency           string             `json:"agency" bson:"agency"`
	Description      string             `json:"description" bson:"description"`
	URL              string             `json:"url,omitempty" bson:"url,omitempty"`
	MinAge           int                `json:"min_age,omitempty" bson:"min_age,omitempty"`
	MaxMonthlyIncome float64            `json:"max_monthly_income,omitempty" bson:"max_monthly_income,omitempty"`
	VeteransOnly     bool               `json:"veterans_only" bson:"veterans_only"`
	HomeownersOnly   bool               `json:"homeowners_only" bson:"homeowners_only"`
	States           []string           `json:"states,omitempty" bson:"states,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// BenefitAnswers is the questionnaire payload from the benefits finder.
type BenefitAnswers struct {
	Age           int     `json:"age"`
	MonthlyIncome float64 `json:"monthly_income"`
	Veteran       bool    `json:"veteran"`
	Homeowner     bool    `json:"homeowner"`
	State         string  `json:"state"`
}

// Matches checks the questionnaire answers against the program's
// eligibility rules.
func (p *BenefitProgram) Matches(a BenefitAnswers) bool {
	if p.MinAge > 0 && a.Age < p.MinAge {
		return false
	}
	if p.MaxMonthlyIncome > 0 && a.MonthlyIncome > p.MaxMonthlyIncome {
		return false
	}
	if p.VeteransOnly && !a.Veteran {
		return false
	}
	if p.HomeownersOnly && !a.Homeowner {
		return false
	}
	if len(p.States) > 0 {
		found := false
		for _, s := range p.States {
			if s == a.State {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MatchBenefitPrograms filters the directory down to the programs the
// answers qualify for, preserving directory order.
func MatchBenefitPrograms(programs []BenefitProgram, a BenefitAnswers) []BenefitProgram {
	matched := make([]BenefitProgram, 0)
	for _, p := range programs {
		if p.Matches(a) {
			matched = append(matched, p)
		}
	}
	return matched
}
