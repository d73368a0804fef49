package models

import "testing"

func TestBenefitProgramMatches(t *testing.T) {
	veteranAid := BenefitProgram{
		Name:             "VA Aid and Attendance",
		MinAge:           65,
		MaxMonthlyIncome: 2300,
		VeteransOnly:     true,
	}
	taxPostponement := BenefitProgram{
		Name:           "Property Tax Postponement",
		MinAge:         62,
		HomeownersOnly: true,
		States:         []string{"CA"},
	}
	unrestricted := BenefitProgram{
		Name: "Energy Assistance",
	}

	tests := []struct {
		name    string
		program BenefitProgram
		answers BenefitAnswers
		want    bool
	}{
		{"qualifying veteran", veteranAid, BenefitAnswers{Age: 78, MonthlyIncome: 1800, Veteran: true}, true},
		{"non-veteran rejected", veteranAid, BenefitAnswers{Age: 78, MonthlyIncome: 1800}, false},
		{"too young", veteranAid, BenefitAnswers{Age: 60, MonthlyIncome: 1800, Veteran: true}, false},
		{"income over cap", veteranAid, BenefitAnswers{Age: 78, MonthlyIncome: 2400, Veteran: true}, false},
		{"income at cap qualifies", veteranAid, BenefitAnswers{Age: 78, MonthlyIncome: 2300, Veteran: true}, true},
		{"homeowner in listed state", taxPostponement, BenefitAnswers{Age: 70, Homeowner: true, State: "CA"}, true},
		{"wrong state", taxPostponement, BenefitAnswers{Age: 70, Homeowner: true, State: "TX"}, false},
		{"renter rejected", taxPostponement, BenefitAnswers{Age: 70, State: "CA"}, false},
		{"zero fields mean no restriction", unrestricted, BenefitAnswers{Age: 30, MonthlyIncome: 9000, State: "NY"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.program.Matches(tt.answers); got != tt.want {
				t.Errorf("Matches(%+v) = %v, want %v", tt.answers, got, tt.want)
			}
		})
	}
}

func TestMatchBenefitPrograms(t *testing.T) {
	programs := []BenefitProgram{
		{Name: "A", MinAge: 65},
		{Name: "B", VeteransOnly: true},
		{Name: "C"},
	}

	matched := MatchBenefitPrograms(programs, BenefitAnswers{Age: 70})
	if len(matched) != 2 {
		t.Fatalf("matched %d programs, want 2", len(matched))
	}
	if matched[0].Name != "A" || matched[1].Name != "C" {
		t.Errorf("directory order not preserved: %q, %q", matched[0].Name, matched[1].Name)
	}

	empty := MatchBenefitPrograms(nil, BenefitAnswers{Age: 70})
	if empty == nil || len(empty) != 0 {
		t.Errorf("MatchBenefitPrograms(nil) = %v, want empty slice", empty)
	}
}
