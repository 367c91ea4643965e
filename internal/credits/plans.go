package credits

import "fmt"

var planLimits = map[Plan]Limits{
	PlanFree: {
		Plan:               PlanFree,
		MonthlyCredits:     0,
		DailyFreeCredits:   DailyFreeCredits,
		MaxCompareModels:   3,
		ResearchEnabled:    false,
		MaxHistorySessions: 10,
		PriceUSD:           0,
	},
	PlanStarter: {
		Plan:               PlanStarter,
		MonthlyCredits:     1000,
		DailyFreeCredits:   DailyFreeCredits,
		MaxCompareModels:   5,
		ResearchEnabled:    true,
		MaxHistorySessions: 200,
		PriceUSD:           7,
	},
	PlanPro: {
		Plan:               PlanPro,
		MonthlyCredits:     3000,
		DailyFreeCredits:   DailyFreeCredits,
		MaxCompareModels:   5,
		ResearchEnabled:    true,
		MaxHistorySessions: 1000,
		PriceUSD:           15,
	},
}

var topupPacks = []TopupPack{
	{ID: "mini", Name: "Mini Pack", Credits: 200, PriceUSD: 4},
	{ID: "standard", Name: "Standard Pack", Credits: 1000, PriceUSD: 12},
	{ID: "power", Name: "Power Pack", Credits: 5000, PriceUSD: 40},
}

// unknown plans get the free tier
func LimitsFor(plan Plan) Limits {
	if l, ok := planLimits[plan]; ok {
		return l
	}
	return planLimits[PlanFree]
}

func AllLimits() []Limits {
	return []Limits{planLimits[PlanFree], planLimits[PlanStarter], planLimits[PlanPro]}
}

func ParsePlan(s string) (Plan, bool) {
	p := Plan(s)
	_, ok := planLimits[p]
	return p, ok
}

// plans that can be bought through checkout
func PaidPlan(p Plan) bool {
	return p == PlanStarter || p == PlanPro
}

func TopupPacks() []TopupPack {
	out := make([]TopupPack, len(topupPacks))
	copy(out, topupPacks)
	return out
}

func FindTopupPack(id string) (TopupPack, bool) {
	for _, p := range topupPacks {
		if p.ID == id {
			return p, true
		}
	}
	return TopupPack{}, false
}

// Pricing is the public price list.
type Pricing struct {
	Chat         int `json:"chat"`
	CompareSmall int `json:"compare_up_to_3"`
	CompareLarge int `json:"compare_4_to_5"`
	Judge        int `json:"judge"`
	Research     int `json:"research"`
}

func PriceList() Pricing {
	return Pricing{
		Chat:         CostChat,
		CompareSmall: CostCompareSmall,
		CompareLarge: CostCompareLarge,
		Judge:        CostJudge,
		Research:     CostResearch,
	}
}

// checks plan capabilities for an action. returns *GateError when the plan does not allow it
func CheckFeatureGate(plan Plan, mode Mode, modelCount int) error {
	limits := LimitsFor(plan)

	switch mode {
	case ModeCompare:
		if modelCount > limits.MaxCompareModels {
			return &GateError{
				Code:    CodePlanLimitExceeded,
				Plan:    limits.Plan,
				Message: fmt.Sprintf("the %s plan allows comparing up to %d models", limits.Plan, limits.MaxCompareModels),
			}
		}
	case ModeResearch:
		if !limits.ResearchEnabled {
			return &GateError{
				Code:    CodePlanTooLow,
				Plan:    limits.Plan,
				Message: fmt.Sprintf("research panel is not available on the %s plan", limits.Plan),
			}
		}
	}

	return nil
}
