package credits

import "time"

// metered action kinds
type Mode string

const (
	ModeChat     Mode = "chat"
	ModeCompare  Mode = "compare"
	ModeJudge    Mode = "judge"
	ModeResearch Mode = "research"
)

type Plan string

const (
	PlanFree    Plan = "free"
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
)

// Balance is the spendable state of a wallet.
type Balance struct {
	FreeDaily    int        `json:"free_daily_credits_remaining"`
	Subscription int        `json:"subscription_credits_remaining"`
	Topup        int        `json:"topup_credits_remaining"`
	Plan         Plan       `json:"subscription_plan"`
	RenewsAt     *time.Time `json:"subscription_renews_at,omitempty"`
}

// sum of all three tiers
func (b Balance) Total() int {
	return b.FreeDaily + b.Subscription + b.Topup
}

// Deduction is how many credits are taken from each tier.
type Deduction struct {
	Free         int `json:"free"`
	Subscription int `json:"subscription"`
	Topup        int `json:"topup"`
}

func (d Deduction) Total() int {
	return d.Free + d.Subscription + d.Topup
}

// Limits is one row of the plan capability table.
type Limits struct {
	Plan               Plan `json:"plan"`
	MonthlyCredits     int  `json:"monthly_credits"`
	DailyFreeCredits   int  `json:"daily_free_credits"`
	MaxCompareModels   int  `json:"max_compare_models"`
	ResearchEnabled    bool `json:"research_enabled"`
	MaxHistorySessions int  `json:"max_history_sessions"`
	PriceUSD           int  `json:"price_usd"`
}

// TopupPack is a one-time credit purchase option.
type TopupPack struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Credits  int    `json:"credits"`
	PriceUSD int    `json:"price_usd"`
}

// machine-readable plan gate codes
const (
	CodePlanLimitExceeded = "PLAN_LIMIT_EXCEEDED"
	CodePlanTooLow        = "PLAN_TOO_LOW"
)

// GateError is returned when a plan does not allow the requested action.
type GateError struct {
	Code    string
	Plan    Plan
	Message string
}

func (e *GateError) Error() string {
	return e.Message
}
