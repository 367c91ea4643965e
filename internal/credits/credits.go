// Package credits holds the pricing table, plan capabilities and the
// balance arithmetic used by every metered action. Nothing here does I/O.
package credits

import "time"

const (
	CostChat         = 1
	CostCompareSmall = 3
	CostCompareLarge = 5
	CostJudge        = 6
	CostResearch     = 10

	// compare requests above this many models use the large tier
	compareSmallMaxModels = 3

	// hard cap on compare fan-out regardless of plan
	MaxCompareModels = 5

	// fixed cap on judge candidates
	MaxJudgeCandidates = 3

	// research experts per request
	MaxResearchExperts = 5

	DailyFreeCredits = 10
)

// returns the price of one action. judge and research are flat regardless of model count
func CreditsNeeded(mode Mode, modelCount int) int {
	switch mode {
	case ModeChat:
		return CostChat
	case ModeCompare:
		if modelCount <= compareSmallMaxModels {
			return CostCompareSmall
		}
		return CostCompareLarge
	case ModeJudge:
		return CostJudge
	case ModeResearch:
		return CostResearch
	default:
		return 0
	}
}

// usage log label for an action
func UsageMode(mode Mode, modelCount int) string {
	if mode != ModeCompare {
		return string(mode)
	}

	if modelCount <= compareSmallMaxModels {
		return "compare-le3"
	}

	return "compare-4to5"
}

func ValidMode(mode Mode) bool {
	switch mode {
	case ModeChat, ModeCompare, ModeJudge, ModeResearch:
		return true
	}
	return false
}

// true when the three tiers together cover the need
func HasEnoughCredits(balance Balance, needed int) bool {
	return balance.Total() >= needed
}

// splits a need across tiers: free first, then subscription, then topup.
// callers must check HasEnoughCredits first, otherwise the result covers less than needed
func CalculateDeduction(balance Balance, needed int) Deduction {
	var d Deduction
	remaining := needed

	d.Free = take(balance.FreeDaily, &remaining)
	d.Subscription = take(balance.Subscription, &remaining)
	d.Topup = take(balance.Topup, &remaining)

	return d
}

func take(available int, remaining *int) int {
	if available <= 0 || *remaining <= 0 {
		return 0
	}

	n := min(available, *remaining)
	*remaining -= n

	return n
}

// subtracts a deduction from a balance
func (b Balance) Apply(d Deduction) Balance {
	b.FreeDaily -= d.Free
	b.Subscription -= d.Subscription
	b.Topup -= d.Topup
	return b
}

// whether the free allowance is due for rollover: at least one whole day since the last reset
func DailyResetDue(lastReset, now time.Time) bool {
	return now.Sub(lastReset) >= 24*time.Hour
}

// returns the balance after the lazy daily rollover and whether one happened
func ApplyDailyReset(balance Balance, lastReset, now time.Time) (Balance, bool) {
	if !DailyResetDue(lastReset, now) {
		return balance, false
	}

	balance.FreeDaily = LimitsFor(balance.Plan).DailyFreeCredits
	return balance, true
}
