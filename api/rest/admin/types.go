package admin

import "context"

// DailyResetter runs the stale free-allowance sweep.
type DailyResetter interface {
	RunDailyReset(ctx context.Context) (int64, error)
}

type DailyResetResponse struct {
	Reset int64 `json:"reset"`
}
