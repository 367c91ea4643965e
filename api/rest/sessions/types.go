package sessions

import (
	"context"

	"codeberg.org/miriamlab/server/miriamlab/history"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

// PlanReader resolves the caller's plan, which bounds how much history is kept.
type PlanReader interface {
	GetBalance(ctx context.Context, userID string) (*wallets.Wallet, error)
}

type CreateSessionRequest struct {
	Mode     string         `json:"mode" binding:"required,oneof=chat compare judge research"`
	Title    string         `json:"title"`
	Metadata map[string]any `json:"metadata"`
}

type ListSessionsResponse struct {
	Sessions []history.Session `json:"sessions"`
	Limit    int               `json:"limit"`
}
