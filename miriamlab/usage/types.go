package usage

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository appends to and reads the usage_log table.
type Repository struct {
	db *pgxpool.Pool
}

// Entry records one charged action. Entries are never updated.
type Entry struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Mode         string         `json:"mode"`
	CreditsSpent int            `json:"credits_spent"`
	Models       []string       `json:"model_ids_used"`
	TokensIn     int            `json:"tokens_in"`
	TokensOut    int            `json:"tokens_out"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
