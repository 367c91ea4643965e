package history

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidMode  = errors.New("invalid session mode")
	ErrInvalidLimit = errors.New("session limit must be positive")
)

// modes a history session can record
const (
	ModeChat     = "chat"
	ModeCompare  = "compare"
	ModeJudge    = "judge"
	ModeResearch = "research"
)

const maxTitleLength = 200

// Session is one saved playground run.
type Session struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Mode      string         `json:"mode"`
	Title     string         `json:"title"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Store keeps a bounded, newest-first session history per user.
type Store interface {
	// newest first, at most limit sessions
	List(ctx context.Context, userID string, limit int) ([]Session, error)

	// inserts s, first deleting the user's oldest sessions so the total stays within limit
	Create(ctx context.Context, s *Session, limit int) error
}

func ValidMode(mode string) bool {
	switch mode {
	case ModeChat, ModeCompare, ModeJudge, ModeResearch:
		return true
	}
	return false
}
