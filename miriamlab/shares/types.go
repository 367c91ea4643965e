package shares

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("shared result not found")
	ErrInvalidMode = errors.New("only compare, judge and research results can be shared")
	ErrEmptyResult = errors.New("result_data is required")
)

// Result is a snapshot of an orchestration result published under a link.
type Result struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id,omitempty"`
	Mode       string         `json:"mode"`
	Title      string         `json:"title"`
	ResultData map[string]any `json:"result_data"`
	IsPublic   bool           `json:"is_public"`
	CreatedAt  time.Time      `json:"created_at"`
}

type Store interface {
	Create(ctx context.Context, r *Result) error

	// ErrNotFound for missing and private results alike
	GetPublic(ctx context.Context, id string) (*Result, error)
}

func ValidMode(mode string) bool {
	switch mode {
	case "compare", "judge", "research":
		return true
	}
	return false
}
