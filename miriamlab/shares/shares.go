package shares

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxTitleLength = 200

// PostgresStore keeps shared results in the shared_results table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *Result) error {
	if err := prepare(r); err != nil {
		return err
	}

	_, err := s.db.Exec(
		ctx,
		queryInsertResult,
		r.ID,
		r.UserID,
		r.Mode,
		r.Title,
		r.ResultData,
		r.IsPublic,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert shared result: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetPublic(ctx context.Context, id string) (*Result, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}

	var r Result
	err := s.db.QueryRow(ctx, queryGetPublicResult, id).Scan(
		&r.ID,
		&r.UserID,
		&r.Mode,
		&r.Title,
		&r.ResultData,
		&r.IsPublic,
		&r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shared result: %w", err)
	}

	return &r, nil
}

// new shares are public; fills id, timestamp and a default title
func prepare(r *Result) error {
	if !ValidMode(r.Mode) {
		return ErrInvalidMode
	}
	if len(r.ResultData) == 0 {
		return ErrEmptyResult
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.IsPublic = true

	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = "Shared " + r.Mode + " result"
	}
	if runes := []rune(r.Title); len(runes) > maxTitleLength {
		r.Title = string(runes[:maxTitleLength])
	}

	return nil
}
