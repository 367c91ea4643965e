package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// appends an entry, filling ID and CreatedAt when unset
func (r *Repository) Log(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Models == nil {
		e.Models = []string{}
	}
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}

	_, err := r.db.Exec(
		ctx,
		queryInsertEntry,
		e.ID,
		e.UserID,
		e.Mode,
		e.CreditsSpent,
		e.Models,
		e.TokensIn,
		e.TokensOut,
		e.Metadata,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage entry: %w", err)
	}

	return nil
}

// newest first, with the total count for pagination
func (r *Repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, queryCountByUser, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, queryListByUser, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Mode,
			&e.CreditsSpent,
			&e.Models,
			&e.TokensIn,
			&e.TokensOut,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
