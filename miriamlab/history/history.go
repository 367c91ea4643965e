package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps sessions in the user_sessions table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context, userID string, limit int) ([]Session, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.Query(ctx, queryListSessions, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(
			&sess.ID,
			&sess.UserID,
			&sess.Mode,
			&sess.Title,
			&sess.Metadata,
			&sess.CreatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, sess *Session, limit int) error {
	if err := prepare(sess, limit); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var count int
	if err := tx.QueryRow(ctx, queryCountSessions, sess.UserID).Scan(&count); err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}

	if excess := count - limit + 1; excess > 0 {
		if _, err := tx.Exec(ctx, queryDeleteOldest, sess.UserID, excess); err != nil {
			return fmt.Errorf("failed to trim session history: %w", err)
		}
	}

	_, err = tx.Exec(
		ctx,
		queryInsertSession,
		sess.ID,
		sess.UserID,
		sess.Mode,
		sess.Title,
		sess.Metadata,
		sess.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return tx.Commit(ctx)
}

// validates and fills defaults shared by every store
func prepare(s *Session, limit int) error {
	if limit <= 0 {
		return ErrInvalidLimit
	}
	if !ValidMode(s.Mode) {
		return ErrInvalidMode
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}

	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		s.Title = "Untitled " + s.Mode
	}
	if r := []rune(s.Title); len(r) > maxTitleLength {
		s.Title = string(r[:maxTitleLength])
	}

	return nil
}
