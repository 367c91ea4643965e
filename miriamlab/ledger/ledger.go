package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore writes billing_ledger and user_wallet in one transaction.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Apply(ctx context.Context, entry Entry, m Mutation) (bool, *wallets.Wallet, error) {
	fillEntry(&entry)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var id string
	err = tx.QueryRow(
		ctx,
		queryInsertEntry,
		entry.ID,
		entry.EventID,
		entry.UserID,
		entry.EventType,
		string(entry.Plan),
		entry.CreditsAdded,
		entry.AmountCents,
		entry.CorrelationID,
		entry.Metadata,
		entry.CreatedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// event already applied
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	var w *wallets.Wallet
	switch {
	case m.SetSubscription:
		w, err = wallets.ScanWallet(tx.QueryRow(
			ctx,
			querySetSubscription,
			entry.UserID,
			credits.DailyFreeCredits,
			m.Subscription,
			string(m.Plan),
			m.RenewsAt,
			entry.CreatedAt,
		))
	case m.AddTopup > 0:
		w, err = wallets.ScanWallet(tx.QueryRow(
			ctx,
			queryAddTopup,
			entry.UserID,
			credits.DailyFreeCredits,
			m.AddTopup,
			entry.CreatedAt,
		))
	default:
		return false, nil, fmt.Errorf("ledger entry %s has no wallet mutation", entry.EventID)
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, nil, fmt.Errorf("failed to commit billing mutation: %w", err)
	}

	return true, w, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(ctx, queryListByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var plan string
		if err := rows.Scan(
			&e.ID,
			&e.EventID,
			&e.UserID,
			&e.EventType,
			&plan,
			&e.CreditsAdded,
			&e.AmountCents,
			&e.CorrelationID,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Plan = credits.Plan(plan)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func fillEntry(e *Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
}
