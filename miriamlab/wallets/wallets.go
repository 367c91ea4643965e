package wallets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps wallets in the user_wallet table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, userID string) (*Wallet, error) {
	w, err := scanWallet(s.db.QueryRow(ctx, queryFindWallet, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}

	return w, nil
}

func (s *PostgresStore) Create(ctx context.Context, userID string, now time.Time) (*Wallet, error) {
	w, err := scanWallet(s.db.QueryRow(ctx, queryCreateWallet, userID, credits.DailyFreeCredits, now))
	if errors.Is(err, pgx.ErrNoRows) {
		// lost the race to another creator
		return s.Find(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	return w, nil
}

func (s *PostgresStore) ResetDaily(ctx context.Context, userID string, cutoff, now time.Time) (*Wallet, error) {
	w, err := scanWallet(s.db.QueryRow(ctx, queryResetDaily, userID, credits.DailyFreeCredits, now, cutoff))
	if errors.Is(err, pgx.ErrNoRows) {
		// already reset by a concurrent reader
		return s.Find(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reset daily credits: %w", err)
	}

	return w, nil
}

func (s *PostgresStore) Deduct(ctx context.Context, userID string, d credits.Deduction, now time.Time) (*Wallet, error) {
	w, err := scanWallet(s.db.QueryRow(ctx, queryDeduct, userID, d.Free, d.Subscription, d.Topup, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to deduct credits: %w", err)
	}

	return w, nil
}

func (s *PostgresStore) ResetStaleDaily(ctx context.Context, cutoff, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, queryResetStaleDaily, credits.DailyFreeCredits, now, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale wallets: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ScanWallet reads a row selected with the standard wallet column list.
func ScanWallet(row pgx.Row) (*Wallet, error) {
	return scanWallet(row)
}

func scanWallet(row pgx.Row) (*Wallet, error) {
	var w Wallet
	var plan string

	err := row.Scan(
		&w.UserID,
		&w.FreeDailyRemaining,
		&w.SubscriptionRemaining,
		&w.TopupRemaining,
		&plan,
		&w.RenewsAt,
		&w.LastDailyReset,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	w.Plan = credits.Plan(plan)
	return &w, nil
}
