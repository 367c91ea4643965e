package ledger

const (
	queryInsertEntry = `
		INSERT INTO billing_ledger (id, event_id, user_id, event_type, plan, credits_added, amount_cents, correlation_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING id
	`

	querySetSubscription = `
		INSERT INTO user_wallet (user_id, free_daily_remaining, subscription_remaining, topup_remaining, plan, renews_at, last_daily_reset, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5, $6, $6, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			subscription_remaining = EXCLUDED.subscription_remaining,
			renews_at = EXCLUDED.renews_at,
			updated_at = EXCLUDED.updated_at
		RETURNING user_id, free_daily_remaining, subscription_remaining, topup_remaining, plan, renews_at, last_daily_reset, created_at, updated_at
	`

	queryAddTopup = `
		INSERT INTO user_wallet (user_id, free_daily_remaining, subscription_remaining, topup_remaining, plan, last_daily_reset, created_at, updated_at)
		VALUES ($1, $2, 0, $3, 'free', $4, $4, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			topup_remaining = user_wallet.topup_remaining + EXCLUDED.topup_remaining,
			updated_at = EXCLUDED.updated_at
		RETURNING user_id, free_daily_remaining, subscription_remaining, topup_remaining, plan, renews_at, last_daily_reset, created_at, updated_at
	`

	queryListByUser = `
		SELECT id, event_id, user_id, event_type, plan, credits_added, amount_cents, correlation_id, metadata, created_at
		FROM billing_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
)
