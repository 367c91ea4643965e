package wallets

const walletColumns = `user_id, free_daily_remaining, subscription_remaining, topup_remaining, plan, renews_at, last_daily_reset, created_at, updated_at`

const (
	queryFindWallet = `
		SELECT ` + walletColumns + `
		FROM user_wallet
		WHERE user_id = $1
	`

	queryCreateWallet = `
		INSERT INTO user_wallet (user_id, free_daily_remaining, subscription_remaining, topup_remaining, plan, last_daily_reset, created_at, updated_at)
		VALUES ($1, $2, 0, 0, 'free', $3, $3, $3)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING ` + walletColumns

	queryResetDaily = `
		UPDATE user_wallet
		SET free_daily_remaining = $2, last_daily_reset = $3, updated_at = $3
		WHERE user_id = $1 AND last_daily_reset <= $4
		RETURNING ` + walletColumns

	queryDeduct = `
		UPDATE user_wallet
		SET free_daily_remaining = free_daily_remaining - $2,
			subscription_remaining = subscription_remaining - $3,
			topup_remaining = topup_remaining - $4,
			updated_at = $5
		WHERE user_id = $1
			AND free_daily_remaining >= $2
			AND subscription_remaining >= $3
			AND topup_remaining >= $4
		RETURNING ` + walletColumns

	queryResetStaleDaily = `
		UPDATE user_wallet
		SET free_daily_remaining = $1, last_daily_reset = $2, updated_at = $2
		WHERE last_daily_reset <= $3
	`
)
