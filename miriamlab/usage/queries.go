package usage

const (
	queryInsertEntry = `
		INSERT INTO usage_log (id, user_id, mode, credits_spent, model_ids_used, tokens_in, tokens_out, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	queryCountByUser = `
		SELECT COUNT(*) FROM usage_log WHERE user_id = $1
	`

	queryListByUser = `
		SELECT id, user_id, mode, credits_spent, model_ids_used, tokens_in, tokens_out, metadata, created_at
		FROM usage_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
)
