package shares

const (
	queryInsertResult = `
		INSERT INTO shared_results (id, user_id, mode, title, result_data, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	queryGetPublicResult = `
		SELECT id, user_id, mode, title, result_data, is_public, created_at
		FROM shared_results
		WHERE id = $1 AND is_public = true
	`
)
