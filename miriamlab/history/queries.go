package history

const (
	queryListSessions = `
		SELECT id, user_id, mode, title, metadata, created_at
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	queryCountSessions = `
		SELECT COUNT(*) FROM user_sessions WHERE user_id = $1
	`

	queryDeleteOldest = `
		DELETE FROM user_sessions
		WHERE id IN (
			SELECT id FROM user_sessions
			WHERE user_id = $1
			ORDER BY created_at ASC
			LIMIT $2
		)
	`

	queryInsertSession = `
		INSERT INTO user_sessions (id, user_id, mode, title, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
)
