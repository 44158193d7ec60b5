package memoryRepository

const (
	queryCreateMemory = `
		INSERT INTO memories (
			id,
			user_id,
			category,
			importance,
			source,
			content,
			summary,
			tags,
			created_at,
			updated_at,
			last_accessed_at,
			access_count,
			expires_at,
			is_archived,
			related_memory_ids
		) VALUES (
			:id,
			:user_id,
			:category,
			:importance,
			:source,
			:content,
			:summary,
			:tags,
			:created_at,
			:updated_at,
			:last_accessed_at,
			:access_count,
			:expires_at,
			:is_archived,
			:related_memory_ids
		)
	`

	queryGetMemoryByID = `
		SELECT
			id, user_id, category, importance, source, content, summary, tags,
			created_at, updated_at, last_accessed_at, access_count, expires_at,
			is_archived, related_memory_ids
		FROM memories
		WHERE id = :id
	`

	queryUpdateMemory = `
		UPDATE memories SET
			category = :category,
			importance = :importance,
			content = :content,
			summary = :summary,
			tags = :tags,
			expires_at = :expires_at,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryArchiveMemory = `
		UPDATE memories SET is_archived = TRUE, updated_at = :updated_at
		WHERE id = :id
	`

	queryTouchMemoryAccess = `
		UPDATE memories SET
			access_count = access_count + 1,
			last_accessed_at = :last_accessed_at
		WHERE id = :id
	`

	queryArchiveExpiredMemories = `
		UPDATE memories SET is_archived = TRUE, updated_at = :now
		WHERE is_archived = FALSE
		  AND expires_at IS NOT NULL
		  AND expires_at < :now
		  AND importance <> 'critical'
	`

	queryAddMemoryLink = `
		UPDATE memories SET
			related_memory_ids = array_append(related_memory_ids, :related_id),
			updated_at = :updated_at
		WHERE id = :id
		  AND NOT (:related_id = ANY(related_memory_ids))
	`

	// queryMemoriesBase gets its WHERE/ORDER BY assembled per request; the
	// importance_weight column lets min-importance and importance sorting
	// share one CASE expression.
	queryMemoriesBase = `
		SELECT
			id, user_id, category, importance, source, content, summary, tags,
			created_at, updated_at, last_accessed_at, access_count, expires_at,
			is_archived, related_memory_ids
		FROM (
			SELECT *,
				CASE importance
					WHEN 'critical' THEN 100
					WHEN 'high' THEN 75
					WHEN 'medium' THEN 50
					WHEN 'low' THEN 25
					ELSE 10
				END AS importance_weight
			FROM memories
		) m
		WHERE user_id = :user_id AND is_archived = FALSE
	`

	queryUpsertPattern = `
		INSERT INTO patterns (
			id, user_id, kind, description, confidence, occurrences,
			last_observed, created_at
		) VALUES (
			:id, :user_id, :kind, :description, :confidence, 1,
			:last_observed, :created_at
		)
		ON CONFLICT (user_id, kind, description) DO UPDATE SET
			occurrences = patterns.occurrences + 1,
			confidence = EXCLUDED.confidence,
			last_observed = EXCLUDED.last_observed
	`

	queryListPatternsByUser = `
		SELECT id, user_id, kind, description, confidence, occurrences,
			last_observed, created_at
		FROM patterns
		WHERE user_id = :user_id
		ORDER BY occurrences DESC
	`

	queryCreateGoal = `
		INSERT INTO goals (
			id, user_id, description, status, target_date, created_at, updated_at
		) VALUES (
			:id, :user_id, :description, :status, :target_date, :created_at, :updated_at
		)
	`

	queryListGoalsByUser = `
		SELECT id, user_id, description, status, target_date, created_at, updated_at
		FROM goals
		WHERE user_id = :user_id AND status = :status
		ORDER BY created_at DESC
	`

	queryUpdateGoalStatus = `
		UPDATE goals SET status = :status, updated_at = :updated_at
		WHERE id = :id
	`
)
