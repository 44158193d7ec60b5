package memoryRepository

import (
	"context"

	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type patternRepo struct {
	q   SQLExecutor
	log *logrus.Logger
}

// Upsert records another observation of a known pattern, or inserts a new
// one with a single occurrence.
func (r *patternRepo) Upsert(c context.Context, p entity.Pattern) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"id":            p.ID,
		"user_id":       p.UserID,
		"kind":          p.Kind,
		"description":   p.Description,
		"confidence":    p.Confidence,
		"last_observed": p.LastObserved,
		"created_at":    p.CreatedAt,
	}

	query, args, err := sqlx.Named(queryUpsertPattern, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for Upsert pattern")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when upserting pattern")
		return err
	}

	return nil
}

func (r *patternRepo) ListByUser(c context.Context, userID string) ([]entity.Pattern, error) {
	query, args, err := sqlx.Named(queryListPatternsByUser, map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		return nil, err
	}
	query = r.q.Rebind(query)

	var patterns []entity.Pattern
	if err := r.q.SelectContext(c, &patterns, query, args...); err != nil {
		return nil, err
	}

	return patterns, nil
}
