package memoryRepository

import (
	"context"
	"database/sql"
	"time"

	"AssistantGolang/internal/api/memory"
	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type GoalDB struct {
	ID          string       `db:"id"`
	UserID      string       `db:"user_id"`
	Description string       `db:"description"`
	Status      string       `db:"status"`
	TargetDate  sql.NullTime `db:"target_date"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (g GoalDB) toEntity() entity.Goal {
	out := entity.Goal{
		ID:          g.ID,
		UserID:      g.UserID,
		Description: g.Description,
		Status:      entity.GoalStatus(g.Status),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
	if g.TargetDate.Valid {
		t := g.TargetDate.Time
		out.TargetDate = &t
	}
	return out
}

type goalRepo struct {
	q   SQLExecutor
	log *logrus.Logger
}

func (r *goalRepo) Create(c context.Context, g entity.Goal) error {
	requestID := contextPkg.GetRequestID(c)

	var targetDate interface{}
	if g.TargetDate != nil {
		targetDate = *g.TargetDate
	}

	argsKV := map[string]interface{}{
		"id":          g.ID,
		"user_id":     g.UserID,
		"description": g.Description,
		"status":      string(g.Status),
		"target_date": targetDate,
		"created_at":  g.CreatedAt,
		"updated_at":  g.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateGoal, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for Create goal")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating goal")
		return err
	}

	return nil
}

func (r *goalRepo) ListByUser(c context.Context, userID string, status entity.GoalStatus) ([]entity.Goal, error) {
	query, args, err := sqlx.Named(queryListGoalsByUser, map[string]interface{}{
		"user_id": userID,
		"status":  string(status),
	})
	if err != nil {
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []GoalDB
	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		return nil, err
	}

	goals := make([]entity.Goal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, row.toEntity())
	}
	return goals, nil
}

func (r *goalRepo) UpdateStatus(c context.Context, id string, status entity.GoalStatus) error {
	query, args, err := sqlx.Named(queryUpdateGoalStatus, map[string]interface{}{
		"id":         id,
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return memory.ErrGoalNotFound
	}
	return nil
}
