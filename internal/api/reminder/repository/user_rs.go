package reminderRepository

import (
	"context"
	"database/sql"
	"errors"

	"AssistantGolang/internal/api/reminder"
	"AssistantGolang/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type userRepo struct {
	q   SQLExecutor
	log *logrus.Logger
}

func (r *userRepo) GetByID(c context.Context, id string) (entity.User, error) {
	query, args, err := sqlx.Named(queryGetUserByID, map[string]interface{}{"id": id})
	if err != nil {
		return entity.User{}, err
	}
	query = r.q.Rebind(query)

	var user entity.User
	if err := r.q.GetContext(c, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.User{}, reminder.ErrUserNotFound
		}
		r.log.WithFields(logrus.Fields{
			"user_id": id,
			"error":   err.Error(),
		}).Error("Database error when fetching user")
		return entity.User{}, err
	}

	return user, nil
}
