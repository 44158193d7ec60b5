package reminderRepository

import (
	"time"

	"AssistantGolang/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Reminder:  &reminderRepo{q: sqlExecutor, log: r.log},
		VoiceCall: &voiceCallRepo{q: sqlExecutor, log: r.log},
		User:      &userRepo{q: sqlExecutor, log: r.log},
		Commit:    commitFunc,
		Rollback:  rollbackFunc,
	}, nil
}

type Client struct {
	Reminder interface {
		Create(c context.Context, r entity.Reminder) error
		GetByID(c context.Context, id string) (entity.Reminder, error)
		ListByUser(c context.Context, userID string, statuses []entity.ReminderStatus) ([]entity.Reminder, error)
		ListDue(c context.Context, now time.Time) ([]entity.Reminder, error)
		Update(c context.Context, r entity.Reminder) error
		UpdateStatus(c context.Context, id string, status entity.ReminderStatus) error
		Snooze(c context.Context, id string, until time.Time) error
	}

	VoiceCall interface {
		Create(c context.Context, call entity.VoiceCall) error
		UpdateStatusByProviderID(c context.Context, providerID string, status entity.VoiceCallStatus) error
	}

	User interface {
		GetByID(c context.Context, id string) (entity.User, error)
	}

	Commit   func() error
	Rollback func() error
}
