package memoryRepository

import (
	"time"

	"AssistantGolang/internal/api/memory"
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
		Memory:   &memoryRepo{q: sqlExecutor, log: r.log},
		Pattern:  &patternRepo{q: sqlExecutor, log: r.log},
		Goal:     &goalRepo{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Memory interface {
		Create(c context.Context, m entity.Memory) error
		GetByID(c context.Context, id string) (entity.Memory, error)
		Update(c context.Context, m entity.Memory) error
		Archive(c context.Context, id string) error
		TouchAccess(c context.Context, id string) error
		Query(c context.Context, req memory.QueryMemoriesRequest) ([]entity.Memory, error)
		ArchiveExpired(c context.Context, now time.Time) (int64, error)
		AddLink(c context.Context, id string, relatedID string) error
	}

	Pattern interface {
		Upsert(c context.Context, p entity.Pattern) error
		ListByUser(c context.Context, userID string) ([]entity.Pattern, error)
	}

	Goal interface {
		Create(c context.Context, g entity.Goal) error
		ListByUser(c context.Context, userID string, status entity.GoalStatus) ([]entity.Goal, error)
		UpdateStatus(c context.Context, id string, status entity.GoalStatus) error
	}

	Commit   func() error
	Rollback func() error
}

// sortColumns maps API sort names onto real columns. Anything else is
// rejected before the query is built.
var sortColumns = map[string]string{
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
	"lastAccessedAt": "last_accessed_at",
	"importance":     "importance_weight",
}
