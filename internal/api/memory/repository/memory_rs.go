package memoryRepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"AssistantGolang/internal/api/memory"
	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type MemoryDB struct {
	ID               string         `db:"id"`
	UserID           string         `db:"user_id"`
	Category         string         `db:"category"`
	Importance       string         `db:"importance"`
	Source           sql.NullString `db:"source"`
	Content          string         `db:"content"`
	Summary          sql.NullString `db:"summary"`
	Tags             pq.StringArray `db:"tags"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	LastAccessedAt   time.Time      `db:"last_accessed_at"`
	AccessCount      int            `db:"access_count"`
	ExpiresAt        sql.NullTime   `db:"expires_at"`
	IsArchived       bool           `db:"is_archived"`
	RelatedMemoryIDs pq.StringArray `db:"related_memory_ids"`
}

func (m MemoryDB) toEntity() entity.Memory {
	out := entity.Memory{
		ID:               m.ID,
		UserID:           m.UserID,
		Category:         m.Category,
		Importance:       entity.ImportanceLevel(m.Importance),
		Source:           m.Source.String,
		Content:          m.Content,
		Summary:          m.Summary.String,
		Tags:             []string(m.Tags),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		LastAccessedAt:   m.LastAccessedAt,
		AccessCount:      m.AccessCount,
		IsArchived:       m.IsArchived,
		RelatedMemoryIDs: []string(m.RelatedMemoryIDs),
	}
	if m.ExpiresAt.Valid {
		t := m.ExpiresAt.Time
		out.ExpiresAt = &t
	}
	return out
}

type memoryRepo struct {
	q   SQLExecutor
	log *logrus.Logger
}

func (r *memoryRepo) Create(c context.Context, m entity.Memory) error {
	requestID := contextPkg.GetRequestID(c)

	var expiresAt interface{}
	if m.ExpiresAt != nil {
		expiresAt = *m.ExpiresAt
	}

	argsKV := map[string]interface{}{
		"id":                 m.ID,
		"user_id":            m.UserID,
		"category":           m.Category,
		"importance":         string(m.Importance),
		"source":             m.Source,
		"content":            m.Content,
		"summary":            m.Summary,
		"tags":               pq.StringArray(m.Tags),
		"created_at":         m.CreatedAt,
		"updated_at":         m.UpdatedAt,
		"last_accessed_at":   m.LastAccessedAt,
		"access_count":       m.AccessCount,
		"expires_at":         expiresAt,
		"is_archived":        m.IsArchived,
		"related_memory_ids": pq.StringArray(m.RelatedMemoryIDs),
	}

	query, args, err := sqlx.Named(queryCreateMemory, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for Create memory")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating memory")
		return err
	}

	return nil
}

func (r *memoryRepo) GetByID(c context.Context, id string) (entity.Memory, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryGetMemoryByID, map[string]interface{}{"id": id})
	if err != nil {
		return entity.Memory{}, err
	}
	query = r.q.Rebind(query)

	var row MemoryDB
	if err := r.q.GetContext(c, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Memory{}, memory.ErrMemoryNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"memory_id":  id,
			"error":      err.Error(),
		}).Error("Database error when fetching memory")
		return entity.Memory{}, err
	}

	return row.toEntity(), nil
}

func (r *memoryRepo) Update(c context.Context, m entity.Memory) error {
	requestID := contextPkg.GetRequestID(c)

	var expiresAt interface{}
	if m.ExpiresAt != nil {
		expiresAt = *m.ExpiresAt
	}

	argsKV := map[string]interface{}{
		"id":         m.ID,
		"category":   m.Category,
		"importance": string(m.Importance),
		"content":    m.Content,
		"summary":    m.Summary,
		"tags":       pq.StringArray(m.Tags),
		"expires_at": expiresAt,
		"updated_at": time.Now().UTC(),
	}

	query, args, err := sqlx.Named(queryUpdateMemory, argsKV)
	if err != nil {
		return err
	}
	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"memory_id":  m.ID,
			"error":      err.Error(),
		}).Error("Database error when updating memory")
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return memory.ErrMemoryNotFound
	}

	return nil
}

func (r *memoryRepo) Archive(c context.Context, id string) error {
	query, args, err := sqlx.Named(queryArchiveMemory, map[string]interface{}{
		"id":         id,
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
		return memory.ErrMemoryNotFound
	}
	return nil
}

func (r *memoryRepo) TouchAccess(c context.Context, id string) error {
	query, args, err := sqlx.Named(queryTouchMemoryAccess, map[string]interface{}{
		"id":               id,
		"last_accessed_at": time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	return err
}

func (r *memoryRepo) ArchiveExpired(c context.Context, now time.Time) (int64, error) {
	query, args, err := sqlx.Named(queryArchiveExpiredMemories, map[string]interface{}{
		"now": now,
	})
	if err != nil {
		return 0, err
	}
	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *memoryRepo) AddLink(c context.Context, id string, relatedID string) error {
	query, args, err := sqlx.Named(queryAddMemoryLink, map[string]interface{}{
		"id":         id,
		"related_id": relatedID,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	return err
}

// Query assembles the WHERE clause from whichever filters the request
// carries. All filters are conjunctive; archived rows never come back.
func (r *memoryRepo) Query(c context.Context, req memory.QueryMemoriesRequest) ([]entity.Memory, error) {
	requestID := contextPkg.GetRequestID(c)

	var sb strings.Builder
	sb.WriteString(queryMemoriesBase)

	argsKV := map[string]interface{}{
		"user_id": req.UserID,
	}

	if len(req.Categories) > 0 {
		sb.WriteString(" AND category = ANY(:categories)")
		argsKV["categories"] = pq.StringArray(req.Categories)
	}
	if req.MinImportance != "" {
		sb.WriteString(" AND importance_weight >= :min_weight")
		argsKV["min_weight"] = entity.ImportanceLevel(req.MinImportance).Weight()
	}
	if len(req.Tags) > 0 {
		sb.WriteString(" AND tags && :tags")
		argsKV["tags"] = pq.StringArray(req.Tags)
	}
	if req.Search != "" {
		sb.WriteString(" AND (content ILIKE :search OR summary ILIKE :search)")
		argsKV["search"] = "%" + req.Search + "%"
	}
	if req.CreatedAfter != nil {
		sb.WriteString(" AND created_at >= :created_after")
		argsKV["created_after"] = *req.CreatedAfter
	}
	if req.CreatedBefore != nil {
		sb.WriteString(" AND created_at <= :created_before")
		argsKV["created_before"] = *req.CreatedBefore
	}

	column, ok := sortColumns[req.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if req.SortDesc {
		direction = "DESC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY %s %s", column, direction))

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	sb.WriteString(" LIMIT :limit OFFSET :offset")
	argsKV["limit"] = limit
	argsKV["offset"] = req.Offset

	query, args, err := sqlx.Named(sb.String(), argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for Query memories")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []MemoryDB
	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when querying memories")
		return nil, err
	}

	memories := make([]entity.Memory, 0, len(rows))
	for _, row := range rows {
		memories = append(memories, row.toEntity())
	}

	return memories, nil
}
