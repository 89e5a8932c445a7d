package queries

import (
	"context"
)

type AuditQueries interface {
	ListRecent(ctx context.Context, kind string, limit int) ([]*AuditEventView, error)
}

type AuditViewRepo interface {
	FindRecent(ctx context.Context, kind string, limit int) ([]*AuditEventView, error)
}

type auditQueriesImpl struct {
	repo AuditViewRepo
}

func NewAuditQueries(repo AuditViewRepo) AuditQueries {
	return &auditQueriesImpl{repo: repo}
}

func (q *auditQueriesImpl) ListRecent(ctx context.Context, kind string, limit int) ([]*AuditEventView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return q.repo.FindRecent(ctx, kind, limit)
}
