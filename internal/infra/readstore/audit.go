package readstore

import (
	"context"
	"encoding/json"

	"keypool/internal/infra"
	"keypool/internal/infra/db"
	"keypool/internal/usecase/queries"
)

type AuditReadStore struct {
	pool db.DBTX
}

func NewAuditReadStore(pool db.DBTX) *AuditReadStore {
	return &AuditReadStore{pool: pool}
}

func (r *AuditReadStore) FindRecent(ctx context.Context, kind string, limit int) ([]*queries.AuditEventView, error) {
	q := `
		SELECT id, kind, actor_id, subject_id, detail, created_at
		FROM audit_events`
	args := []any{limit}
	if kind != "" {
		q += ` WHERE kind = $2`
		args = append(args, kind)
	}
	q += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list audit events", err)
	}
	defer rows.Close()

	var views []*queries.AuditEventView
	for rows.Next() {
		var v queries.AuditEventView
		var detail []byte
		if err := rows.Scan(&v.ID, &v.Kind, &v.ActorID, &v.SubjectID, &detail, &v.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan audit event", err)
		}
		if err := json.Unmarshal(detail, &v.Detail); err != nil {
			return nil, infra.WrapRepoErr("corrupt audit detail", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate audit events", err)
	}
	return views, nil
}
