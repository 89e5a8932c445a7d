package repository

import (
	"context"
	"encoding/json"
	"time"

	"keypool/internal/infra"
	"keypool/internal/infra/db"

	"github.com/google/uuid"
)

// AuditEvent is one append-only row in the audit trail. Detail is free-form
// JSON; kind names follow "<entity>.<verb>".
type AuditEvent struct {
	ID        uuid.UUID
	Kind      string
	ActorID   *uuid.UUID
	SubjectID *uuid.UUID
	Detail    map[string]any
	CreatedAt time.Time
}

type AuditRepository struct{}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Insert(ctx context.Context, tx db.DBTX, ev AuditEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	detail, err := json.Marshal(ev.Detail)
	if err != nil {
		return infra.WrapRepoErr("failed to marshal audit detail", err)
	}
	if ev.Detail == nil {
		detail = []byte("{}")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_events (id, kind, actor_id, subject_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.Kind, ev.ActorID, ev.SubjectID, detail, ev.CreatedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to insert audit event", err)
	}
	return nil
}
