package commands

import (
	"context"

	"keypool/internal/infra/db"
	"keypool/internal/infra/repository"
	"keypool/internal/pkg/clock"

	"github.com/google/uuid"
)

// Audit event kinds emitted by the core. External logging hooks consume
// these through the audit query surface.
const (
	AuditTicketCreated   = "ticket.created"
	AuditTicketClaimed   = "ticket.claimed"
	AuditTicketCompleted = "ticket.completed"
	AuditTicketFailed    = "ticket.failed"
	AuditTicketCancelled = "ticket.cancelled"
	AuditStockAdded      = "stock.added"
	AuditStockRemoved    = "stock.removed"
	AuditRestockCredited = "restock.credited"
	AuditWaitlistDrained = "waitlist.drained"
	AuditPanelReplaced   = "panel.replaced"
	AuditPanelPaused     = "panel.paused"
	AuditPanelReopened   = "panel.reopened"
	AuditPanelCleared    = "panel.cleared"
)

// auditEmitter writes audit rows inside the caller's transaction so the
// trail commits atomically with the change it records.
type auditEmitter struct {
	repo  AuditRepository
	clock clock.Clock
}

func (a *auditEmitter) emit(ctx context.Context, tx db.DBTX, kind string, actorID, subjectID *uuid.UUID, detail map[string]any) error {
	return a.repo.Insert(ctx, tx, repository.AuditEvent{
		Kind:      kind,
		ActorID:   actorID,
		SubjectID: subjectID,
		Detail:    detail,
		CreatedAt: a.clock.Now(),
	})
}

func ref(id uuid.UUID) *uuid.UUID {
	return &id
}
