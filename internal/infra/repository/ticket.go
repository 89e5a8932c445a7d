package repository

import (
	"context"
	"errors"
	"time"

	"keypool/internal/domain/ticket"
	"keypool/internal/infra"
	"keypool/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TicketRepository persists the ticket state machine. Transitions are
// conditional updates on the current status, so a racing transition loses
// with zero rows affected instead of overwriting the winner.
type TicketRepository struct{}

func NewTicketRepository() *TicketRepository {
	return &TicketRepository{}
}

func (r *TicketRepository) Create(ctx context.Context, tx db.DBTX, t *ticket.Ticket) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO tickets (id, item_id, requester_id, supplier_id, status, evidence_verified, no_auto_close, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID(), t.ItemID(), t.RequesterID(), t.SupplierID(), t.Status().String(),
		t.EvidenceVerified(), t.NoAutoClose(), t.CreatedAt(), t.UpdatedAt(), t.CompletedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create ticket", err)
	}
	return nil
}

func (r *TicketRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*ticket.Ticket, error) {
	return r.find(ctx, tx, id, false)
}

// FindByIDForUpdate locks the row for the rest of the transaction.
func (r *TicketRepository) FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*ticket.Ticket, error) {
	return r.find(ctx, tx, id, true)
}

func (r *TicketRepository) find(ctx context.Context, tx db.DBTX, id uuid.UUID, forUpdate bool) (*ticket.Ticket, error) {
	q := `
		SELECT id, item_id, requester_id, supplier_id, status, evidence_verified, no_auto_close, created_at, updated_at, completed_at
		FROM tickets WHERE id = $1`
	if forUpdate {
		q += " FOR UPDATE"
	}

	var (
		ticketID, itemID, requesterID uuid.UUID
		supplierID                    *uuid.UUID
		status                        string
		evidenceVerified, noAutoClose bool
		createdAt, updatedAt          time.Time
		completedAt                   *time.Time
	)
	err := tx.QueryRow(ctx, q, id).Scan(
		&ticketID, &itemID, &requesterID, &supplierID, &status,
		&evidenceVerified, &noAutoClose, &createdAt, &updatedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("ticket not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find ticket", err)
	}

	st, err := ticket.ParseStatus(status)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt ticket status", err)
	}
	return ticket.Reconstruct(ticketID, itemID, requesterID, supplierID, st,
		evidenceVerified, noAutoClose, createdAt, updatedAt, completedAt), nil
}

// Claim is the one-time supplier assignment: it succeeds only while the
// ticket is still pending. Zero rows affected means another claim won.
func (r *TicketRepository) Claim(ctx context.Context, tx db.DBTX, id, supplierID uuid.UUID, now time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE tickets
		SET status = $2, supplier_id = $3, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id, ticket.StatusClaimed.String(), supplierID, now, ticket.StatusPending.String())
	if err != nil {
		return infra.WrapRepoErr("failed to claim ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("ticket is not pending", nil, infra.KindConflict)
	}
	return nil
}

// Complete transitions claimed → completed, requiring verified evidence in
// the same predicate so the transition happens at most once.
func (r *TicketRepository) Complete(ctx context.Context, tx db.DBTX, id uuid.UUID, now time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE tickets
		SET status = $2, completed_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4 AND evidence_verified`,
		id, ticket.StatusCompleted.String(), now, ticket.StatusClaimed.String())
	if err != nil {
		return infra.WrapRepoErr("failed to complete ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("ticket is not claimable for completion", nil, infra.KindConflict)
	}
	return nil
}

// Close moves a non-terminal ticket to the given terminal status.
func (r *TicketRepository) Close(ctx context.Context, tx db.DBTX, id uuid.UUID, status ticket.Status, now time.Time) error {
	if !status.IsTerminal() {
		return infra.WrapRepoErr("close requires a terminal status", nil, infra.KindConflict)
	}
	tag, err := tx.Exec(ctx, `
		UPDATE tickets
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status IN ($4, $5)`,
		id, status.String(), now, ticket.StatusPending.String(), ticket.StatusClaimed.String())
	if err != nil {
		return infra.WrapRepoErr("failed to close ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("ticket is already closed", nil, infra.KindConflict)
	}
	return nil
}

func (r *TicketRepository) SetEvidenceVerified(ctx context.Context, tx db.DBTX, id uuid.UUID, now time.Time) error {
	return r.setFlag(ctx, tx, id, "evidence_verified", true, now)
}

func (r *TicketRepository) SetNoAutoClose(ctx context.Context, tx db.DBTX, id uuid.UUID, protected bool, now time.Time) error {
	return r.setFlag(ctx, tx, id, "no_auto_close", protected, now)
}

func (r *TicketRepository) setFlag(ctx context.Context, tx db.DBTX, id uuid.UUID, column string, value bool, now time.Time) error {
	// column is a compile-time constant at every call site
	tag, err := tx.Exec(ctx, `
		UPDATE tickets SET `+column+` = $2, updated_at = $3
		WHERE id = $1 AND status IN ($4, $5)`,
		id, value, now, ticket.StatusPending.String(), ticket.StatusClaimed.String())
	if err != nil {
		return infra.WrapRepoErr("failed to update ticket flag", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("ticket is already closed", nil, infra.KindConflict)
	}
	return nil
}

// LastCompletedAt returns the requester's most recent completion for the
// item across all suppliers, or nil if they never completed one.
func (r *TicketRepository) LastCompletedAt(ctx context.Context, tx db.DBTX, requesterID, itemID uuid.UUID) (*time.Time, error) {
	var completedAt time.Time
	err := tx.QueryRow(ctx, `
		SELECT completed_at FROM tickets
		WHERE requester_id = $1 AND item_id = $2 AND status = $3
		ORDER BY completed_at DESC
		LIMIT 1`,
		requesterID, itemID, ticket.StatusCompleted.String()).Scan(&completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to read last completion", err)
	}
	return &completedAt, nil
}

// StaleClosed is one cancelled ticket reported by CancelStale.
type StaleClosed struct {
	ID          uuid.UUID
	RequesterID uuid.UUID
}

// CancelStale cancels every unprotected non-terminal ticket idle since
// before the cutoff, in one statement.
func (r *TicketRepository) CancelStale(ctx context.Context, tx db.DBTX, cutoff, now time.Time) ([]StaleClosed, error) {
	rows, err := tx.Query(ctx, `
		UPDATE tickets
		SET status = $1, updated_at = $2
		WHERE status IN ($3, $4) AND NOT no_auto_close AND updated_at < $5
		RETURNING id, requester_id`,
		ticket.StatusCancelled.String(), now,
		ticket.StatusPending.String(), ticket.StatusClaimed.String(), cutoff)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to cancel stale tickets", err)
	}
	defer rows.Close()

	var closed []StaleClosed
	for rows.Next() {
		var c StaleClosed
		if err := rows.Scan(&c.ID, &c.RequesterID); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cancelled ticket", err)
		}
		closed = append(closed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cancelled tickets", err)
	}
	return closed, nil
}
