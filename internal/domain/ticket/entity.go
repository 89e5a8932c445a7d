package ticket

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotPending          = errors.New("ticket is not pending")
	ErrNotClaimed          = errors.New("ticket is not claimed")
	ErrAlreadyTerminal     = errors.New("ticket is already closed")
	ErrEvidenceNotVerified = errors.New("evidence has not been verified")
	ErrNoSupplier          = errors.New("ticket has no assigned supplier")
)

// Ticket is one requester's in-flight transaction against one item.
// Exactly one supplier may ever be assigned (a one-time compare-and-set at
// claim), and a ticket completes at most once.
type Ticket struct {
	id               uuid.UUID
	itemID           uuid.UUID
	requesterID      uuid.UUID
	supplierID       *uuid.UUID
	status           Status
	evidenceVerified bool
	noAutoClose      bool
	createdAt        time.Time
	updatedAt        time.Time
	completedAt      *time.Time
}

func New(itemID, requesterID uuid.UUID, now time.Time) *Ticket {
	return &Ticket{
		id:          uuid.New(),
		itemID:      itemID,
		requesterID: requesterID,
		status:      StatusPending,
		createdAt:   now,
		updatedAt:   now,
	}
}

// Reconstruct rebuilds a ticket from storage without invariant re-checks.
func Reconstruct(
	id, itemID, requesterID uuid.UUID,
	supplierID *uuid.UUID,
	status Status,
	evidenceVerified, noAutoClose bool,
	createdAt, updatedAt time.Time,
	completedAt *time.Time,
) *Ticket {
	return &Ticket{
		id:               id,
		itemID:           itemID,
		requesterID:      requesterID,
		supplierID:       supplierID,
		status:           status,
		evidenceVerified: evidenceVerified,
		noAutoClose:      noAutoClose,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
		completedAt:      completedAt,
	}
}

func (t *Ticket) ID() uuid.UUID          { return t.id }
func (t *Ticket) ItemID() uuid.UUID      { return t.itemID }
func (t *Ticket) RequesterID() uuid.UUID { return t.requesterID }
func (t *Ticket) SupplierID() *uuid.UUID { return t.supplierID }
func (t *Ticket) Status() Status         { return t.status }
func (t *Ticket) EvidenceVerified() bool { return t.evidenceVerified }
func (t *Ticket) NoAutoClose() bool      { return t.noAutoClose }
func (t *Ticket) CreatedAt() time.Time   { return t.createdAt }
func (t *Ticket) UpdatedAt() time.Time   { return t.updatedAt }
func (t *Ticket) CompletedAt() *time.Time {
	return t.completedAt
}

// Claim assigns the supplier and moves the ticket to claimed. Only a
// pending ticket can be claimed; the storage layer enforces the same
// transition with a conditional update so two racing claims cannot both
// succeed.
func (t *Ticket) Claim(supplierID uuid.UUID, now time.Time) error {
	if t.status != StatusPending {
		return ErrNotPending
	}
	sid := supplierID
	t.supplierID = &sid
	t.status = StatusClaimed
	t.updatedAt = now
	return nil
}

// Complete closes a claimed, evidence-verified ticket. The caller debits
// stock and enqueues the cooldown in the same transaction.
func (t *Ticket) Complete(now time.Time) error {
	if t.status != StatusClaimed {
		return ErrNotClaimed
	}
	if !t.evidenceVerified {
		return ErrEvidenceNotVerified
	}
	if t.supplierID == nil {
		return ErrNoSupplier
	}
	t.status = StatusCompleted
	t.completedAt = &now
	t.updatedAt = now
	return nil
}

// Fail closes a claimed ticket without stock side effects.
func (t *Ticket) Fail(now time.Time) error {
	if t.status != StatusClaimed {
		return ErrNotClaimed
	}
	t.status = StatusFailed
	t.updatedAt = now
	return nil
}

// Cancel closes a pending or claimed ticket without stock side effects.
func (t *Ticket) Cancel(now time.Time) error {
	if t.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	t.status = StatusCancelled
	t.updatedAt = now
	return nil
}

func (t *Ticket) MarkEvidenceVerified(now time.Time) error {
	if t.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	t.evidenceVerified = true
	t.updatedAt = now
	return nil
}

func (t *Ticket) SetNoAutoClose(protected bool, now time.Time) error {
	if t.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	t.noAutoClose = protected
	t.updatedAt = now
	return nil
}

// Stale reports whether the auto-close sweep may cancel this ticket: a
// non-terminal ticket with no activity since the idle threshold and no
// protection flag.
func (t *Ticket) Stale(now time.Time, idleAfter time.Duration) bool {
	if t.status.IsTerminal() || t.noAutoClose {
		return false
	}
	return now.Sub(t.updatedAt) > idleAfter
}
