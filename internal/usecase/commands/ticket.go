package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"keypool/internal/domain/identity"
	"keypool/internal/domain/ticket"
	"keypool/internal/infra"
	"keypool/internal/infra/db"
	"keypool/internal/pkg/clock"
	"keypool/internal/pkg/config"
	"keypool/internal/pkg/errs"
	"keypool/internal/usecase/shared"

	"github.com/google/uuid"
)

type TicketCommands interface {
	// Create opens a pending ticket. It fails with ErrNoStockAvailable when
	// the item's pooled stock is zero (callers may offer a waitlist join)
	// and with ErrOnCooldown while the requester's cooldown for the item is
	// running.
	Create(ctx context.Context, itemID, requesterID uuid.UUID) (*ticket.Ticket, error)

	// Claim assigns the supplier, once. Losing a claim race yields
	// ErrAlreadyClaimed; a supplier without stock for the item gets
	// ErrNotEligible.
	Claim(ctx context.Context, ticketID, supplierID uuid.UUID) error

	// Complete closes a claimed, evidence-verified ticket: one transaction
	// debits the supplier's stock, enqueues the cooldown restock and
	// records the completion. Only the claiming supplier or a manager may
	// complete; anyone else gets ErrNotEligible.
	Complete(ctx context.Context, ticketID, actorID uuid.UUID, actorRole identity.Role, proof string) error

	// Fail is open to the claiming supplier and managers; Cancel also to
	// the requester.
	Fail(ctx context.Context, ticketID, actorID uuid.UUID, actorRole identity.Role, reason string) error
	Cancel(ctx context.Context, ticketID, actorID uuid.UUID, actorRole identity.Role, reason ticket.CancelReason) error
	MarkEvidenceVerified(ctx context.Context, ticketID, actorID uuid.UUID) error
	SetNoAutoClose(ctx context.Context, ticketID, actorID uuid.UUID, protected bool) error

	// SweepStale cancels every unprotected ticket idle beyond the
	// configured threshold and returns how many were closed.
	SweepStale(ctx context.Context) (int, error)
}

type ticketCommandsImpl struct {
	uow       shared.UnitOfWork
	tickets   TicketRepository
	stock     StockRepository
	restocks  RestockRepository
	catalog   Catalog
	notifier  Notifier
	audit     auditEmitter
	clock     clock.Clock
	cooldown  config.CooldownConfig
	idleAfter time.Duration
}

func NewTicketCommands(
	uow shared.UnitOfWork,
	tickets TicketRepository,
	stockRepo StockRepository,
	restocks RestockRepository,
	catalogPort Catalog,
	notifier Notifier,
	auditRepo AuditRepository,
	clk clock.Clock,
	cfg config.Config,
) TicketCommands {
	return &ticketCommandsImpl{
		uow:       uow,
		tickets:   tickets,
		stock:     stockRepo,
		restocks:  restocks,
		catalog:   catalogPort,
		notifier:  notifier,
		audit:     auditEmitter{repo: auditRepo, clock: clk},
		clock:     clk,
		cooldown:  cfg.Cooldown,
		idleAfter: cfg.Scheduler.AutoCloseIdleAfter,
	}
}

func (c *ticketCommandsImpl) Create(ctx context.Context, itemID, requesterID uuid.UUID) (*ticket.Ticket, error) {
	item, err := c.catalog.ItemByID(ctx, itemID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrNotFound)
	}

	now := c.clock.Now()
	t := ticket.New(itemID, requesterID, now)

	err = c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		total, err := c.stock.Aggregate(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if total == 0 {
			return errs.Mark(errs.Newf("no stock pooled for %s", item.Name), errs.ErrNoStockAvailable)
		}

		last, err := c.tickets.LastCompletedAt(ctx, tx, requesterID, itemID)
		if err != nil {
			return err
		}
		if last != nil {
			until := last.Add(c.cooldown.For(item.HighDemand))
			if now.Before(until) {
				return errs.Mark(
					errs.Newf("cooldown for %s ends at %s", item.Name, until.Format(time.RFC3339)),
					errs.ErrOnCooldown)
			}
		}

		if err := c.tickets.Create(ctx, tx, t); err != nil {
			return err
		}
		return c.audit.emit(ctx, tx, AuditTicketCreated, ref(requesterID), ref(t.ID()), map[string]any{
			"item_id": itemID,
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (c *ticketCommandsImpl) Claim(ctx context.Context, ticketID, supplierID uuid.UUID) error {
	now := c.clock.Now()

	return c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		t, err := c.tickets.FindByID(ctx, tx, ticketID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrNotFound)
			}
			return err
		}

		// Eligibility is a logical reservation only; nothing is debited
		// until completion, and the debit re-checks quantity then.
		qty, err := c.stock.SupplierQuantity(ctx, tx, supplierID, t.ItemID())
		if err != nil {
			return err
		}
		if qty == 0 {
			return errs.Mark(errs.New("supplier holds no stock for this item"), errs.ErrNotEligible)
		}

		if err := c.tickets.Claim(ctx, tx, ticketID, supplierID, now); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, errs.ErrAlreadyClaimed)
			}
			return err
		}

		return c.audit.emit(ctx, tx, AuditTicketClaimed, ref(supplierID), ref(ticketID), nil)
	})
}

func (c *ticketCommandsImpl) Complete(ctx context.Context, ticketID, actorID uuid.UUID, actorRole identity.Role, proof string) error {
	now := c.clock.Now()

	var requesterID uuid.UUID
	var itemName string

	err := c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		t, err := c.tickets.FindByIDForUpdate(ctx, tx, ticketID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrNotFound)
			}
			return err
		}

		if t.Status() != ticket.StatusClaimed {
			return errs.Mark(errs.Newf("ticket is %s", t.Status()), errs.ErrInvalidState)
		}
		if !t.EvidenceVerified() {
			return errs.Mark(errs.New("proof has not been verified"), errs.ErrEvidenceNotVerified)
		}
		if actorRole != identity.RoleManager && (t.SupplierID() == nil || *t.SupplierID() != actorID) {
			return errs.Mark(errs.New("only the claiming supplier may complete this ticket"), errs.ErrNotEligible)
		}

		item, err := c.catalog.ItemByID(ctx, t.ItemID())
		if err != nil {
			return errs.Mark(err, errs.ErrNotFound)
		}

		// The conditional update is the real once-only guard; the row lock
		// above only orders this flow against concurrent flag changes.
		if err := c.tickets.Complete(ctx, tx, ticketID, now); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, errs.ErrInvalidState)
			}
			return err
		}

		supplierID := *t.SupplierID()
		debited, err := c.stock.RemoveClamped(ctx, tx, supplierID, t.ItemID(), 1, now)
		if err != nil {
			return err
		}

		detail := map[string]any{
			"item_id":     t.ItemID(),
			"supplier_id": supplierID,
			"debited":     debited,
			"proof":       proof,
		}
		// No credit is owed back when the clamp debited nothing.
		if debited > 0 {
			restockAt := now.Add(c.cooldown.For(item.HighDemand))
			if err := c.restocks.Enqueue(ctx, tx, supplierID, t.ItemID(), restockAt, now); err != nil {
				return err
			}
			detail["restock_at"] = restockAt
		}

		requesterID = t.RequesterID()
		itemName = item.Name

		return c.audit.emit(ctx, tx, AuditTicketCompleted, ref(actorID), ref(ticketID), detail)
	})
	if err != nil {
		return err
	}

	c.sendQuiet(ctx, requesterID, fmt.Sprintf("Your request for %s is complete.", itemName))
	return nil
}

func (c *ticketCommandsImpl) Fail(ctx context.Context, ticketID, actorID uuid.UUID, actorRole identity.Role, reason string) error {
	return c.close(ctx, ticketID, actorID, actorRole, false, ticket.StatusFailed, AuditTicketFailed, map[string]any{"reason": reason})
}

func (c *ticketCommandsImpl) Cancel(ctx context.Context, ticketID, actorID uuid.UUID, actorRole identity.Role, reason ticket.CancelReason) error {
	return c.close(ctx, ticketID, actorID, actorRole, true, ticket.StatusCancelled, AuditTicketCancelled, map[string]any{"reason": string(reason)})
}

// closing is restricted to the parties named on the ticket: managers
// always pass, the claiming supplier passes, and the requester passes
// only where allowRequester says so.
func closeAllowed(t *ticket.Ticket, actorID uuid.UUID, role identity.Role, allowRequester bool) bool {
	if role == identity.RoleManager {
		return true
	}
	if t.SupplierID() != nil && *t.SupplierID() == actorID {
		return true
	}
	return allowRequester && t.RequesterID() == actorID
}

func (c *ticketCommandsImpl) close(ctx context.Context, ticketID, actorID uuid.UUID, actorRole identity.Role, allowRequester bool, status ticket.Status, auditKind string, detail map[string]any) error {
	now := c.clock.Now()

	return c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		t, err := c.tickets.FindByIDForUpdate(ctx, tx, ticketID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrNotFound)
			}
			return err
		}
		if !closeAllowed(t, actorID, actorRole, allowRequester) {
			return errs.Mark(errs.New("actor is not a party to this ticket"), errs.ErrNotEligible)
		}

		if err := c.tickets.Close(ctx, tx, ticketID, status, now); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, errs.ErrInvalidState)
			}
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrNotFound)
			}
			return err
		}
		return c.audit.emit(ctx, tx, auditKind, ref(actorID), ref(ticketID), detail)
	})
}

func (c *ticketCommandsImpl) MarkEvidenceVerified(ctx context.Context, ticketID, actorID uuid.UUID) error {
	now := c.clock.Now()
	return c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := c.tickets.SetEvidenceVerified(ctx, tx, ticketID, now); err != nil {
			return mapFlagErr(err)
		}
		return nil
	})
}

func (c *ticketCommandsImpl) SetNoAutoClose(ctx context.Context, ticketID, actorID uuid.UUID, protected bool) error {
	now := c.clock.Now()
	return c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := c.tickets.SetNoAutoClose(ctx, tx, ticketID, protected, now); err != nil {
			return mapFlagErr(err)
		}
		return nil
	})
}

func mapFlagErr(err error) error {
	if infra.IsKind(err, infra.KindConflict) {
		return errs.Mark(err, errs.ErrInvalidState)
	}
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, errs.ErrNotFound)
	}
	return err
}

func (c *ticketCommandsImpl) SweepStale(ctx context.Context) (int, error) {
	now := c.clock.Now()
	cutoff := now.Add(-c.idleAfter)

	var closed []struct {
		id        uuid.UUID
		requester uuid.UUID
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		stale, err := c.tickets.CancelStale(ctx, tx, cutoff, now)
		if err != nil {
			return err
		}
		for _, s := range stale {
			if err := c.audit.emit(ctx, tx, AuditTicketCancelled, nil, ref(s.ID), map[string]any{
				"reason": string(ticket.ReasonStale),
			}); err != nil {
				return err
			}
			closed = append(closed, struct {
				id        uuid.UUID
				requester uuid.UUID
			}{s.ID, s.RequesterID})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, s := range closed {
		c.sendQuiet(ctx, s.requester, "Your request was closed due to inactivity.")
	}
	return len(closed), nil
}

func (c *ticketCommandsImpl) sendQuiet(ctx context.Context, userID uuid.UUID, message string) {
	if err := c.notifier.Send(ctx, userID, message); err != nil {
		slog.Warn("notification delivery failed", "user_id", userID, "error", err.Error())
	}
}
