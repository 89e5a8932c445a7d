package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"keypool/internal/domain/waitlist"
	"keypool/internal/infra/db"
	"keypool/internal/pkg/clock"
	"keypool/internal/pkg/config"
	"keypool/internal/usecase/shared"

	"github.com/google/uuid"
)

type WaitlistCommands interface {
	// Join is idempotent: re-joining is a no-op and reports joined=false.
	Join(ctx context.Context, itemID, userID uuid.UUID) (bool, error)
	Leave(ctx context.Context, itemID, userID uuid.UUID) (int64, error)
	LeaveAll(ctx context.Context, userID uuid.UUID) (int64, error)

	// Drain notifies every waiter for the item, tier descending then join
	// time ascending, and clears the list. It no-ops while aggregate stock
	// is zero, and drains for the same item never overlap, so one restock
	// event produces at most one round of notifications.
	Drain(ctx context.Context, itemID uuid.UUID) (int, error)
}

type waitlistCommandsImpl struct {
	uow        shared.UnitOfWork
	waitlist   WaitlistRepository
	stock      StockRepository
	membership Membership
	notifier   Notifier
	catalog    Catalog
	audit      auditEmitter
	clock      clock.Clock
	sendTimeout time.Duration

	mu       sync.Mutex
	draining map[uuid.UUID]bool
}

func NewWaitlistCommands(
	uow shared.UnitOfWork,
	waitlistRepo WaitlistRepository,
	stockRepo StockRepository,
	membership Membership,
	notifier Notifier,
	catalogPort Catalog,
	auditRepo AuditRepository,
	clk clock.Clock,
	cfg config.Config,
) WaitlistCommands {
	return &waitlistCommandsImpl{
		uow:         uow,
		waitlist:    waitlistRepo,
		stock:       stockRepo,
		membership:  membership,
		notifier:    notifier,
		catalog:     catalogPort,
		audit:       auditEmitter{repo: auditRepo, clock: clk},
		clock:       clk,
		sendTimeout: cfg.Notifier.SendTimeout,
		draining:    make(map[uuid.UUID]bool),
	}
}

func (c *waitlistCommandsImpl) Join(ctx context.Context, itemID, userID uuid.UUID) (bool, error) {
	now := c.clock.Now()
	var joined bool
	err := c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		joined, err = c.waitlist.Join(ctx, tx, itemID, userID, now)
		return err
	})
	return joined, err
}

func (c *waitlistCommandsImpl) Leave(ctx context.Context, itemID, userID uuid.UUID) (int64, error) {
	var removed int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		removed, err = c.waitlist.Leave(ctx, tx, itemID, userID)
		return err
	})
	return removed, err
}

func (c *waitlistCommandsImpl) LeaveAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	var removed int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		removed, err = c.waitlist.LeaveAll(ctx, tx, userID)
		return err
	})
	return removed, err
}

func (c *waitlistCommandsImpl) Drain(ctx context.Context, itemID uuid.UUID) (int, error) {
	if !c.tryAcquire(itemID) {
		// Another drain for this item is in flight; that round will cover
		// the current waiters.
		return 0, nil
	}
	defer c.release(itemID)

	var entries []waitlist.Entry
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx db.DBTX) error {
		total, err := c.stock.Aggregate(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if total == 0 {
			// Spurious trigger before the credit landed; leave the list
			// intact for the real event.
			return nil
		}
		entries, err = c.waitlist.ListByItem(ctx, tx, itemID)
		return err
	})
	if err != nil || len(entries) == 0 {
		return 0, err
	}

	waiters, err := c.rank(ctx, entries)
	if err != nil {
		return 0, err
	}

	message := c.restockMessage(ctx, itemID)
	notified := 0
	for _, w := range waiters {
		if c.sendBounded(ctx, w.UserID, message) {
			notified++
		}
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		cleared, err := c.waitlist.ClearItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		return c.audit.emit(ctx, tx, AuditWaitlistDrained, nil, ref(itemID), map[string]any{
			"waiters":  cleared,
			"notified": notified,
		})
	})
	if err != nil {
		return notified, err
	}
	return notified, nil
}

func (c *waitlistCommandsImpl) rank(ctx context.Context, entries []waitlist.Entry) ([]waitlist.Waiter, error) {
	userIDs := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		userIDs[i] = e.UserID
	}
	tiers, err := c.membership.TiersOf(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	waiters := make([]waitlist.Waiter, len(entries))
	for i, e := range entries {
		waiters[i] = waitlist.Waiter{Entry: e, Tier: tiers[e.UserID]}
	}
	waitlist.SortForDrain(waiters)
	return waiters, nil
}

func (c *waitlistCommandsImpl) restockMessage(ctx context.Context, itemID uuid.UUID) string {
	if item, err := c.catalog.ItemByID(ctx, itemID); err == nil {
		return item.Name + " is back in stock."
	}
	return "An item you are waiting on is back in stock."
}

// sendBounded delivers one notification with its own timeout. A failing or
// hanging recipient affects neither the remaining sends nor the cleanup.
func (c *waitlistCommandsImpl) sendBounded(ctx context.Context, userID uuid.UUID, message string) bool {
	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	if err := c.notifier.Send(sendCtx, userID, message); err != nil {
		slog.Warn("waitlist notification failed", "user_id", userID, "error", err.Error())
		return false
	}
	return true
}

func (c *waitlistCommandsImpl) tryAcquire(itemID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draining[itemID] {
		return false
	}
	c.draining[itemID] = true
	return true
}

func (c *waitlistCommandsImpl) release(itemID uuid.UUID) {
	c.mu.Lock()
	delete(c.draining, itemID)
	c.mu.Unlock()
}
