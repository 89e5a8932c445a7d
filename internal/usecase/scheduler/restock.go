package scheduler

import (
	"context"
	"log/slog"

	"keypool/internal/infra/db"
	"keypool/internal/infra/repository"
	"keypool/internal/pkg/clock"
	"keypool/internal/pkg/config"
	"keypool/internal/usecase/commands"
	"keypool/internal/usecase/shared"

	"github.com/google/uuid"
)

// Drainer is the post-restock waitlist hook. Implemented by the waitlist
// command service.
type Drainer interface {
	Drain(ctx context.Context, itemID uuid.UUID) (int, error)
}

// RestockUseCase applies every due deferred credit in a single
// transaction per tick. Re-running a tick is harmless: the due rows are
// consumed by the same statement that reports them, so a second tick
// simply finds nothing.
type RestockUseCase struct {
	uow     shared.UnitOfWork
	restock commands.RestockRepository
	stock   commands.StockRepository
	audit   commands.AuditRepository
	drainer Drainer
	clock   clock.Clock
	cfg     config.SchedulerConfig
}

func NewRestockUseCase(
	uow shared.UnitOfWork,
	restockRepo commands.RestockRepository,
	stockRepo commands.StockRepository,
	auditRepo commands.AuditRepository,
	drainer Drainer,
	clk clock.Clock,
	cfg config.SchedulerConfig,
) *RestockUseCase {
	return &RestockUseCase{
		uow:     uow,
		restock: restockRepo,
		stock:   stockRepo,
		audit:   auditRepo,
		drainer: drainer,
		clock:   clk,
		cfg:     cfg,
	}
}

// Tick consumes all due restock queue entries and credits the grouped
// quantities back to their supplier stock entries. Returns the credit
// groups applied this tick.
func (u *RestockUseCase) Tick(ctx context.Context) ([]repository.CreditGroup, error) {
	now := u.clock.Now()

	var groups []repository.CreditGroup
	err := u.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		groups, err = u.restock.ConsumeDue(ctx, tx, now)
		if err != nil {
			return err
		}
		for _, g := range groups {
			if err := u.stock.Credit(ctx, tx, g.SupplierID, g.ItemID, g.Quantity, now); err != nil {
				return err
			}
			ev := repository.AuditEvent{
				Kind:      commands.AuditRestockCredited,
				SubjectID: &g.ItemID,
				Detail: map[string]any{
					"supplier_id": g.SupplierID.String(),
					"quantity":    g.Quantity,
				},
				CreatedAt: now,
			}
			if err := u.audit.Insert(ctx, tx, ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// New stock arrived; wake the waitlists outside the transaction.
	// Drain failures never fail the tick.
	for _, itemID := range distinctItems(groups) {
		if _, err := u.drainer.Drain(ctx, itemID); err != nil {
			slog.Error("waitlist drain after restock failed",
				"item_id", itemID.String(), "error", err.Error())
		}
	}
	return groups, nil
}

// Cleanup drops restock queue rows older than the retention horizon.
// Anything that old was either consumed long ago or orphaned.
func (u *RestockUseCase) Cleanup(ctx context.Context) (int64, error) {
	cutoff := u.clock.Now().Add(-u.cfg.RestockRetention)

	var deleted int64
	err := u.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		deleted, err = u.restock.DeleteOlderThan(ctx, tx, cutoff)
		return err
	})
	return deleted, err
}

func distinctItems(groups []repository.CreditGroup) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(groups))
	items := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		if !seen[g.ItemID] {
			seen[g.ItemID] = true
			items = append(items, g.ItemID)
		}
	}
	return items
}
