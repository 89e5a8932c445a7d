package repository

import (
	"context"
	"time"

	"keypool/internal/infra"
	"keypool/internal/infra/db"

	"github.com/google/uuid"
)

// CreditGroup is the summed pending quantity for one (supplier, item) pair
// consumed by a tick.
type CreditGroup struct {
	SupplierID uuid.UUID
	ItemID     uuid.UUID
	Quantity   int
}

// RestockRepository owns restock_queue rows: deferred stock credits that
// become due when the cooldown elapses.
type RestockRepository struct{}

func NewRestockRepository() *RestockRepository {
	return &RestockRepository{}
}

func (r *RestockRepository) Enqueue(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID, scheduledAt, now time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO restock_queue (id, supplier_id, item_id, scheduled_at, pending_quantity, created_at)
		VALUES ($1, $2, $3, $4, 1, $5)`,
		uuid.New(), supplierID, itemID, scheduledAt, now)
	if err != nil {
		return infra.WrapRepoErr("failed to enqueue restock", err)
	}
	return nil
}

// ConsumeDue deletes every entry scheduled at or before now and returns
// their pending quantities grouped by (supplier, item). Delete and read are
// one statement, so inside the tick transaction a crash cannot leave a
// credited entry behind to be credited again.
func (r *RestockRepository) ConsumeDue(ctx context.Context, tx db.DBTX, now time.Time) ([]CreditGroup, error) {
	rows, err := tx.Query(ctx, `
		WITH consumed AS (
			DELETE FROM restock_queue
			WHERE scheduled_at <= $1
			RETURNING supplier_id, item_id, pending_quantity
		)
		SELECT supplier_id, item_id, SUM(pending_quantity)::int
		FROM consumed
		GROUP BY supplier_id, item_id`,
		now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to consume due restocks", err)
	}
	defer rows.Close()

	var groups []CreditGroup
	for rows.Next() {
		var g CreditGroup
		if err := rows.Scan(&g.SupplierID, &g.ItemID, &g.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan restock group", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate restock groups", err)
	}
	return groups, nil
}

// DeleteOlderThan discards rows whose schedule is far past the retention
// horizon. Housekeeping only; a healthy tick loop leaves nothing for it.
func (r *RestockRepository) DeleteOlderThan(ctx context.Context, tx db.DBTX, cutoff time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM restock_queue WHERE scheduled_at < $1`, cutoff)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to clean up restock queue", err)
	}
	return tag.RowsAffected(), nil
}

// PendingByItem reports queued restocks per item for the panel view.
type PendingRestock struct {
	ItemID        uuid.UUID
	PendingCount  int
	NextRestockAt time.Time
}

func (r *RestockRepository) PendingByItem(ctx context.Context, tx db.DBTX) ([]PendingRestock, error) {
	rows, err := tx.Query(ctx, `
		SELECT item_id, SUM(pending_quantity)::int, MIN(scheduled_at)
		FROM restock_queue
		GROUP BY item_id`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read pending restocks", err)
	}
	defer rows.Close()

	var pending []PendingRestock
	for rows.Next() {
		var p PendingRestock
		if err := rows.Scan(&p.ItemID, &p.PendingCount, &p.NextRestockAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan pending restock", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate pending restocks", err)
	}
	return pending, nil
}
