package readstore

import (
	"context"
	"errors"
	"time"

	"keypool/internal/infra"
	"keypool/internal/infra/db"
	"keypool/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
)

// PanelReadStore assembles the public availability overview in one
// round trip per concern. Reads run on the pool without a transaction;
// the overview tolerates slight skew between its sub-queries.
type PanelReadStore struct {
	pool db.DBTX
}

func NewPanelReadStore(pool db.DBTX) *PanelReadStore {
	return &PanelReadStore{pool: pool}
}

func (r *PanelReadStore) FindState(ctx context.Context) (*queries.PanelStateView, error) {
	var v queries.PanelStateView
	err := r.pool.QueryRow(ctx, `
		SELECT status, message, reopen_at, updated_at FROM panel WHERE id = 1`).
		Scan(&v.Status, &v.Message, &v.ReopenAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("panel not configured", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read panel state", err)
	}
	return &v, nil
}

// FindItemAvailability reports, per catalog item, the aggregate stock
// across non-away suppliers, how many suppliers hold stock, the waitlist
// depth, and the pending restock horizon.
func (r *PanelReadStore) FindItemAvailability(ctx context.Context) ([]*queries.ItemAvailabilityView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id,
		       i.name,
		       i.high_demand,
		       COALESCE(SUM(se.quantity) FILTER (WHERE NOT s.away), 0)        AS total_stock,
		       COUNT(*) FILTER (WHERE se.quantity > 0 AND NOT s.away)          AS suppliers,
		       (SELECT COUNT(*) FROM waitlist_entries w WHERE w.item_id = i.id) AS waiting,
		       (SELECT COUNT(*) FROM restock_queue q WHERE q.item_id = i.id)    AS pending_restocks,
		       (SELECT MIN(q.scheduled_at) FROM restock_queue q WHERE q.item_id = i.id) AS next_restock_at
		FROM items i
		LEFT JOIN stock_entries se ON se.item_id = i.id
		LEFT JOIN suppliers s ON s.id = se.supplier_id
		GROUP BY i.id, i.name, i.high_demand
		ORDER BY i.name`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query item availability", err)
	}
	defer rows.Close()

	var views []*queries.ItemAvailabilityView
	for rows.Next() {
		var v queries.ItemAvailabilityView
		var nextRestock *time.Time
		if err := rows.Scan(&v.ItemID, &v.Name, &v.HighDemand,
			&v.TotalStock, &v.Suppliers, &v.Waiting, &v.PendingRestocks, &nextRestock); err != nil {
			return nil, infra.WrapRepoErr("failed to scan item availability", err)
		}
		v.NextRestockAt = nextRestock
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate item availability", err)
	}
	return views, nil
}
