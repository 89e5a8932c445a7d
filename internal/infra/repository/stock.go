package repository

import (
	"context"
	"errors"
	"time"

	"keypool/internal/domain/stock"
	"keypool/internal/infra"
	"keypool/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StockRepository owns all stock_entries mutations. Every quantity change
// is a single guarded UPDATE, so two operations racing on the same
// (supplier, item) row serialize at the storage layer and the quantity can
// never go negative.
type StockRepository struct{}

func NewStockRepository() *StockRepository {
	return &StockRepository{}
}

// EnsureSupplier creates the supplier row on first stock contribution.
func (r *StockRepository) EnsureSupplier(ctx context.Context, tx db.DBTX, supplierID uuid.UUID, now time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO suppliers (id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (id) DO NOTHING`,
		supplierID, now)
	if err != nil {
		return infra.WrapRepoErr("failed to ensure supplier", err)
	}
	return nil
}

func (r *StockRepository) SetSupplierAway(ctx context.Context, tx db.DBTX, supplierID uuid.UUID, away bool, now time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE suppliers SET away = $2, updated_at = $3 WHERE id = $1`,
		supplierID, away, now)
	if err != nil {
		return infra.WrapRepoErr("failed to update supplier availability", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("supplier not found", nil, infra.KindNotFound)
	}
	return nil
}

// Add upserts the entry and increments its quantity. Fulfillment method and
// credential reference are set on first contribution only.
func (r *StockRepository) Add(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID, qty int, method stock.FulfillMethod, credentialRef *string, now time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_entries (supplier_id, item_id, quantity, fulfill_method, credential_ref, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (supplier_id, item_id)
		DO UPDATE SET quantity = stock_entries.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		supplierID, itemID, qty, string(method), credentialRef, now)
	if err != nil {
		return infra.WrapRepoErr("failed to add stock", err)
	}
	return nil
}

// RemoveClamped decrements by at most qty and returns the amount actually
// removed. The row is locked so the clamp reads and writes one snapshot.
func (r *StockRepository) RemoveClamped(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID, qty int, now time.Time) (int, error) {
	var removed int
	err := tx.QueryRow(ctx, `
		WITH cur AS (
			SELECT quantity FROM stock_entries
			WHERE supplier_id = $1 AND item_id = $2
			FOR UPDATE
		)
		UPDATE stock_entries e
		SET quantity = e.quantity - LEAST(cur.quantity, $3), updated_at = $4
		FROM cur
		WHERE e.supplier_id = $1 AND e.item_id = $2
		RETURNING LEAST(cur.quantity, $3)`,
		supplierID, itemID, qty, now).Scan(&removed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, infra.WrapRepoErr("stock entry not found", err, infra.KindNotFound)
		}
		return 0, infra.WrapRepoErr("failed to remove stock", err)
	}
	return removed, nil
}

// Credit unconditionally adds restocked units back onto the entry.
func (r *StockRepository) Credit(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID, qty int, now time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_entries (supplier_id, item_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (supplier_id, item_id)
		DO UPDATE SET quantity = stock_entries.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		supplierID, itemID, qty, now)
	if err != nil {
		return infra.WrapRepoErr("failed to credit stock", err)
	}
	return nil
}

// Aggregate sums quantities across all suppliers offering the item.
func (r *StockRepository) Aggregate(ctx context.Context, tx db.DBTX, itemID uuid.UUID) (int, error) {
	var total int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)::int FROM stock_entries WHERE item_id = $1`,
		itemID).Scan(&total)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to aggregate stock", err)
	}
	return total, nil
}

func (r *StockRepository) SupplierQuantity(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID) (int, error) {
	var qty int
	err := tx.QueryRow(ctx, `
		SELECT quantity FROM stock_entries WHERE supplier_id = $1 AND item_id = $2`,
		supplierID, itemID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, infra.WrapRepoErr("failed to read supplier quantity", err)
	}
	return qty, nil
}

func (r *StockRepository) FindEntry(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID) (*stock.Entry, error) {
	var (
		qty           int
		method        string
		credentialRef *string
		updatedAt     time.Time
	)
	err := tx.QueryRow(ctx, `
		SELECT quantity, fulfill_method, credential_ref, updated_at
		FROM stock_entries
		WHERE supplier_id = $1 AND item_id = $2`,
		supplierID, itemID).Scan(&qty, &method, &credentialRef, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("stock entry not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find stock entry", err)
	}

	m, err := stock.ParseFulfillMethod(method)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt fulfillment method", err)
	}
	return stock.Reconstruct(supplierID, itemID, qty, m, credentialRef, updatedAt), nil
}
