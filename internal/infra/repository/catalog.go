package repository

import (
	"context"
	"errors"

	"keypool/internal/domain/catalog"
	"keypool/internal/infra"
	"keypool/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CatalogRepository is the read-only item catalog source. The snapshot
// cache in internal/cache fronts it; nothing here mutates items.
type CatalogRepository struct{}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

func (r *CatalogRepository) ItemByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	err := tx.QueryRow(ctx, `
		SELECT id, name, high_demand FROM items WHERE id = $1`, id).
		Scan(&item.ID, &item.Name, &item.HighDemand)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("item not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find item", err)
	}
	return &item, nil
}

func (r *CatalogRepository) ListItems(ctx context.Context, tx db.DBTX) ([]catalog.Item, error) {
	rows, err := tx.Query(ctx, `SELECT id, name, high_demand FROM items ORDER BY name`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list items", err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var item catalog.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.HighDemand); err != nil {
			return nil, infra.WrapRepoErr("failed to scan item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate items", err)
	}
	return items, nil
}
