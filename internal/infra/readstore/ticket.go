package readstore

import (
	"context"
	"errors"

	"keypool/internal/infra"
	"keypool/internal/infra/db"
	"keypool/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ticketColumns = `
	t.id, t.item_id, i.name, t.requester_id, t.supplier_id, t.status,
	t.evidence_verified, t.no_auto_close, t.created_at, t.updated_at, t.completed_at`

type TicketReadStore struct {
	pool db.DBTX
}

func NewTicketReadStore(pool db.DBTX) *TicketReadStore {
	return &TicketReadStore{pool: pool}
}

func (r *TicketReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.TicketView, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets t JOIN items i ON i.id = t.item_id
		WHERE t.id = $1`, id)

	v, err := scanTicketView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("ticket not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find ticket view", err)
	}
	return v, nil
}

func (r *TicketReadStore) FindByRequester(ctx context.Context, requesterID uuid.UUID, limit int) ([]*queries.TicketView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets t JOIN items i ON i.id = t.item_id
		WHERE t.requester_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2`, requesterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list tickets by requester", err)
	}
	return collectTicketViews(rows)
}

func (r *TicketReadStore) FindBySupplier(ctx context.Context, supplierID uuid.UUID, limit int) ([]*queries.TicketView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets t JOIN items i ON i.id = t.item_id
		WHERE t.supplier_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2`, supplierID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list tickets by supplier", err)
	}
	return collectTicketViews(rows)
}

// FindOpen lists pending and claimed tickets, oldest first, for the
// supplier work queue.
func (r *TicketReadStore) FindOpen(ctx context.Context, limit int) ([]*queries.TicketView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets t JOIN items i ON i.id = t.item_id
		WHERE t.status IN ('pending', 'claimed')
		ORDER BY t.created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list open tickets", err)
	}
	return collectTicketViews(rows)
}

func collectTicketViews(rows pgx.Rows) ([]*queries.TicketView, error) {
	defer rows.Close()

	var views []*queries.TicketView
	for rows.Next() {
		v, err := scanTicketView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan ticket view", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate ticket views", err)
	}
	return views, nil
}

func scanTicketView(row pgx.Row) (*queries.TicketView, error) {
	var v queries.TicketView
	err := row.Scan(&v.ID, &v.ItemID, &v.ItemName, &v.RequesterID, &v.SupplierID,
		&v.Status, &v.EvidenceVerified, &v.NoAutoClose, &v.CreatedAt, &v.UpdatedAt, &v.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
