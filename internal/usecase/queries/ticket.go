package queries

import (
	"context"

	"keypool/internal/domain/identity"
	"keypool/internal/pkg/errs"

	"github.com/google/uuid"
)

const defaultListLimit = 50

type TicketQueries interface {
	// GetByID returns the ticket if the actor is allowed to see it:
	// managers see everything, requesters their own tickets, suppliers
	// the tickets assigned to them.
	GetByID(ctx context.Context, actorID uuid.UUID, role identity.Role, id uuid.UUID) (*TicketView, error)
	ListMine(ctx context.Context, actorID uuid.UUID, role identity.Role, limit int) ([]*TicketView, error)
	ListOpen(ctx context.Context, limit int) ([]*TicketView, error)
}

type TicketViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TicketView, error)
	FindByRequester(ctx context.Context, requesterID uuid.UUID, limit int) ([]*TicketView, error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, limit int) ([]*TicketView, error)
	FindOpen(ctx context.Context, limit int) ([]*TicketView, error)
}

type ticketQueriesImpl struct {
	repo TicketViewRepo
}

func NewTicketQueries(repo TicketViewRepo) TicketQueries {
	return &ticketQueriesImpl{repo: repo}
}

func (q *ticketQueriesImpl) GetByID(ctx context.Context, actorID uuid.UUID, role identity.Role, id uuid.UUID) (*TicketView, error) {
	v, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(v, actorID, role) {
		return nil, errs.Mark(errs.New("ticket not visible to actor"), errs.ErrNotFound)
	}
	return v, nil
}

func (q *ticketQueriesImpl) ListMine(ctx context.Context, actorID uuid.UUID, role identity.Role, limit int) ([]*TicketView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if role == identity.RoleSupplier {
		return q.repo.FindBySupplier(ctx, actorID, limit)
	}
	return q.repo.FindByRequester(ctx, actorID, limit)
}

func (q *ticketQueriesImpl) ListOpen(ctx context.Context, limit int) ([]*TicketView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return q.repo.FindOpen(ctx, limit)
}

func visibleTo(v *TicketView, actorID uuid.UUID, role identity.Role) bool {
	switch role {
	case identity.RoleManager:
		return true
	case identity.RoleSupplier:
		return v.SupplierID != nil && *v.SupplierID == actorID
	default:
		return v.RequesterID == actorID
	}
}
