package queries

import (
	"context"

	"keypool/internal/infra"
	"keypool/internal/pkg/errs"
)

type PanelQueries interface {
	// Overview is the public availability snapshot: panel state plus
	// per-item stock, waitlist depth and restock horizon.
	Overview(ctx context.Context) (*PanelView, error)
}

type PanelViewRepo interface {
	FindState(ctx context.Context) (*PanelStateView, error)
	FindItemAvailability(ctx context.Context) ([]*ItemAvailabilityView, error)
}

type panelQueriesImpl struct {
	repo PanelViewRepo
}

func NewPanelQueries(repo PanelViewRepo) PanelQueries {
	return &panelQueriesImpl{repo: repo}
}

func (q *panelQueriesImpl) Overview(ctx context.Context) (*PanelView, error) {
	state, err := q.repo.FindState(ctx)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrNotFound)
		}
		return nil, err
	}

	items, err := q.repo.FindItemAvailability(ctx)
	if err != nil {
		return nil, err
	}
	return &PanelView{State: *state, Items: items}, nil
}
