package repository

import (
	"context"
	"errors"
	"time"

	"keypool/internal/infra"
	"keypool/internal/infra/db"

	"github.com/jackc/pgx/v5"
)

const (
	PanelOpen   = "open"
	PanelPaused = "paused"
)

// PanelState is the single public panel record. An explicit singleton row
// (id pinned to 1) under the same transactional discipline as everything
// else, never implicit process state.
type PanelState struct {
	Status    string
	Message   string
	ReopenAt  *time.Time
	UpdatedAt time.Time
}

type PanelRepository struct{}

func NewPanelRepository() *PanelRepository {
	return &PanelRepository{}
}

func (r *PanelRepository) Get(ctx context.Context, tx db.DBTX) (*PanelState, error) {
	var s PanelState
	err := tx.QueryRow(ctx, `
		SELECT status, message, reopen_at, updated_at FROM panel WHERE id = 1`).
		Scan(&s.Status, &s.Message, &s.ReopenAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("panel not configured", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read panel", err)
	}
	return &s, nil
}

// Replace creates or overwrites the singleton record.
func (r *PanelRepository) Replace(ctx context.Context, tx db.DBTX, s PanelState) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO panel (id, status, message, reopen_at, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET status = EXCLUDED.status, message = EXCLUDED.message,
		              reopen_at = EXCLUDED.reopen_at, updated_at = EXCLUDED.updated_at`,
		s.Status, s.Message, s.ReopenAt, s.UpdatedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to replace panel", err)
	}
	return nil
}

func (r *PanelRepository) Clear(ctx context.Context, tx db.DBTX) error {
	_, err := tx.Exec(ctx, `DELETE FROM panel WHERE id = 1`)
	if err != nil {
		return infra.WrapRepoErr("failed to clear panel", err)
	}
	return nil
}
