package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"keypool/internal/infra/db"
	"keypool/internal/infra/repository"
	"keypool/internal/pkg/clock"
	"keypool/internal/usecase/shared"
)

type PanelCommands interface {
	// Publish creates or replaces the single public panel record.
	Publish(ctx context.Context, message string) error

	// Pause takes the panel offline. A non-nil reopenAfter arms the
	// auto-reopen timer; the previous timer, if any, is always cancelled
	// first so two reopen effects can never race.
	Pause(ctx context.Context, message string, reopenAfter *time.Duration) error

	// Reopen puts the panel back online and disarms any pending
	// auto-reopen.
	Reopen(ctx context.Context) error

	Clear(ctx context.Context) error
}

type panelCommandsImpl struct {
	uow   shared.UnitOfWork
	panel PanelRepository
	audit auditEmitter
	clock clock.Clock

	// The one named auto-reopen timer handle.
	mu    sync.Mutex
	timer *time.Timer
}

func NewPanelCommands(
	uow shared.UnitOfWork,
	panelRepo PanelRepository,
	auditRepo AuditRepository,
	clk clock.Clock,
) PanelCommands {
	return &panelCommandsImpl{
		uow:   uow,
		panel: panelRepo,
		audit: auditEmitter{repo: auditRepo, clock: clk},
		clock: clk,
	}
}

func (c *panelCommandsImpl) Publish(ctx context.Context, message string) error {
	c.disarm()
	return c.replace(ctx, repository.PanelOpen, message, nil, AuditPanelReplaced)
}

func (c *panelCommandsImpl) Pause(ctx context.Context, message string, reopenAfter *time.Duration) error {
	var reopenAt *time.Time
	if reopenAfter != nil {
		at := c.clock.Now().Add(*reopenAfter)
		reopenAt = &at
	}

	if err := c.replace(ctx, repository.PanelPaused, message, reopenAt, AuditPanelPaused); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if reopenAfter != nil {
		c.timer = time.AfterFunc(*reopenAfter, func() {
			if err := c.Reopen(context.Background()); err != nil {
				slog.Error("scheduled panel reopen failed", "error", err.Error())
			}
		})
	}
	return nil
}

func (c *panelCommandsImpl) Reopen(ctx context.Context) error {
	c.disarm()
	return c.replace(ctx, repository.PanelOpen, "", nil, AuditPanelReopened)
}

func (c *panelCommandsImpl) Clear(ctx context.Context) error {
	c.disarm()
	return c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := c.panel.Clear(ctx, tx); err != nil {
			return err
		}
		return c.audit.emit(ctx, tx, AuditPanelCleared, nil, nil, nil)
	})
}

func (c *panelCommandsImpl) replace(ctx context.Context, status, message string, reopenAt *time.Time, auditKind string) error {
	now := c.clock.Now()
	return c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		err := c.panel.Replace(ctx, tx, repository.PanelState{
			Status:    status,
			Message:   message,
			ReopenAt:  reopenAt,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		return c.audit.emit(ctx, tx, auditKind, nil, nil, map[string]any{
			"status": status,
		})
	})
}

// disarm cancels the pending auto-reopen, if armed. Manual transitions
// always supersede the scheduled one.
func (c *panelCommandsImpl) disarm() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
}
