package commands

import (
	"context"
	"log/slog"

	"keypool/internal/domain/stock"
	"keypool/internal/infra"
	"keypool/internal/infra/db"
	"keypool/internal/pkg/clock"
	"keypool/internal/pkg/cryptobox"
	"keypool/internal/pkg/errs"
	"keypool/internal/usecase/shared"

	"github.com/google/uuid"
)

var errCredentialsDisabled = errs.New("automated fulfillment is not configured")

type StockCommands interface {
	// Add contributes qty units of an item. The supplier record is created
	// on first contribution. A plaintext credential, allowed only with
	// automated fulfillment, is sealed before it reaches storage.
	Add(ctx context.Context, supplierID, itemID uuid.UUID, qty int, method stock.FulfillMethod, credential *string) error

	// Remove takes up to qty units off the entry and returns the amount
	// actually removed. Asking for more than is held removes what is there
	// and reports ErrInsufficientStock alongside the clamped count.
	Remove(ctx context.Context, supplierID, itemID uuid.UUID, qty int) (int, error)

	SetAway(ctx context.Context, supplierID uuid.UUID, away bool) error
}

type stockCommandsImpl struct {
	uow      shared.UnitOfWork
	stock    StockRepository
	catalog  Catalog
	waitlist WaitlistCommands
	audit    auditEmitter
	box      *cryptobox.Box // nil when no credential key is configured
	clock    clock.Clock
}

func NewStockCommands(
	uow shared.UnitOfWork,
	stockRepo StockRepository,
	catalogPort Catalog,
	waitlistCommands WaitlistCommands,
	auditRepo AuditRepository,
	box *cryptobox.Box,
	clk clock.Clock,
) StockCommands {
	return &stockCommandsImpl{
		uow:      uow,
		stock:    stockRepo,
		catalog:  catalogPort,
		waitlist: waitlistCommands,
		audit:    auditEmitter{repo: auditRepo, clock: clk},
		box:      box,
		clock:    clk,
	}
}

func (c *stockCommandsImpl) Add(ctx context.Context, supplierID, itemID uuid.UUID, qty int, method stock.FulfillMethod, credential *string) error {
	if qty <= 0 {
		return errs.Mark(errs.Newf("cannot add %d units", qty), errs.ErrInvalidQuantity)
	}
	if _, err := c.catalog.ItemByID(ctx, itemID); err != nil {
		return errs.Mark(err, errs.ErrNotFound)
	}

	var credentialRef *string
	if credential != nil {
		if method != stock.FulfillAutomated {
			return errs.Wrap(stock.ErrCredentialForbidden, "credential with manual fulfillment")
		}
		if c.box == nil {
			return errCredentialsDisabled
		}
		sealed, err := c.box.Seal(*credential)
		if err != nil {
			return errs.Wrap(err, "failed to seal credential")
		}
		credentialRef = &sealed
	}

	now := c.clock.Now()
	err := c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := c.stock.EnsureSupplier(ctx, tx, supplierID, now); err != nil {
			return err
		}
		if err := c.stock.Add(ctx, tx, supplierID, itemID, qty, method, credentialRef, now); err != nil {
			return err
		}
		return c.audit.emit(ctx, tx, AuditStockAdded, ref(supplierID), ref(itemID), map[string]any{
			"quantity": qty,
			"method":   string(method),
		})
	})
	if err != nil {
		return err
	}

	// A manual restock can end a drought: give waiters their shot. The
	// drain re-checks the aggregate itself and is serialized per item.
	if _, err := c.waitlist.Drain(ctx, itemID); err != nil {
		slog.Warn("post-add waitlist drain failed", "item_id", itemID, "error", err.Error())
	}
	return nil
}

func (c *stockCommandsImpl) Remove(ctx context.Context, supplierID, itemID uuid.UUID, qty int) (int, error) {
	if qty <= 0 {
		return 0, errs.Mark(errs.Newf("cannot remove %d units", qty), errs.ErrInvalidQuantity)
	}

	now := c.clock.Now()
	var removed int
	err := c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		removed, err = c.stock.RemoveClamped(ctx, tx, supplierID, itemID, qty, now)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrNotFound)
			}
			return err
		}
		return c.audit.emit(ctx, tx, AuditStockRemoved, ref(supplierID), ref(itemID), map[string]any{
			"requested": qty,
			"removed":   removed,
		})
	})
	if err != nil {
		return 0, err
	}

	if removed < qty {
		return removed, errs.Mark(
			errs.Newf("only %d of %d units were held", removed, qty),
			errs.ErrInsufficientStock)
	}
	return removed, nil
}

func (c *stockCommandsImpl) SetAway(ctx context.Context, supplierID uuid.UUID, away bool) error {
	now := c.clock.Now()
	return c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := c.stock.SetSupplierAway(ctx, tx, supplierID, away, now); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrNotFound)
			}
			return err
		}
		return nil
	})
}
