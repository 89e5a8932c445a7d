//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"keypool/internal/domain/catalog"
	"keypool/internal/domain/stock"
	"keypool/internal/pkg/clock"
	"keypool/internal/pkg/config"
	"keypool/internal/pkg/cryptobox"
	"keypool/internal/pkg/errs"
	"keypool/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockFixture struct {
	commands commands.StockCommands
	stock    *fakeStockRepo
	waitlist *fakeWaitlistRepo
	notifier *fakeNotifier
	audit    *fakeAuditRepo
}

func newStockFixture(t *testing.T, box *cryptobox.Box, items ...catalog.Item) *stockFixture {
	t.Helper()

	f := &stockFixture{
		stock:    newFakeStockRepo(),
		waitlist: &fakeWaitlistRepo{},
		notifier: &fakeNotifier{},
		audit:    &fakeAuditRepo{},
	}
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	catalogPort := newFakeCatalog(items...)
	waitlistCommands := commands.NewWaitlistCommands(
		newUoW(), f.waitlist, f.stock, &fakeMembership{}, f.notifier,
		catalogPort, f.audit, clk, config.NewTestConfig(),
	)
	f.commands = commands.NewStockCommands(
		newUoW(), f.stock, catalogPort, waitlistCommands, f.audit, box, clk,
	)
	return f
}

func TestStockCommands_Add(t *testing.T) {
	itemID := uuid.New()
	supplierID := uuid.New()
	item := catalog.Item{ID: itemID, Name: "slot"}

	t.Run("accumulates quantity", func(t *testing.T) {
		f := newStockFixture(t, nil, item)

		require.NoError(t, f.commands.Add(context.Background(), supplierID, itemID, 3, stock.FulfillManual, nil))
		require.NoError(t, f.commands.Add(context.Background(), supplierID, itemID, 2, stock.FulfillManual, nil))

		qty, _ := f.stock.SupplierQuantity(context.Background(), nil, supplierID, itemID)
		assert.Equal(t, 5, qty)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		f := newStockFixture(t, nil, item)
		err := f.commands.Add(context.Background(), supplierID, itemID, 0, stock.FulfillManual, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidQuantity)
	})

	t.Run("rejects credential with manual fulfillment", func(t *testing.T) {
		f := newStockFixture(t, nil, item)
		cred := "license-ABC"
		err := f.commands.Add(context.Background(), supplierID, itemID, 1, stock.FulfillManual, &cred)
		assert.ErrorIs(t, err, stock.ErrCredentialForbidden)
	})

	t.Run("rejects credential without a configured key", func(t *testing.T) {
		f := newStockFixture(t, nil, item)
		cred := "license-ABC"
		err := f.commands.Add(context.Background(), supplierID, itemID, 1, stock.FulfillAutomated, &cred)
		assert.Error(t, err)
	})

	t.Run("wakes waiters after a restock", func(t *testing.T) {
		f := newStockFixture(t, nil, item)
		waiterID := uuid.New()
		f.waitlist.entries = append(f.waitlist.entries, waitlistEntry(itemID, waiterID))

		require.NoError(t, f.commands.Add(context.Background(), supplierID, itemID, 1, stock.FulfillManual, nil))
		assert.Equal(t, []uuid.UUID{waiterID}, f.notifier.recipients())
		assert.Empty(t, f.waitlist.entries)
	})
}

func TestStockCommands_Remove(t *testing.T) {
	itemID := uuid.New()
	supplierID := uuid.New()
	item := catalog.Item{ID: itemID, Name: "slot"}

	t.Run("removes what was asked for", func(t *testing.T) {
		f := newStockFixture(t, nil, item)
		f.stock.set(supplierID, itemID, 5)

		removed, err := f.commands.Remove(context.Background(), supplierID, itemID, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, removed)
	})

	t.Run("clamps and reports when asking for too much", func(t *testing.T) {
		f := newStockFixture(t, nil, item)
		f.stock.set(supplierID, itemID, 2)

		removed, err := f.commands.Remove(context.Background(), supplierID, itemID, 5)
		assert.ErrorIs(t, err, errs.ErrInsufficientStock)
		assert.Equal(t, 2, removed)

		qty, _ := f.stock.SupplierQuantity(context.Background(), nil, supplierID, itemID)
		assert.Zero(t, qty)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		f := newStockFixture(t, nil, item)
		_, err := f.commands.Remove(context.Background(), supplierID, itemID, -1)
		assert.ErrorIs(t, err, errs.ErrInvalidQuantity)
	})
}
