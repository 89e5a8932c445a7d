//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"keypool/internal/domain/catalog"
	"keypool/internal/domain/identity"
	"keypool/internal/domain/ticket"
	"keypool/internal/infra/repository"
	"keypool/internal/pkg/clock"
	"keypool/internal/pkg/config"
	"keypool/internal/pkg/errs"
	"keypool/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticketFixture struct {
	commands commands.TicketCommands
	tickets  *fakeTicketRepo
	stock    *fakeStockRepo
	restocks *fakeRestockRepo
	audit    *fakeAuditRepo
	notifier *fakeNotifier
	clock    *clock.MockClock
	cfg      config.Config
}

func newTicketFixture(t *testing.T, items ...catalog.Item) *ticketFixture {
	t.Helper()

	f := &ticketFixture{
		tickets:  newFakeTicketRepo(),
		stock:    newFakeStockRepo(),
		restocks: &fakeRestockRepo{},
		audit:    &fakeAuditRepo{},
		notifier: &fakeNotifier{},
		clock:    clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		cfg:      config.NewTestConfig(),
	}
	f.commands = commands.NewTicketCommands(
		newUoW(), f.tickets, f.stock, f.restocks,
		newFakeCatalog(items...), f.notifier, f.audit, f.clock, f.cfg,
	)
	return f
}

func TestTicketCommands_Create(t *testing.T) {
	itemID := uuid.New()
	requesterID := uuid.New()
	supplierID := uuid.New()
	item := catalog.Item{ID: itemID, Name: "slot-basic"}

	t.Run("opens a pending ticket when stock is pooled", func(t *testing.T) {
		f := newTicketFixture(t, item)
		f.stock.set(supplierID, itemID, 3)

		created, err := f.commands.Create(context.Background(), itemID, requesterID)
		require.NoError(t, err)
		assert.Equal(t, ticket.StatusPending, created.Status())
		assert.Equal(t, []string{commands.AuditTicketCreated}, f.audit.kinds())
	})

	t.Run("rejects when no stock is pooled", func(t *testing.T) {
		f := newTicketFixture(t, item)

		_, err := f.commands.Create(context.Background(), itemID, requesterID)
		assert.ErrorIs(t, err, errs.ErrNoStockAvailable)
	})

	t.Run("rejects an unknown item", func(t *testing.T) {
		f := newTicketFixture(t, item)
		f.stock.set(supplierID, itemID, 3)

		_, err := f.commands.Create(context.Background(), uuid.New(), requesterID)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestTicketCommands_Create_Cooldown(t *testing.T) {
	itemID := uuid.New()
	requesterID := uuid.New()
	supplierID := uuid.New()

	setup := func(t *testing.T, highDemand bool) *ticketFixture {
		f := newTicketFixture(t, catalog.Item{ID: itemID, Name: "slot", HighDemand: highDemand})
		f.stock.set(supplierID, itemID, 5)
		last := f.clock.Now()
		f.tickets.lastCompleted[cooldownKey(requesterID, itemID)] = &last
		return f
	}

	t.Run("blocks inside the standard window", func(t *testing.T) {
		f := setup(t, false)
		f.clock.Add(23 * time.Hour)

		_, err := f.commands.Create(context.Background(), itemID, requesterID)
		assert.ErrorIs(t, err, errs.ErrOnCooldown)
	})

	t.Run("allows once the window has elapsed", func(t *testing.T) {
		f := setup(t, false)
		f.clock.Add(24 * time.Hour)

		_, err := f.commands.Create(context.Background(), itemID, requesterID)
		assert.NoError(t, err)
	})

	t.Run("high demand items use the longer window", func(t *testing.T) {
		f := setup(t, true)
		f.clock.Add(36 * time.Hour)

		_, err := f.commands.Create(context.Background(), itemID, requesterID)
		assert.ErrorIs(t, err, errs.ErrOnCooldown)

		f.clock.Add(12 * time.Hour)
		_, err = f.commands.Create(context.Background(), itemID, requesterID)
		assert.NoError(t, err)
	})
}

func TestTicketCommands_Claim(t *testing.T) {
	itemID := uuid.New()
	requesterID := uuid.New()
	supplierID := uuid.New()
	item := catalog.Item{ID: itemID, Name: "slot"}

	openTicket := func(t *testing.T, f *ticketFixture) *ticket.Ticket {
		t.Helper()
		created, err := f.commands.Create(context.Background(), itemID, requesterID)
		require.NoError(t, err)
		return created
	}

	t.Run("assigns the supplier once", func(t *testing.T) {
		f := newTicketFixture(t, item)
		f.stock.set(supplierID, itemID, 2)
		tk := openTicket(t, f)

		require.NoError(t, f.commands.Claim(context.Background(), tk.ID(), supplierID))
		assert.Equal(t, ticket.StatusClaimed, tk.Status())
		assert.Equal(t, supplierID, *tk.SupplierID())
	})

	t.Run("second claim loses", func(t *testing.T) {
		f := newTicketFixture(t, item)
		rival := uuid.New()
		f.stock.set(supplierID, itemID, 2)
		f.stock.set(rival, itemID, 1)
		tk := openTicket(t, f)

		require.NoError(t, f.commands.Claim(context.Background(), tk.ID(), supplierID))
		err := f.commands.Claim(context.Background(), tk.ID(), rival)
		assert.ErrorIs(t, err, errs.ErrAlreadyClaimed)
		assert.Equal(t, supplierID, *tk.SupplierID())
	})

	t.Run("supplier without stock is not eligible", func(t *testing.T) {
		f := newTicketFixture(t, item)
		f.stock.set(supplierID, itemID, 1)
		tk := openTicket(t, f)

		err := f.commands.Claim(context.Background(), tk.ID(), uuid.New())
		assert.ErrorIs(t, err, errs.ErrNotEligible)
	})
}

func TestTicketCommands_Complete(t *testing.T) {
	itemID := uuid.New()
	requesterID := uuid.New()
	supplierID := uuid.New()
	managerID := uuid.New()
	item := catalog.Item{ID: itemID, Name: "slot"}

	claimed := func(t *testing.T, f *ticketFixture) *ticket.Ticket {
		t.Helper()
		created, err := f.commands.Create(context.Background(), itemID, requesterID)
		require.NoError(t, err)
		require.NoError(t, f.commands.Claim(context.Background(), created.ID(), supplierID))
		return created
	}

	t.Run("debits stock and schedules the restock", func(t *testing.T) {
		f := newTicketFixture(t, item)
		f.stock.set(supplierID, itemID, 2)
		tk := claimed(t, f)
		require.NoError(t, f.commands.MarkEvidenceVerified(context.Background(), tk.ID(), managerID))

		require.NoError(t, f.commands.Complete(context.Background(), tk.ID(), supplierID, identity.RoleSupplier, "receipt-1"))

		assert.Equal(t, ticket.StatusCompleted, tk.Status())
		qty, _ := f.stock.SupplierQuantity(context.Background(), nil, supplierID, itemID)
		assert.Equal(t, 1, qty)

		require.Len(t, f.restocks.enqueued, 1)
		wantAt := f.clock.Now().Add(f.cfg.Cooldown.For(false))
		assert.Equal(t, wantAt, f.restocks.enqueued[0].ScheduledAt)

		assert.Equal(t, []uuid.UUID{requesterID}, f.notifier.recipients())
	})

	t.Run("requires verified evidence", func(t *testing.T) {
		f := newTicketFixture(t, item)
		f.stock.set(supplierID, itemID, 2)
		tk := claimed(t, f)

		err := f.commands.Complete(context.Background(), tk.ID(), supplierID, identity.RoleSupplier, "receipt-1")
		assert.ErrorIs(t, err, errs.ErrEvidenceNotVerified)
		assert.Empty(t, f.restocks.enqueued)
	})

	t.Run("rejects a pending ticket", func(t *testing.T) {
		f := newTicketFixture(t, item)
		f.stock.set(supplierID, itemID, 2)
		created, err := f.commands.Create(context.Background(), itemID, requesterID)
		require.NoError(t, err)

		err = f.commands.Complete(context.Background(), created.ID(), supplierID, identity.RoleSupplier, "receipt-1")
		assert.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("rejects a supplier who does not hold the claim", func(t *testing.T) {
		f := newTicketFixture(t, item)
		rival := uuid.New()
		f.stock.set(supplierID, itemID, 2)
		f.stock.set(rival, itemID, 2)
		tk := claimed(t, f)
		require.NoError(t, f.commands.MarkEvidenceVerified(context.Background(), tk.ID(), managerID))

		err := f.commands.Complete(context.Background(), tk.ID(), rival, identity.RoleSupplier, "receipt-1")
		assert.ErrorIs(t, err, errs.ErrNotEligible)
		assert.Equal(t, ticket.StatusClaimed, tk.Status())
		assert.Empty(t, f.restocks.enqueued)
	})

	t.Run("a manager may complete on the supplier's behalf", func(t *testing.T) {
		f := newTicketFixture(t, item)
		f.stock.set(supplierID, itemID, 2)
		tk := claimed(t, f)
		require.NoError(t, f.commands.MarkEvidenceVerified(context.Background(), tk.ID(), managerID))

		require.NoError(t, f.commands.Complete(context.Background(), tk.ID(), managerID, identity.RoleManager, "receipt-1"))
		assert.Equal(t, ticket.StatusCompleted, tk.Status())
	})

	t.Run("skips the restock when nothing was debited", func(t *testing.T) {
		f := newTicketFixture(t, item)
		f.stock.set(supplierID, itemID, 1)
		tk := claimed(t, f)
		require.NoError(t, f.commands.MarkEvidenceVerified(context.Background(), tk.ID(), managerID))

		// The pool emptied between claim and completion.
		f.stock.set(supplierID, itemID, 0)

		require.NoError(t, f.commands.Complete(context.Background(), tk.ID(), supplierID, identity.RoleSupplier, "receipt-1"))
		assert.Empty(t, f.restocks.enqueued)
	})
}

func TestTicketCommands_CloseOwnership(t *testing.T) {
	itemID := uuid.New()
	requesterID := uuid.New()
	supplierID := uuid.New()
	item := catalog.Item{ID: itemID, Name: "slot"}

	open := func(t *testing.T) (*ticketFixture, *ticket.Ticket) {
		t.Helper()
		f := newTicketFixture(t, item)
		f.stock.set(supplierID, itemID, 2)
		created, err := f.commands.Create(context.Background(), itemID, requesterID)
		require.NoError(t, err)
		return f, created
	}

	t.Run("the requester may cancel their own ticket", func(t *testing.T) {
		f, tk := open(t)

		require.NoError(t, f.commands.Cancel(context.Background(), tk.ID(), requesterID, identity.RoleRequester, ticket.ReasonRequester))
		assert.Equal(t, ticket.StatusCancelled, tk.Status())
	})

	t.Run("a stranger may not cancel it", func(t *testing.T) {
		f, tk := open(t)

		err := f.commands.Cancel(context.Background(), tk.ID(), uuid.New(), identity.RoleRequester, ticket.ReasonRequester)
		assert.ErrorIs(t, err, errs.ErrNotEligible)
		assert.Equal(t, ticket.StatusPending, tk.Status())
	})

	t.Run("a manager may cancel any ticket", func(t *testing.T) {
		f, tk := open(t)

		require.NoError(t, f.commands.Cancel(context.Background(), tk.ID(), uuid.New(), identity.RoleManager, ticket.ReasonManager))
		assert.Equal(t, ticket.StatusCancelled, tk.Status())
	})

	t.Run("only the claiming supplier may fail", func(t *testing.T) {
		f, tk := open(t)
		require.NoError(t, f.commands.Claim(context.Background(), tk.ID(), supplierID))

		err := f.commands.Fail(context.Background(), tk.ID(), requesterID, identity.RoleRequester, "requester gives up")
		assert.ErrorIs(t, err, errs.ErrNotEligible)

		require.NoError(t, f.commands.Fail(context.Background(), tk.ID(), supplierID, identity.RoleSupplier, "activation bounced"))
		assert.Equal(t, ticket.StatusFailed, tk.Status())
	})
}

func TestTicketCommands_SweepStale(t *testing.T) {
	f := newTicketFixture(t)

	a, b := uuid.New(), uuid.New()
	f.tickets.stale = []repository.StaleClosed{
		{ID: uuid.New(), RequesterID: a},
		{ID: uuid.New(), RequesterID: b},
	}

	closed, err := f.commands.SweepStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, closed)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, f.notifier.recipients())
	assert.Equal(t, []string{commands.AuditTicketCancelled, commands.AuditTicketCancelled}, f.audit.kinds())
}
