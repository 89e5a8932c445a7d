package commands

import (
	"context"
	"time"

	"keypool/internal/domain/catalog"
	"keypool/internal/domain/stock"
	"keypool/internal/domain/ticket"
	"keypool/internal/domain/waitlist"
	"keypool/internal/infra/db"
	"keypool/internal/infra/repository"

	"github.com/google/uuid"
)

// Ports consumed by the command layer. Repositories run against the
// transaction handed out by the unit of work; collaborators (catalog,
// membership, notifier) are transaction-free.

type TicketRepository interface {
	Create(ctx context.Context, tx db.DBTX, t *ticket.Ticket) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*ticket.Ticket, error)
	FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*ticket.Ticket, error)
	Claim(ctx context.Context, tx db.DBTX, id, supplierID uuid.UUID, now time.Time) error
	Complete(ctx context.Context, tx db.DBTX, id uuid.UUID, now time.Time) error
	Close(ctx context.Context, tx db.DBTX, id uuid.UUID, status ticket.Status, now time.Time) error
	SetEvidenceVerified(ctx context.Context, tx db.DBTX, id uuid.UUID, now time.Time) error
	SetNoAutoClose(ctx context.Context, tx db.DBTX, id uuid.UUID, protected bool, now time.Time) error
	LastCompletedAt(ctx context.Context, tx db.DBTX, requesterID, itemID uuid.UUID) (*time.Time, error)
	CancelStale(ctx context.Context, tx db.DBTX, cutoff, now time.Time) ([]repository.StaleClosed, error)
}

type StockRepository interface {
	EnsureSupplier(ctx context.Context, tx db.DBTX, supplierID uuid.UUID, now time.Time) error
	SetSupplierAway(ctx context.Context, tx db.DBTX, supplierID uuid.UUID, away bool, now time.Time) error
	Add(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID, qty int, method stock.FulfillMethod, credentialRef *string, now time.Time) error
	RemoveClamped(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID, qty int, now time.Time) (int, error)
	Credit(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID, qty int, now time.Time) error
	Aggregate(ctx context.Context, tx db.DBTX, itemID uuid.UUID) (int, error)
	SupplierQuantity(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID) (int, error)
}

type RestockRepository interface {
	Enqueue(ctx context.Context, tx db.DBTX, supplierID, itemID uuid.UUID, scheduledAt, now time.Time) error
	ConsumeDue(ctx context.Context, tx db.DBTX, now time.Time) ([]repository.CreditGroup, error)
	DeleteOlderThan(ctx context.Context, tx db.DBTX, cutoff time.Time) (int64, error)
}

type WaitlistRepository interface {
	Join(ctx context.Context, tx db.DBTX, itemID, userID uuid.UUID, now time.Time) (bool, error)
	Leave(ctx context.Context, tx db.DBTX, itemID, userID uuid.UUID) (int64, error)
	LeaveAll(ctx context.Context, tx db.DBTX, userID uuid.UUID) (int64, error)
	ListByItem(ctx context.Context, tx db.DBTX, itemID uuid.UUID) ([]waitlist.Entry, error)
	ClearItem(ctx context.Context, tx db.DBTX, itemID uuid.UUID) (int64, error)
}

type AuditRepository interface {
	Insert(ctx context.Context, tx db.DBTX, ev repository.AuditEvent) error
}

type PanelRepository interface {
	Get(ctx context.Context, tx db.DBTX) (*repository.PanelState, error)
	Replace(ctx context.Context, tx db.DBTX, s repository.PanelState) error
	Clear(ctx context.Context, tx db.DBTX) error
}

// Catalog is the read-only item lookup, fronted by the snapshot cache.
type Catalog interface {
	ItemByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error)
}

// Membership reports priority tiers; users it does not know get tier 0.
type Membership interface {
	TiersOf(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// Notifier delivers one best-effort message. Errors are logged by callers
// and never escalate.
type Notifier interface {
	Send(ctx context.Context, userID uuid.UUID, message string) error
}
