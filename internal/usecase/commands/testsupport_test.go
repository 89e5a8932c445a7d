//go:build unit

package commands_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"keypool/internal/domain/catalog"
	"keypool/internal/domain/stock"
	"keypool/internal/domain/ticket"
	"keypool/internal/domain/waitlist"
	"keypool/internal/infra"
	"keypool/internal/infra/db"
	"keypool/internal/infra/repository"
	"keypool/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	errNotFound   = errors.New("not found")
	errSendFailed = errors.New("send failed")
)

// fakeUoW runs the closure directly; the fakes below keep their state in
// memory, so there is no transaction to manage.
type fakeUoW struct{}

func (fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return fn(ctx, nil)
}

func newUoW() shared.UnitOfWork { return fakeUoW{} }

type fakeTicketRepo struct {
	tickets       map[uuid.UUID]*ticket.Ticket
	lastCompleted map[string]*time.Time
	stale         []repository.StaleClosed
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:       make(map[uuid.UUID]*ticket.Ticket),
		lastCompleted: make(map[string]*time.Time),
	}
}

func cooldownKey(requesterID, itemID uuid.UUID) string {
	return requesterID.String() + "/" + itemID.String()
}

func (r *fakeTicketRepo) Create(_ context.Context, _ db.DBTX, t *ticket.Ticket) error {
	r.tickets[t.ID()] = t
	return nil
}

func (r *fakeTicketRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*ticket.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, infra.WrapRepoErr("ticket not found", errNotFound, infra.KindNotFound)
	}
	return t, nil
}

func (r *fakeTicketRepo) FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*ticket.Ticket, error) {
	return r.FindByID(ctx, tx, id)
}

func (r *fakeTicketRepo) Claim(_ context.Context, _ db.DBTX, id, supplierID uuid.UUID, now time.Time) error {
	t, ok := r.tickets[id]
	if !ok {
		return infra.WrapRepoErr("ticket not found", errNotFound, infra.KindNotFound)
	}
	if err := t.Claim(supplierID, now); err != nil {
		return infra.WrapRepoErr("claim lost", err, infra.KindConflict)
	}
	return nil
}

func (r *fakeTicketRepo) Complete(_ context.Context, _ db.DBTX, id uuid.UUID, now time.Time) error {
	t, ok := r.tickets[id]
	if !ok {
		return infra.WrapRepoErr("ticket not found", errNotFound, infra.KindNotFound)
	}
	if err := t.Complete(now); err != nil {
		return infra.WrapRepoErr("complete rejected", err, infra.KindConflict)
	}
	key := cooldownKey(t.RequesterID(), t.ItemID())
	r.lastCompleted[key] = &now
	return nil
}

func (r *fakeTicketRepo) Close(_ context.Context, _ db.DBTX, id uuid.UUID, status ticket.Status, now time.Time) error {
	t, ok := r.tickets[id]
	if !ok {
		return infra.WrapRepoErr("ticket not found", errNotFound, infra.KindNotFound)
	}
	var err error
	if status == ticket.StatusFailed {
		err = t.Fail(now)
	} else {
		err = t.Cancel(now)
	}
	if err != nil {
		return infra.WrapRepoErr("close rejected", err, infra.KindConflict)
	}
	return nil
}

func (r *fakeTicketRepo) SetEvidenceVerified(_ context.Context, _ db.DBTX, id uuid.UUID, now time.Time) error {
	t, ok := r.tickets[id]
	if !ok {
		return infra.WrapRepoErr("ticket not found", errNotFound, infra.KindNotFound)
	}
	if err := t.MarkEvidenceVerified(now); err != nil {
		return infra.WrapRepoErr("flag rejected", err, infra.KindConflict)
	}
	return nil
}

func (r *fakeTicketRepo) SetNoAutoClose(_ context.Context, _ db.DBTX, id uuid.UUID, protected bool, now time.Time) error {
	t, ok := r.tickets[id]
	if !ok {
		return infra.WrapRepoErr("ticket not found", errNotFound, infra.KindNotFound)
	}
	if err := t.SetNoAutoClose(protected, now); err != nil {
		return infra.WrapRepoErr("flag rejected", err, infra.KindConflict)
	}
	return nil
}

func (r *fakeTicketRepo) LastCompletedAt(_ context.Context, _ db.DBTX, requesterID, itemID uuid.UUID) (*time.Time, error) {
	return r.lastCompleted[cooldownKey(requesterID, itemID)], nil
}

func (r *fakeTicketRepo) CancelStale(_ context.Context, _ db.DBTX, _, _ time.Time) ([]repository.StaleClosed, error) {
	return r.stale, nil
}

type fakeStockRepo struct {
	quantities map[string]int
	away       map[uuid.UUID]bool
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{
		quantities: make(map[string]int),
		away:       make(map[uuid.UUID]bool),
	}
}

func stockKey(supplierID, itemID uuid.UUID) string {
	return supplierID.String() + "/" + itemID.String()
}

func (r *fakeStockRepo) set(supplierID, itemID uuid.UUID, qty int) {
	r.quantities[stockKey(supplierID, itemID)] = qty
}

func (r *fakeStockRepo) EnsureSupplier(context.Context, db.DBTX, uuid.UUID, time.Time) error {
	return nil
}

func (r *fakeStockRepo) SetSupplierAway(_ context.Context, _ db.DBTX, supplierID uuid.UUID, away bool, _ time.Time) error {
	r.away[supplierID] = away
	return nil
}

func (r *fakeStockRepo) Add(_ context.Context, _ db.DBTX, supplierID, itemID uuid.UUID, qty int, _ stock.FulfillMethod, _ *string, _ time.Time) error {
	r.quantities[stockKey(supplierID, itemID)] += qty
	return nil
}

func (r *fakeStockRepo) RemoveClamped(_ context.Context, _ db.DBTX, supplierID, itemID uuid.UUID, qty int, _ time.Time) (int, error) {
	key := stockKey(supplierID, itemID)
	cur, ok := r.quantities[key]
	if !ok {
		return 0, infra.WrapRepoErr("stock entry not found", errNotFound, infra.KindNotFound)
	}
	removed := qty
	if removed > cur {
		removed = cur
	}
	r.quantities[key] = cur - removed
	return removed, nil
}

func (r *fakeStockRepo) Credit(_ context.Context, _ db.DBTX, supplierID, itemID uuid.UUID, qty int, _ time.Time) error {
	r.quantities[stockKey(supplierID, itemID)] += qty
	return nil
}

func (r *fakeStockRepo) Aggregate(_ context.Context, _ db.DBTX, itemID uuid.UUID) (int, error) {
	total := 0
	for key, qty := range r.quantities {
		if strings.HasSuffix(key, "/"+itemID.String()) {
			total += qty
		}
	}
	return total, nil
}

func (r *fakeStockRepo) SupplierQuantity(_ context.Context, _ db.DBTX, supplierID, itemID uuid.UUID) (int, error) {
	return r.quantities[stockKey(supplierID, itemID)], nil
}

type enqueuedRestock struct {
	SupplierID  uuid.UUID
	ItemID      uuid.UUID
	ScheduledAt time.Time
}

type fakeRestockRepo struct {
	enqueued []enqueuedRestock
	due      []repository.CreditGroup
}

func (r *fakeRestockRepo) Enqueue(_ context.Context, _ db.DBTX, supplierID, itemID uuid.UUID, scheduledAt, _ time.Time) error {
	r.enqueued = append(r.enqueued, enqueuedRestock{supplierID, itemID, scheduledAt})
	return nil
}

func (r *fakeRestockRepo) ConsumeDue(_ context.Context, _ db.DBTX, _ time.Time) ([]repository.CreditGroup, error) {
	due := r.due
	r.due = nil
	return due, nil
}

func (r *fakeRestockRepo) DeleteOlderThan(_ context.Context, _ db.DBTX, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeWaitlistRepo struct {
	entries []waitlist.Entry
}

func (r *fakeWaitlistRepo) Join(_ context.Context, _ db.DBTX, itemID, userID uuid.UUID, now time.Time) (bool, error) {
	for _, e := range r.entries {
		if e.ItemID == itemID && e.UserID == userID {
			return false, nil
		}
	}
	r.entries = append(r.entries, waitlist.Entry{ItemID: itemID, UserID: userID, JoinedAt: now})
	return true, nil
}

func (r *fakeWaitlistRepo) Leave(_ context.Context, _ db.DBTX, itemID, userID uuid.UUID) (int64, error) {
	return r.remove(func(e waitlist.Entry) bool { return e.ItemID == itemID && e.UserID == userID }), nil
}

func (r *fakeWaitlistRepo) LeaveAll(_ context.Context, _ db.DBTX, userID uuid.UUID) (int64, error) {
	return r.remove(func(e waitlist.Entry) bool { return e.UserID == userID }), nil
}

func (r *fakeWaitlistRepo) ListByItem(_ context.Context, _ db.DBTX, itemID uuid.UUID) ([]waitlist.Entry, error) {
	var out []waitlist.Entry
	for _, e := range r.entries {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeWaitlistRepo) ClearItem(_ context.Context, _ db.DBTX, itemID uuid.UUID) (int64, error) {
	return r.remove(func(e waitlist.Entry) bool { return e.ItemID == itemID }), nil
}

func (r *fakeWaitlistRepo) remove(match func(waitlist.Entry) bool) int64 {
	var kept []waitlist.Entry
	var removed int64
	for _, e := range r.entries {
		if match(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return removed
}

func waitlistEntry(itemID, userID uuid.UUID) waitlist.Entry {
	return waitlist.Entry{ItemID: itemID, UserID: userID, JoinedAt: time.Now()}
}

type fakeAuditRepo struct {
	mu     sync.Mutex
	events []repository.AuditEvent
}

func (r *fakeAuditRepo) Insert(_ context.Context, _ db.DBTX, ev repository.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeAuditRepo) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// fakePanelRepo is mutex-guarded because the auto-reopen timer replaces
// the state from its own goroutine.
type fakePanelRepo struct {
	mu      sync.Mutex
	state   *repository.PanelState
	cleared int
}

func (r *fakePanelRepo) Get(context.Context, db.DBTX) (*repository.PanelState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return nil, infra.WrapRepoErr("panel not configured", errNotFound, infra.KindNotFound)
	}
	return r.state, nil
}

func (r *fakePanelRepo) Replace(_ context.Context, _ db.DBTX, s repository.PanelState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = &s
	return nil
}

func (r *fakePanelRepo) Clear(context.Context, db.DBTX) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = nil
	r.cleared++
	return nil
}

func (r *fakePanelRepo) snapshot() *repository.PanelState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

type fakeCatalog struct {
	items map[uuid.UUID]catalog.Item
}

func newFakeCatalog(items ...catalog.Item) *fakeCatalog {
	m := make(map[uuid.UUID]catalog.Item, len(items))
	for _, item := range items {
		m[item.ID] = item
	}
	return &fakeCatalog{items: m}
}

func (c *fakeCatalog) ItemByID(_ context.Context, id uuid.UUID) (*catalog.Item, error) {
	item, ok := c.items[id]
	if !ok {
		return nil, infra.WrapRepoErr("item not found", errNotFound, infra.KindNotFound)
	}
	return &item, nil
}

type fakeMembership struct {
	tiers map[uuid.UUID]int
}

func (m *fakeMembership) TiersOf(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(userIDs))
	for _, id := range userIDs {
		out[id] = m.tiers[id]
	}
	return out, nil
}

type sentMessage struct {
	UserID  uuid.UUID
	Message string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[uuid.UUID]bool
}

func (n *fakeNotifier) Send(_ context.Context, userID uuid.UUID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[userID] {
		return errSendFailed
	}
	n.sent = append(n.sent, sentMessage{userID, message})
	return nil
}

func (n *fakeNotifier) recipients() []uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]uuid.UUID, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.UserID
	}
	return out
}
