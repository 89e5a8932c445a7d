// Package stock models one supplier's holding of one item. Quantities
// never go negative; the storage layer enforces the same floor with a
// guarded update so racing debits cannot slip past a zero check.
package stock

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCredentialForbidden = errors.New("credential reference requires automated fulfillment")
)

type FulfillMethod string

const (
	FulfillManual    FulfillMethod = "manual"
	FulfillAutomated FulfillMethod = "automated"
)

func ParseFulfillMethod(s string) (FulfillMethod, error) {
	switch FulfillMethod(s) {
	case FulfillManual, FulfillAutomated:
		return FulfillMethod(s), nil
	}
	return "", errors.New("invalid fulfillment method")
}

// Entry is a (supplier, item) holding. It persists at quantity zero so
// restock credits have a row to land on.
type Entry struct {
	supplierID    uuid.UUID
	itemID        uuid.UUID
	quantity      int
	method        FulfillMethod
	credentialRef *string // sealed, never plaintext
	updatedAt     time.Time
}

func NewEntry(supplierID, itemID uuid.UUID, qty int, method FulfillMethod, credentialRef *string, now time.Time) (*Entry, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if credentialRef != nil && method != FulfillAutomated {
		return nil, ErrCredentialForbidden
	}
	return &Entry{
		supplierID:    supplierID,
		itemID:        itemID,
		quantity:      qty,
		method:        method,
		credentialRef: credentialRef,
		updatedAt:     now,
	}, nil
}

func Reconstruct(supplierID, itemID uuid.UUID, qty int, method FulfillMethod, credentialRef *string, updatedAt time.Time) *Entry {
	return &Entry{
		supplierID:    supplierID,
		itemID:        itemID,
		quantity:      qty,
		method:        method,
		credentialRef: credentialRef,
		updatedAt:     updatedAt,
	}
}

func (e *Entry) SupplierID() uuid.UUID       { return e.supplierID }
func (e *Entry) ItemID() uuid.UUID           { return e.itemID }
func (e *Entry) Quantity() int               { return e.quantity }
func (e *Entry) Method() FulfillMethod       { return e.method }
func (e *Entry) CredentialRef() *string      { return e.credentialRef }
func (e *Entry) UpdatedAt() time.Time        { return e.updatedAt }

func (e *Entry) Add(qty int, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	e.quantity += qty
	e.updatedAt = now
	return nil
}

// Remove takes up to qty units and returns the amount actually removed,
// clamped at the current quantity.
func (e *Entry) Remove(qty int, now time.Time) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	removed := qty
	if removed > e.quantity {
		removed = e.quantity
	}
	e.quantity -= removed
	e.updatedAt = now
	return removed, nil
}
