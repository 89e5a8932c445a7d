package errs

import "errors"

// Sentinel errors shared by the usecase layers. Handlers map these to
// HTTP statuses; callers get a specific reason for every precondition
// failure.
var (
	// Stock ledger preconditions
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")

	// Ticket creation preconditions
	ErrNoStockAvailable = errors.New("no stock available for this item")
	ErrOnCooldown       = errors.New("requester is on cooldown for this item")

	// Ticket lifecycle preconditions
	ErrAlreadyClaimed      = errors.New("ticket already claimed")
	ErrNotEligible         = errors.New("supplier has no stock for this item")
	ErrInvalidState        = errors.New("ticket is not in a valid state for this operation")
	ErrEvidenceNotVerified = errors.New("ticket evidence has not been verified")

	// Lookup failures
	ErrNotFound = errors.New("not found")

	// Transient persistence failures, surfaced after bounded retries
	ErrUnavailable = errors.New("storage temporarily unavailable")
)
