package ticket

import "errors"

var ErrInvalidStatus = errors.New("invalid ticket status")

type Status string

const (
	StatusPending   Status = "pending"
	StatusClaimed   Status = "claimed"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusClaimed, StatusCompleted, StatusFailed, StatusCancelled:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CancelReason distinguishes who or what closed a ticket.
type CancelReason string

const (
	ReasonRequester CancelReason = "requester"
	ReasonSupplier  CancelReason = "supplier"
	ReasonStale     CancelReason = "stale"
	ReasonManager   CancelReason = "manager"
)
