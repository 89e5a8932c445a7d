package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type TicketView struct {
	ID               uuid.UUID  `json:"id"`
	ItemID           uuid.UUID  `json:"item_id"`
	ItemName         string     `json:"item_name"`
	RequesterID      uuid.UUID  `json:"requester_id"`
	SupplierID       *uuid.UUID `json:"supplier_id,omitempty"`
	Status           string     `json:"status"`
	EvidenceVerified bool       `json:"evidence_verified"`
	NoAutoClose      bool       `json:"no_auto_close"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

type ItemAvailabilityView struct {
	ItemID          uuid.UUID  `json:"item_id"`
	Name            string     `json:"name"`
	HighDemand      bool       `json:"high_demand"`
	TotalStock      int        `json:"total_stock"`
	Suppliers       int        `json:"suppliers"`
	Waiting         int        `json:"waiting"`
	PendingRestocks int        `json:"pending_restocks"`
	NextRestockAt   *time.Time `json:"next_restock_at,omitempty"`
}

type PanelStateView struct {
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	ReopenAt  *time.Time `json:"reopen_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type PanelView struct {
	State PanelStateView          `json:"state"`
	Items []*ItemAvailabilityView `json:"items"`
}

type AuditEventView struct {
	ID        uuid.UUID      `json:"id"`
	Kind      string         `json:"kind"`
	ActorID   *uuid.UUID     `json:"actor_id,omitempty"`
	SubjectID *uuid.UUID     `json:"subject_id,omitempty"`
	Detail    map[string]any `json:"detail"`
	CreatedAt time.Time      `json:"created_at"`
}
