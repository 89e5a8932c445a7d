package response

import (
	"time"

	"keypool/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type TicketResponse struct {
	ID               uuid.UUID  `json:"id"`
	ItemID           uuid.UUID  `json:"itemId"`
	ItemName         string     `json:"itemName"`
	RequesterID      uuid.UUID  `json:"requesterId"`
	SupplierID       *uuid.UUID `json:"supplierId,omitempty"`
	Status           string     `json:"status"`
	EvidenceVerified bool       `json:"evidenceVerified"`
	NoAutoClose      bool       `json:"noAutoClose"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

func FromTicketView(v *queries.TicketView) *TicketResponse {
	var resp TicketResponse
	_ = copier.Copy(&resp, v)
	return &resp
}

func FromTicketViews(views []*queries.TicketView) []*TicketResponse {
	resp := make([]*TicketResponse, len(views))
	for i, v := range views {
		resp[i] = FromTicketView(v)
	}
	return resp
}
