package request

import "github.com/google/uuid"

type CreateTicketRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
}

type CompleteTicketRequest struct {
	Proof string `json:"proof" binding:"required"`
}

type FailTicketRequest struct {
	Reason string `json:"reason"`
}

type ProtectTicketRequest struct {
	Protected bool `json:"protected"`
}
