package request

import "github.com/google/uuid"

type AddStockRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	// Quantity must be positive; the usecase enforces the lower bound.
	Quantity int    `json:"quantity" binding:"required"`
	Method   string `json:"method" binding:"omitempty,oneof=manual automated"`
	// Credential is accepted only with method "automated".
	Credential *string `json:"credential,omitempty"`
}

func (r *AddStockRequest) GetMethod() string {
	if r.Method == "" {
		return "manual"
	}
	return r.Method
}

type RemoveStockRequest struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required"`
}

type SetAwayRequest struct {
	Away bool `json:"away"`
}
