package request

import "github.com/google/uuid"

type JoinWaitlistRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
}
