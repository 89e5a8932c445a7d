package request

import "github.com/google/uuid"

type IssueTokenRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Role   string    `json:"role" binding:"required,oneof=requester supplier manager"`
}
