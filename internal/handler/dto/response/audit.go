package response

import (
	"time"

	"keypool/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type AuditEventResponse struct {
	ID        uuid.UUID      `json:"id"`
	Kind      string         `json:"kind"`
	ActorID   *uuid.UUID     `json:"actorId,omitempty"`
	SubjectID *uuid.UUID     `json:"subjectId,omitempty"`
	Detail    map[string]any `json:"detail"`
	CreatedAt time.Time      `json:"createdAt"`
}

func FromAuditEventViews(views []*queries.AuditEventView) []*AuditEventResponse {
	resp := make([]*AuditEventResponse, len(views))
	for i, v := range views {
		var r AuditEventResponse
		_ = copier.Copy(&r, v)
		resp[i] = &r
	}
	return resp
}
