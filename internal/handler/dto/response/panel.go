package response

import (
	"time"

	"keypool/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type PanelResponse struct {
	Status    string              `json:"status"`
	Message   string              `json:"message"`
	ReopenAt  *time.Time          `json:"reopenAt,omitempty"`
	UpdatedAt time.Time           `json:"updatedAt"`
	Items     []*ItemAvailability `json:"items"`
}

type ItemAvailability struct {
	ItemID          uuid.UUID  `json:"itemId"`
	Name            string     `json:"name"`
	HighDemand      bool       `json:"highDemand"`
	TotalStock      int        `json:"totalStock"`
	Suppliers       int        `json:"suppliers"`
	Waiting         int        `json:"waiting"`
	PendingRestocks int        `json:"pendingRestocks"`
	NextRestockAt   *time.Time `json:"nextRestockAt,omitempty"`
}

func FromPanelView(v *queries.PanelView) *PanelResponse {
	resp := &PanelResponse{
		Status:    v.State.Status,
		Message:   v.State.Message,
		ReopenAt:  v.State.ReopenAt,
		UpdatedAt: v.State.UpdatedAt,
		Items:     make([]*ItemAvailability, len(v.Items)),
	}
	for i, item := range v.Items {
		var ia ItemAvailability
		_ = copier.Copy(&ia, item)
		resp.Items[i] = &ia
	}
	return resp
}
