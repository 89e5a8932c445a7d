package response

import (
	"keypool/internal/domain/catalog"

	"github.com/google/uuid"
)

type RemoveStockResponse struct {
	Requested int  `json:"requested"`
	Removed   int  `json:"removed"`
	Partial   bool `json:"partial"`
}

type ItemResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	HighDemand bool      `json:"highDemand"`
}

func FromItems(items []catalog.Item) []*ItemResponse {
	resp := make([]*ItemResponse, len(items))
	for i, item := range items {
		resp[i] = &ItemResponse{ID: item.ID, Name: item.Name, HighDemand: item.HighDemand}
	}
	return resp
}
