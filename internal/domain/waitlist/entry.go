// Package waitlist holds the per-item waiter set and its drain ordering
// rule. A user appears at most once per item; ordering for notification is
// priority tier descending, then join time ascending.
package waitlist

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	ItemID   uuid.UUID
	UserID   uuid.UUID
	JoinedAt time.Time
}

// Waiter is an entry paired with the tier the membership collaborator
// reported for its user. A user without a tier gets the lowest ordinal.
type Waiter struct {
	Entry
	Tier int
}

// SortForDrain orders waiters in notification order, in place.
func SortForDrain(ws []Waiter) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Tier != ws[j].Tier {
			return ws[i].Tier > ws[j].Tier
		}
		return ws[i].JoinedAt.Before(ws[j].JoinedAt)
	})
}
