// Package catalog is the read-only item catalog the core requests are made
// against. Items are sourced externally; keypool never mutates them.
package catalog

import "github.com/google/uuid"

type Item struct {
	ID   uuid.UUID
	Name string
	// HighDemand lengthens the requester cooldown for this item.
	HighDemand bool
}
