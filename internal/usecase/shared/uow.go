package shared

import (
	"context"

	"keypool/internal/infra/db"
)

// UnitOfWork runs a function inside one storage transaction. Every
// read-modify-write the core performs (ticket transitions, stock
// mutations, restock consumption) goes through Within so partial effects
// can never survive a failure.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error
}
