package membership

import (
	"context"

	"keypool/internal/infra/db"
	"keypool/internal/infra/repository"

	"github.com/google/uuid"
)

// Service answers tier lookups outside a unit of work. Tiers are
// advisory ordering input, so reading them off the pool without a
// transaction is fine.
type Service struct {
	pool db.DBTX
	repo *repository.MembershipRepository
}

func New(pool db.DBTX, repo *repository.MembershipRepository) *Service {
	return &Service{pool: pool, repo: repo}
}

func (s *Service) TiersOf(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return s.repo.TiersOf(ctx, s.pool, userIDs)
}
