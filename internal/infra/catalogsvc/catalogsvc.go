package catalogsvc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"keypool/internal/cache"
	"keypool/internal/domain/catalog"
	"keypool/internal/infra/db"
	"keypool/internal/infra/repository"
	"keypool/internal/pkg/errs"

	"github.com/google/uuid"
)

const itemTTL = 10 * time.Minute

// Service is the cache-fronted item lookup used everywhere outside the
// repository layer. Lookups go through the snapshot cache first; Reload
// drops the snapshot and rewarms it from the database.
type Service struct {
	pool db.DBTX
	repo *repository.CatalogRepository
	c    cache.Cache
}

func New(pool db.DBTX, repo *repository.CatalogRepository, c cache.Cache) *Service {
	return &Service{pool: pool, repo: repo, c: c}
}

func (s *Service) ItemByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	key := itemKey(id)
	if raw, err := s.c.Get(ctx, key); err == nil {
		var item catalog.Item
		if err := json.Unmarshal(raw, &item); err == nil {
			return &item, nil
		}
		// Corrupt snapshot entry: drop it and fall through to the DB.
		_ = s.c.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, errs.Wrap(err, "catalog cache read failed")
	}

	item, err := s.repo.ItemByID(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	s.put(ctx, *item)
	return item, nil
}

func (s *Service) ListItems(ctx context.Context) ([]catalog.Item, error) {
	return s.repo.ListItems(ctx, s.pool)
}

// Reload clears the snapshot and warms it with the current item set.
// Returns the number of items loaded.
func (s *Service) Reload(ctx context.Context) (int, error) {
	if err := s.c.Clear(ctx); err != nil {
		return 0, errs.Wrap(err, "failed to clear catalog cache")
	}
	items, err := s.repo.ListItems(ctx, s.pool)
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		s.put(ctx, item)
	}
	return len(items), nil
}

func (s *Service) put(ctx context.Context, item catalog.Item) {
	raw, err := json.Marshal(item)
	if err != nil {
		return
	}
	_ = s.c.Set(ctx, itemKey(item.ID), raw, itemTTL)
}

func itemKey(id uuid.UUID) string {
	return "item:" + id.String()
}
