package bootstrap

import (
	"keypool/internal/cache"
	"keypool/internal/pkg/config"

	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		NewCache,
	),
)

func NewCache(cfg config.Config) (cache.Cache, error) {
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(cfg.Cache, "keypool")
	}
	return cache.NewMemoryCache(), nil
}
