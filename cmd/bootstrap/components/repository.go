package components

import (
	"keypool/internal/cache"
	"keypool/internal/handler/api"
	"keypool/internal/infra/catalogsvc"
	"keypool/internal/infra/db"
	"keypool/internal/infra/membership"
	"keypool/internal/infra/readstore"
	"keypool/internal/infra/repository"
	"keypool/internal/infra/uow"
	"keypool/internal/usecase/commands"
	"keypool/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		fx.Annotate(
			repository.NewTicketRepository,
			fx.As(new(commands.TicketRepository)),
		),
		fx.Annotate(
			repository.NewStockRepository,
			fx.As(new(commands.StockRepository)),
		),
		fx.Annotate(
			repository.NewRestockRepository,
			fx.As(new(commands.RestockRepository)),
		),
		fx.Annotate(
			repository.NewWaitlistRepository,
			fx.As(new(commands.WaitlistRepository)),
		),
		fx.Annotate(
			repository.NewAuditRepository,
			fx.As(new(commands.AuditRepository)),
		),
		fx.Annotate(
			repository.NewPanelRepository,
			fx.As(new(commands.PanelRepository)),
		),
		repository.NewCatalogRepository,
		repository.NewMembershipRepository,
		fx.Annotate(
			NewCatalogService,
			fx.As(new(commands.Catalog)),
			fx.As(new(api.CatalogService)),
		),
		fx.Annotate(
			membership.New,
			fx.As(new(commands.Membership)),
		),
		// Read-side stores for queries
		fx.Annotate(
			readstore.NewTicketReadStore,
			fx.As(new(queries.TicketViewRepo)),
		),
		fx.Annotate(
			readstore.NewPanelReadStore,
			fx.As(new(queries.PanelViewRepo)),
		),
		fx.Annotate(
			readstore.NewAuditReadStore,
			fx.As(new(queries.AuditViewRepo)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewCatalogService(pool db.DBTX, repo *repository.CatalogRepository, c cache.Cache) *catalogsvc.Service {
	return catalogsvc.New(pool, repo, c)
}
