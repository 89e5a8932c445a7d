package bootstrap

import (
	"context"

	"keypool/internal/pkg/clock"
	"keypool/internal/pkg/config"
	"keypool/internal/pkg/ratelimit"
	"keypool/internal/usecase/commands"
	"keypool/internal/usecase/scheduler"
	"keypool/internal/usecase/shared"

	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		NewRestockUseCase,
		NewRunner,
	),
	fx.Invoke(registerScheduler),
)

func NewRestockUseCase(
	uow shared.UnitOfWork,
	restockRepo commands.RestockRepository,
	stockRepo commands.StockRepository,
	auditRepo commands.AuditRepository,
	waitlistCommands commands.WaitlistCommands,
	clk clock.Clock,
	cfg config.Config,
) *scheduler.RestockUseCase {
	return scheduler.NewRestockUseCase(uow, restockRepo, stockRepo, auditRepo, waitlistCommands, clk, cfg.Scheduler)
}

func NewRunner(
	restock *scheduler.RestockUseCase,
	ticketCommands commands.TicketCommands,
	limiter *ratelimit.Limiter,
	cfg config.Config,
) *scheduler.Runner {
	return scheduler.NewRunner(restock, ticketCommands, limiter, cfg.Scheduler)
}

func registerScheduler(lc fx.Lifecycle, runner *scheduler.Runner) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			runner.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			runner.Stop()
			return nil
		},
	})
}
