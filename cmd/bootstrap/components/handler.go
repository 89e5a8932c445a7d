package components

import (
	"keypool/internal/handler"
	"keypool/internal/handler/api"
	"keypool/internal/handler/middleware"
	"keypool/internal/pkg/config"
	"keypool/internal/pkg/jwt"
	"keypool/internal/pkg/ratelimit"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewTicketHandler,
		api.NewStockHandler,
		api.NewWaitlistHandler,
		api.NewPanelHandler,
		api.NewAdminHandler,
		NewAuthMiddleware,
		NewRateLimitMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewAuthMiddleware(jwtService *jwt.Service) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(jwtService)
}

func NewRateLimitMiddleware(limiter *ratelimit.Limiter, cfg config.Config) *middleware.RateLimitMiddleware {
	return middleware.NewRateLimitMiddleware(limiter, cfg.RateLimit)
}

func NewHandlers(
	auth *api.AuthHandler,
	ticket *api.TicketHandler,
	stock *api.StockHandler,
	waitlist *api.WaitlistHandler,
	panel *api.PanelHandler,
	admin *api.AdminHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:     auth,
		Ticket:   ticket,
		Stock:    stock,
		Waitlist: waitlist,
		Panel:    panel,
		Admin:    admin,
	}
}
