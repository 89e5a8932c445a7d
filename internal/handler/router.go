package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"keypool/internal/domain/identity"
	"keypool/internal/handler/api"
	"keypool/internal/handler/middleware"
	"keypool/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth     *api.AuthHandler
	Ticket   *api.TicketHandler
	Stock    *api.StockHandler
	Waitlist *api.WaitlistHandler
	Panel    *api.PanelHandler
	Admin    *api.AdminHandler
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, handlers, authMiddleware, rateLimitMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	h Handlers,
	auth *middleware.AuthMiddleware,
	rl *middleware.RateLimitMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		// Public surface
		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/panel", Handler: h.Panel.Overview},
			{Method: http.MethodGet, Path: "/items", Handler: h.Admin.ListItems},
		})

		// Token minting is a development convenience, never exposed in release mode.
		if gin.Mode() == gin.DebugMode {
			apiGroup.POST("/auth/token", h.Auth.IssueToken)
		}

		tickets := apiGroup.Group("/tickets")
		tickets.Use(auth.RequireAuth())
		{
			addRoutes(tickets, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Ticket.Create,
					Mw: []gin.HandlerFunc{auth.RequireRole(identity.RoleRequester), rl.Limit("ticket.create")}},
				{Method: http.MethodGet, Path: "", Handler: h.Ticket.ListMine},
				{Method: http.MethodGet, Path: "/open", Handler: h.Ticket.ListOpen,
					Mw: []gin.HandlerFunc{auth.RequireRole(identity.RoleSupplier)}},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Ticket.Get},
				{Method: http.MethodPost, Path: "/:id/claim", Handler: h.Ticket.Claim,
					Mw: []gin.HandlerFunc{auth.RequireRole(identity.RoleSupplier)}},
				{Method: http.MethodPost, Path: "/:id/complete", Handler: h.Ticket.Complete,
					Mw: []gin.HandlerFunc{auth.RequireRole(identity.RoleSupplier)}},
				{Method: http.MethodPost, Path: "/:id/fail", Handler: h.Ticket.Fail,
					Mw: []gin.HandlerFunc{auth.RequireRole(identity.RoleSupplier)}},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Ticket.Cancel},
				{Method: http.MethodPost, Path: "/:id/verify", Handler: h.Ticket.Verify,
					Mw: []gin.HandlerFunc{auth.RequireRole(identity.RoleManager)}},
				{Method: http.MethodPost, Path: "/:id/protect", Handler: h.Ticket.Protect,
					Mw: []gin.HandlerFunc{auth.RequireRole(identity.RoleManager)}},
			})
		}

		stockGroup := apiGroup.Group("/stock")
		stockGroup.Use(auth.RequireAuth(), auth.RequireRole(identity.RoleSupplier))
		{
			addRoutes(stockGroup, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Stock.Add},
				{Method: http.MethodPost, Path: "/remove", Handler: h.Stock.Remove},
				{Method: http.MethodPost, Path: "/away", Handler: h.Stock.SetAway},
			})
		}

		waitlist := apiGroup.Group("/waitlist")
		waitlist.Use(auth.RequireAuth(), auth.RequireRole(identity.RoleRequester))
		{
			addRoutes(waitlist, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Waitlist.Join,
					Mw: []gin.HandlerFunc{rl.Limit("waitlist.join")}},
				{Method: http.MethodDelete, Path: "", Handler: h.Waitlist.LeaveAll},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Waitlist.Leave},
			})
		}

		manage := apiGroup.Group("")
		manage.Use(auth.RequireAuth(), auth.RequireRole(identity.RoleManager))
		{
			addRoutes(manage, []route{
				{Method: http.MethodPut, Path: "/panel", Handler: h.Panel.Publish},
				{Method: http.MethodPost, Path: "/panel/pause", Handler: h.Panel.Pause},
				{Method: http.MethodPost, Path: "/panel/reopen", Handler: h.Panel.Reopen},
				{Method: http.MethodDelete, Path: "/panel", Handler: h.Panel.Clear},
				{Method: http.MethodPost, Path: "/admin/catalog/reload", Handler: h.Admin.ReloadCatalog},
				{Method: http.MethodGet, Path: "/admin/audit", Handler: h.Admin.ListAudit},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
