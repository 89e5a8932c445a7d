package api

import (
	"context"
	"net/http"
	"strconv"

	"keypool/internal/domain/catalog"
	resdto "keypool/internal/handler/dto/response"
	"keypool/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// CatalogService is satisfied by the cache-fronted catalog.
type CatalogService interface {
	ListItems(ctx context.Context) ([]catalog.Item, error)
	Reload(ctx context.Context) (int, error)
}

type AdminHandler struct {
	catalog CatalogService
	audit   queries.AuditQueries
}

func NewAdminHandler(catalogService CatalogService, auditQueries queries.AuditQueries) *AdminHandler {
	return &AdminHandler{
		catalog: catalogService,
		audit:   auditQueries,
	}
}

// @Summary List catalog items
// @Tags catalog
// @Produce json
// @Success 200 {array} resdto.ItemResponse
// @Router /items [get]
func (h *AdminHandler) ListItems(c *gin.Context) {
	items, err := h.catalog.ListItems(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromItems(items))
}

// @Summary Reload catalog cache
// @Description Drop and rewarm the catalog snapshot
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Router /admin/catalog/reload [post]
func (h *AdminHandler) ReloadCatalog(c *gin.Context) {
	loaded, err := h.catalog.Reload(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loaded": loaded})
}

// @Summary List recent audit events
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param kind query string false "Filter by event kind"
// @Param limit query int false "Max events to return"
// @Success 200 {array} resdto.AuditEventResponse
// @Router /admin/audit [get]
func (h *AdminHandler) ListAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	views, err := h.audit.ListRecent(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAuditEventViews(views))
}
