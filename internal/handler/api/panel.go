package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "keypool/internal/handler/dto/request"
	resdto "keypool/internal/handler/dto/response"
	"keypool/internal/handler/httperr"
	"keypool/internal/pkg/errs"
	"keypool/internal/usecase/commands"
	"keypool/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PanelHandler struct {
	commands commands.PanelCommands
	queries  queries.PanelQueries
}

func NewPanelHandler(panelCommands commands.PanelCommands, panelQueries queries.PanelQueries) *PanelHandler {
	return &PanelHandler{
		commands: panelCommands,
		queries:  panelQueries,
	}
}

// @Summary Panel overview
// @Description Public availability snapshot: panel state plus per-item stock and waitlist depth
// @Tags panel
// @Produce json
// @Success 200 {object} resdto.PanelResponse
// @Failure 404 {object} map[string]string
// @Router /panel [get]
func (h *PanelHandler) Overview(c *gin.Context) {
	view, err := h.queries.Overview(c.Request.Context())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			httperr.Abort(c, http.StatusNotFound, err, "Panel not configured", nil)
		} else {
			internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromPanelView(view))
}

// @Summary Publish panel
// @Tags panel
// @Accept json
// @Security BearerAuth
// @Param request body reqdto.PublishPanelRequest true "Panel message"
// @Success 204
// @Router /panel [put]
func (h *PanelHandler) Publish(c *gin.Context) {
	var req reqdto.PublishPanelRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.Abort(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.commands.Publish(c.Request.Context(), req.Message); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Pause panel
// @Description Take the panel offline, optionally scheduling an auto-reopen
// @Tags panel
// @Accept json
// @Security BearerAuth
// @Param request body reqdto.PausePanelRequest true "Pause request"
// @Success 204
// @Router /panel/pause [post]
func (h *PanelHandler) Pause(c *gin.Context) {
	var req reqdto.PausePanelRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.Abort(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	var reopenAfter *time.Duration
	if req.ReopenAfterMinutes != nil {
		d := time.Duration(*req.ReopenAfterMinutes) * time.Minute
		reopenAfter = &d
	}

	if err := h.commands.Pause(c.Request.Context(), req.Message, reopenAfter); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Reopen panel
// @Tags panel
// @Security BearerAuth
// @Success 204
// @Router /panel/reopen [post]
func (h *PanelHandler) Reopen(c *gin.Context) {
	if err := h.commands.Reopen(c.Request.Context()); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Clear panel
// @Tags panel
// @Security BearerAuth
// @Success 204
// @Router /panel [delete]
func (h *PanelHandler) Clear(c *gin.Context) {
	if err := h.commands.Clear(c.Request.Context()); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
