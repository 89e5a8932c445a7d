package api

import (
	"net/http"

	reqdto "keypool/internal/handler/dto/request"
	"keypool/internal/handler/httperr"
	"keypool/internal/handler/middleware"
	"keypool/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type WaitlistHandler struct {
	commands commands.WaitlistCommands
}

func NewWaitlistHandler(waitlistCommands commands.WaitlistCommands) *WaitlistHandler {
	return &WaitlistHandler{commands: waitlistCommands}
}

// @Summary Join waitlist
// @Description Register for a restock notification; re-joining is a no-op
// @Tags waitlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.JoinWaitlistRequest true "Waitlist request"
// @Success 200 {object} map[string]bool
// @Router /waitlist [post]
func (h *WaitlistHandler) Join(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	var req reqdto.JoinWaitlistRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.Abort(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	joined, err := h.commands.Join(c.Request.Context(), req.ItemID, userID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"joined": joined})
}

// @Summary Leave waitlist
// @Tags waitlist
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 204
// @Router /waitlist/{id} [delete]
func (h *WaitlistHandler) Leave(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}
	itemID, err := parseIDParam(c)
	if err != nil {
		return
	}

	if _, err := h.commands.Leave(c.Request.Context(), itemID, userID); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Leave all waitlists
// @Tags waitlist
// @Security BearerAuth
// @Success 204
// @Router /waitlist [delete]
func (h *WaitlistHandler) LeaveAll(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	if _, err := h.commands.LeaveAll(c.Request.Context(), userID); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
