package api

import (
	"errors"
	"net/http"

	"keypool/internal/domain/identity"
	"keypool/internal/domain/ticket"
	reqdto "keypool/internal/handler/dto/request"
	resdto "keypool/internal/handler/dto/response"
	"keypool/internal/handler/httperr"
	"keypool/internal/handler/middleware"
	"keypool/internal/pkg/errs"
	"keypool/internal/usecase/commands"
	"keypool/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TicketHandler struct {
	commands commands.TicketCommands
	queries  queries.TicketQueries
}

func NewTicketHandler(ticketCommands commands.TicketCommands, ticketQueries queries.TicketQueries) *TicketHandler {
	return &TicketHandler{
		commands: ticketCommands,
		queries:  ticketQueries,
	}
}

// @Summary Create ticket
// @Description Open a pending activation ticket for an item
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateTicketRequest true "Ticket request"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /tickets [post]
func (h *TicketHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	var req reqdto.CreateTicketRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.Abort(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	t, err := h.commands.Create(c.Request.Context(), req.ItemID, userID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			httperr.Abort(c, http.StatusNotFound, err, "Item not found", nil)
		case errors.Is(err, errs.ErrNoStockAvailable):
			httperr.Abort(c, http.StatusConflict, err, "No stock available",
				gin.H{"waitlist_offer": true})
		case errors.Is(err, errs.ErrOnCooldown):
			httperr.Abort(c, http.StatusConflict, err, "Cooldown is still running for this item", nil)
		default:
			internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": t.ID().String(), "status": string(t.Status())})
}

// @Summary Claim ticket
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tickets/{id}/claim [post]
func (h *TicketHandler) Claim(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	if err := h.commands.Claim(c.Request.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			httperr.Abort(c, http.StatusNotFound, err, "Ticket not found", nil)
		case errors.Is(err, errs.ErrAlreadyClaimed):
			httperr.Abort(c, http.StatusConflict, err, "Ticket already claimed", nil)
		case errors.Is(err, errs.ErrNotEligible):
			httperr.Abort(c, http.StatusForbidden, err, "No stock held for this item", nil)
		case errors.Is(err, errs.ErrInvalidState):
			httperr.Abort(c, http.StatusConflict, err, "Ticket is not pending", nil)
		default:
			internalError(c, err)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Complete ticket
// @Description Close a claimed, evidence-verified ticket and debit stock
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param request body reqdto.CompleteTicketRequest true "Completion proof"
// @Success 204
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /tickets/{id}/complete [post]
func (h *TicketHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var req reqdto.CompleteTicketRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.Abort(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	role, _ := middleware.GetUserRole(c)
	if err := h.commands.Complete(c.Request.Context(), id, userID, role, req.Proof); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			httperr.Abort(c, http.StatusNotFound, err, "Ticket not found", nil)
		case errors.Is(err, errs.ErrNotEligible):
			httperr.Abort(c, http.StatusForbidden, err, "Only the claiming supplier may complete this ticket", nil)
		case errors.Is(err, errs.ErrEvidenceNotVerified):
			httperr.Abort(c, http.StatusUnprocessableEntity, err, "Evidence has not been verified", nil)
		case errors.Is(err, errs.ErrInvalidState):
			httperr.Abort(c, http.StatusConflict, err, "Ticket is not claimed", nil)
		default:
			internalError(c, err)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Fail ticket
// @Tags tickets
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 204
// @Router /tickets/{id}/fail [post]
func (h *TicketHandler) Fail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var req reqdto.FailTicketRequest
	_ = c.ShouldBindJSON(&req)

	role, _ := middleware.GetUserRole(c)
	if err := h.commands.Fail(c.Request.Context(), id, userID, role, req.Reason); err != nil {
		h.closeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Cancel ticket
// @Tags tickets
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 204
// @Router /tickets/{id}/cancel [post]
func (h *TicketHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	role, _ := middleware.GetUserRole(c)
	reason := ticket.ReasonRequester
	if role == identity.RoleManager {
		reason = ticket.ReasonManager
	}

	if err := h.commands.Cancel(c.Request.Context(), id, userID, role, reason); err != nil {
		h.closeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Verify ticket evidence
// @Tags tickets
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 204
// @Router /tickets/{id}/verify [post]
func (h *TicketHandler) Verify(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	if err := h.commands.MarkEvidenceVerified(c.Request.Context(), id, userID); err != nil {
		h.closeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Protect ticket from auto-close
// @Tags tickets
// @Accept json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param request body reqdto.ProtectTicketRequest true "Protection flag"
// @Success 204
// @Router /tickets/{id}/protect [post]
func (h *TicketHandler) Protect(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var req reqdto.ProtectTicketRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.Abort(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.commands.SetNoAutoClose(c.Request.Context(), id, userID, req.Protected); err != nil {
		h.closeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get ticket
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 200 {object} resdto.TicketResponse
// @Failure 404 {object} map[string]string
// @Router /tickets/{id} [get]
func (h *TicketHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}
	role, _ := middleware.GetUserRole(c)
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), userID, role, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			httperr.Abort(c, http.StatusNotFound, err, "Ticket not found", nil)
		} else {
			internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromTicketView(view))
}

// @Summary List own tickets
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.TicketResponse
// @Router /tickets [get]
func (h *TicketHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}
	role, _ := middleware.GetUserRole(c)

	views, err := h.queries.ListMine(c.Request.Context(), userID, role, 0)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTicketViews(views))
}

// @Summary List open tickets
// @Description Pending and claimed tickets, oldest first
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.TicketResponse
// @Router /tickets/open [get]
func (h *TicketHandler) ListOpen(c *gin.Context) {
	views, err := h.queries.ListOpen(c.Request.Context(), 0)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTicketViews(views))
}

func (h *TicketHandler) closeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		httperr.Abort(c, http.StatusNotFound, err, "Ticket not found", nil)
	case errors.Is(err, errs.ErrNotEligible):
		httperr.Abort(c, http.StatusForbidden, err, "Not a party to this ticket", nil)
	case errors.Is(err, errs.ErrInvalidState):
		httperr.Abort(c, http.StatusConflict, err, "Ticket is not in a valid state for this operation", nil)
	default:
		internalError(c, err)
	}
}

func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.Abort(c, http.StatusBadRequest, err, "Invalid ID format", nil)
	}
	return id, err
}

func internalError(c *gin.Context, err error) {
	if errors.Is(err, errs.ErrUnavailable) {
		httperr.Abort(c, http.StatusServiceUnavailable, err, "Service temporarily unavailable", nil)
		return
	}
	httperr.Abort(c, http.StatusInternalServerError, err, "Internal server error", nil)
}
