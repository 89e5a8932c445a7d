package api

import (
	"errors"
	"net/http"

	"keypool/internal/domain/stock"
	reqdto "keypool/internal/handler/dto/request"
	resdto "keypool/internal/handler/dto/response"
	"keypool/internal/handler/httperr"
	"keypool/internal/handler/middleware"
	"keypool/internal/pkg/errs"
	"keypool/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	commands commands.StockCommands
}

func NewStockHandler(stockCommands commands.StockCommands) *StockHandler {
	return &StockHandler{commands: stockCommands}
}

// @Summary Add stock
// @Description Contribute activation stock for an item
// @Tags stock
// @Accept json
// @Security BearerAuth
// @Param request body reqdto.AddStockRequest true "Stock contribution"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /stock [post]
func (h *StockHandler) Add(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	var req reqdto.AddStockRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.Abort(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	method, err := stock.ParseFulfillMethod(req.GetMethod())
	if err != nil {
		httperr.Abort(c, http.StatusBadRequest, err, "Invalid fulfillment method", nil)
		return
	}

	err = h.commands.Add(c.Request.Context(), userID, req.ItemID, req.Quantity, method, req.Credential)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidQuantity):
			httperr.Abort(c, http.StatusBadRequest, err, "Quantity must be positive", nil)
		case errors.Is(err, errs.ErrNotFound):
			httperr.Abort(c, http.StatusNotFound, err, "Item not found", nil)
		case errors.Is(err, stock.ErrCredentialForbidden):
			httperr.Abort(c, http.StatusBadRequest, err, "Credentials are only accepted with automated fulfillment", nil)
		default:
			internalError(c, err)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Remove stock
// @Description Take own stock off the ledger; removal is clamped to what is held
// @Tags stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.RemoveStockRequest true "Removal request"
// @Success 200 {object} resdto.RemoveStockResponse
// @Failure 400 {object} map[string]string
// @Router /stock/remove [post]
func (h *StockHandler) Remove(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	var req reqdto.RemoveStockRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.Abort(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	removed, err := h.commands.Remove(c.Request.Context(), userID, req.ItemID, req.Quantity)
	if err != nil && !errors.Is(err, errs.ErrInsufficientStock) {
		switch {
		case errors.Is(err, errs.ErrInvalidQuantity):
			httperr.Abort(c, http.StatusBadRequest, err, "Quantity must be positive", nil)
		case errors.Is(err, errs.ErrNotFound):
			httperr.Abort(c, http.StatusNotFound, err, "No stock entry for this item", nil)
		default:
			internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, &resdto.RemoveStockResponse{
		Requested: req.Quantity,
		Removed:   removed,
		Partial:   errors.Is(err, errs.ErrInsufficientStock),
	})
}

// @Summary Set away status
// @Description Away suppliers keep their stock but are skipped by the public pool
// @Tags stock
// @Accept json
// @Security BearerAuth
// @Param request body reqdto.SetAwayRequest true "Away flag"
// @Success 204
// @Router /stock/away [post]
func (h *StockHandler) SetAway(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.Abort(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	var req reqdto.SetAwayRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.Abort(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.commands.SetAway(c.Request.Context(), userID, req.Away); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
