package api

import (
	"net/http"

	"keypool/internal/domain/identity"
	reqdto "keypool/internal/handler/dto/request"
	resdto "keypool/internal/handler/dto/response"
	"keypool/internal/handler/httperr"
	"keypool/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	jwtService *jwt.Service
}

func NewAuthHandler(jwtService *jwt.Service) *AuthHandler {
	return &AuthHandler{jwtService: jwtService}
}

// @Summary Issue token
// @Description Mint an access token for a known identity. Available in debug mode only.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.IssueTokenRequest true "Token request"
// @Success 200 {object} resdto.TokenResponse
// @Failure 400 {object} map[string]string
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req reqdto.IssueTokenRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.Abort(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	role, err := identity.ParseRole(req.Role)
	if err != nil {
		httperr.Abort(c, http.StatusBadRequest, err, "Invalid role", nil)
		return
	}

	token, err := h.jwtService.GenerateToken(req.UserID, role)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, &resdto.TokenResponse{Token: token, Role: string(role)})
}
