package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/portfolio/internal/common"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type meResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	tok, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: tok.Token,
		TokenType:   "bearer",
		ExpiresIn:   int64(tok.ExpiresIn.Seconds()),
	})
}

func (h *handlers) me(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		abortWithError(c, common.ErrorUnauthorized)
		return
	}
	c.JSON(http.StatusOK, meResponse{Username: id.Username, Email: id.Email, IsAdmin: id.IsAdmin})
}

func (h *handlers) logout(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		abortWithError(c, common.ErrorUnauthorized)
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
