package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/portfolio/internal/common"
)

type errorBody struct {
	Detail string `json:"detail"`
}

// statusOf maps a service error to its HTTP status and client-facing detail.
// Internal causes are never echoed back.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Not enough permissions"
	case errors.Is(err, common.ErrorTooManyRequests):
		return http.StatusTooManyRequests, "Too many requests, try again later"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func abortWithError(c *gin.Context, err error) {
	status, detail := statusOf(err)
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", common.BearerScheme)
	}
	c.AbortWithStatusJSON(status, errorBody{Detail: detail})
}

func (h *handlers) fail(c *gin.Context, err error) {
	if status, _ := statusOf(err); status == http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	abortWithError(c, err)
}

func badRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Detail: detail})
}

// int64Param reads a positive integer path parameter, answering 404 when it
// is malformed since no such resource can exist.
func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, common.ErrorNotFound)
		return 0, false
	}
	return id, true
}
