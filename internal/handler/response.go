package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"loanflow/internal/service"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// svcError maps service sentinels onto HTTP statuses; anything else is
// an upstream fault.
func svcError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, service.ErrInvalidInput):
		Error(c, http.StatusBadRequest, "invalid input", nil)
	case errors.Is(err, service.ErrConflict):
		Error(c, http.StatusConflict, "already exists", nil)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
