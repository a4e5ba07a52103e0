package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"loanflow/internal/service"
)

type DashboardHandler struct {
	Service *service.DashboardService
}

func (h *DashboardHandler) Register(r *gin.Engine) {
	r.GET("/api/dashboard/:user_id", h.dashboard)

	group := r.Group("/api/users")
	group.POST("/:user_id/save-profile", h.saveProfile)
	group.GET("/:user_id/loans", h.loans)
}

type saveProfileRequest struct {
	Phone string `json:"phone" binding:"required"`
}

func (h *DashboardHandler) dashboard(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	dash, err := h.Service.ForUser(c.Request.Context(), userID)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, dash, nil)
}

func (h *DashboardHandler) saveProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	var req saveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	user, err := h.Service.SaveProfile(c.Request.Context(), userID, req.Phone)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, gin.H{"saved": true, "user": userView(user)}, nil)
}

func (h *DashboardHandler) loans(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	loans, err := h.Service.Loans(c.Request.Context(), userID)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, gin.H{"loans": loans}, map[string]any{"count": len(loans)})
}
