package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"loanflow/internal/auth"
	"loanflow/internal/service"
)

type AuthHandler struct {
	Service *service.AuthService
	JWT     auth.JWT
}

func (h *AuthHandler) Register(r *gin.Engine) {
	group := r.Group("/api/auth")
	group.POST("/signup", h.signup)
	group.POST("/login", h.login)

	r.GET("/api/me", auth.Middleware(h.JWT), h.me)
}

type signupRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required,min=6"`
	CustomerID string `json:"customer_id"`
}

func (h *AuthHandler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	user, token, err := h.Service.Signup(c.Request.Context(), service.SignupInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   req.Password,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, gin.H{"user": userView(user), "token": token}, nil)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	user, token, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// do not reveal whether the account exists
		Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	Ok(c, gin.H{"user": userView(user), "token": token}, nil)
}

func (h *AuthHandler) me(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "missing claims", nil)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		Error(c, http.StatusUnauthorized, "invalid token subject", nil)
		return
	}
	user, err := h.Service.Me(c.Request.Context(), userID)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, userView(user), nil)
}
