package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loanflow/internal/cache"
	"loanflow/internal/service"
)

type SessionHandler struct {
	Sessions *service.SessionService
	Chat     *service.ChatService
	Limiter  *cache.RateLimiter
}

func (h *SessionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/sessions")
	group.POST("/start", h.start)
	group.POST("/:id/message", h.Limiter.Middleware(), h.message)
	group.POST("/:id/salary", h.salary)
	group.POST("/:id/finalize", h.finalize)
	group.GET("/:id", h.get)
	group.GET("/:id/messages", h.messages)
	group.GET("/:id/sanction-letter", h.sanctionLetter)
}

type startSessionRequest struct {
	CustomerID          string          `json:"customer_id"`
	Name                string          `json:"name" binding:"required"`
	Email               string          `json:"email"`
	Age                 int             `json:"age"`
	EmploymentType      string          `json:"employment_type"`
	LoanType            string          `json:"loan_type"`
	IncomeMonthly       decimal.Decimal `json:"income_monthly"`
	ExistingEMI         decimal.Decimal `json:"existing_emi"`
	DesiredAmount       decimal.Decimal `json:"desired_amount"`
	DesiredTenureMonths int             `json:"desired_tenure_months" binding:"required"`
	Mood                string          `json:"mood"`
}

func (h *SessionHandler) start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	sess, profile, err := h.Sessions.Start(c.Request.Context(), service.StartSessionInput{
		CustomerID:          req.CustomerID,
		Name:                req.Name,
		Email:               req.Email,
		Age:                 req.Age,
		EmploymentType:      req.EmploymentType,
		LoanType:            req.LoanType,
		IncomeMonthly:       req.IncomeMonthly,
		ExistingEMI:         req.ExistingEMI,
		DesiredAmount:       req.DesiredAmount,
		DesiredTenureMonths: req.DesiredTenureMonths,
		Mood:                req.Mood,
	})
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, gin.H{"session": sess, "profile": profile}, nil)
}

type messageRequest struct {
	Text         string `json:"text" binding:"required"`
	MoodOverride string `json:"mood_override"`
}

func (h *SessionHandler) message(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	result, err := h.Chat.HandleMessage(c.Request.Context(), id, req.Text, req.MoodOverride)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, result, nil)
}

type salaryRequest struct {
	DeclaredSalary decimal.Decimal `json:"declared_salary" binding:"required"`
	SlipPath       string          `json:"slip_path"`
}

func (h *SessionHandler) salary(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req salaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	result, err := h.Chat.ResumeAfterSalary(c.Request.Context(), id, req.DeclaredSalary, req.SlipPath)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, result, nil)
}

func (h *SessionHandler) finalize(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	offer, pdfPath, err := h.Chat.Finalize(c.Request.Context(), id)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, gin.H{"offer": offer, "sanction_letter_path": pdfPath}, nil)
}

func (h *SessionHandler) get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, offer, err := h.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, gin.H{"session": sess, "latest_offer": offer}, nil)
}

func (h *SessionHandler) messages(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	msgs, err := h.Sessions.Messages(c.Request.Context(), id)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, msgs, map[string]any{"count": len(msgs)})
}

func (h *SessionHandler) sanctionLetter(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	path, referenceID, err := h.Chat.RenderSanctionLetter(c.Request.Context(), id)
	if err != nil {
		svcError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sanction_`+referenceID+`.pdf"`)
	c.File(path)
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid session id", nil)
		return uuid.Nil, false
	}
	return id, true
}
