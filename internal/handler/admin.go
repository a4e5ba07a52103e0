package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loanflow/internal/mailer"
	"loanflow/internal/repository"
	"loanflow/internal/service"
)

// AdminHandler exposes the operator surface: session inventory, audit
// logs, and debugging helpers. Deployments front it with network
// policy, so no extra auth layer here.
type AdminHandler struct {
	Repo   repository.Repository
	Chat   *service.ChatService
	Mailer *mailer.Mailer
}

func (h *AdminHandler) Register(r *gin.Engine) {
	group := r.Group("/api/admin")
	group.GET("/sessions", h.listSessions)
	group.GET("/sessions/:id/agent-log", h.agentLogs)
	group.GET("/sessions/:id/last-log", h.lastLog)
	group.POST("/sessions/:id/rerun-agents", h.rerunAgents)
	group.POST("/smtp/test", h.smtpTest)
}

func (h *AdminHandler) listSessions(c *gin.Context) {
	sessions, err := h.Repo.ListSessions(c.Request.Context())
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, sessions, map[string]any{"count": len(sessions)})
}

func (h *AdminHandler) agentLogs(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	logs, err := h.Repo.ListAgentLogs(c.Request.Context(), id)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, logs, map[string]any{"count": len(logs)})
}

func (h *AdminHandler) lastLog(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	logs, err := h.Repo.ListAgentLogs(c.Request.Context(), id)
	if err != nil {
		svcError(c, err)
		return
	}
	if len(logs) == 0 {
		Error(c, http.StatusNotFound, "no logs", nil)
		return
	}
	Ok(c, logs[len(logs)-1], nil)
}

type rerunAgentsRequest struct {
	Agents []string `json:"agents" binding:"required"`
}

func (h *AdminHandler) rerunAgents(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req rerunAgentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	results, err := h.Chat.RerunAgents(c.Request.Context(), id, req.Agents)
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, results, nil)
}

type smtpTestRequest struct {
	ToEmail string `json:"to_email" binding:"required,email"`
}

func (h *AdminHandler) smtpTest(c *gin.Context) {
	var req smtpTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	if err := h.Mailer.Send(req.ToEmail, "Loanflow SMTP test", "This is a test email from the loanflow backend"); err != nil {
		Ok(c, gin.H{"sent": false, "error": err.Error()}, nil)
		return
	}
	Ok(c, gin.H{"sent": true}, nil)
}
