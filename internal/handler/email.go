package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"loanflow/internal/mailer"
)

type EmailHandler struct {
	Mailer *mailer.Mailer
}

func (h *EmailHandler) Register(r *gin.Engine) {
	r.POST("/api/email/loan-confirmation", h.loanConfirmation)
}

type loanConfirmationRequest struct {
	Name         string          `json:"name" binding:"required"`
	Age          int             `json:"age"`
	LoanAmount   decimal.Decimal `json:"loan_amount" binding:"required"`
	EMI          decimal.Decimal `json:"emi" binding:"required"`
	InterestRate decimal.Decimal `json:"interest_rate" binding:"required"`
	Email        string          `json:"email" binding:"required,email"`
}

func (h *EmailHandler) loanConfirmation(c *gin.Context) {
	var req loanConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}

	body := fmt.Sprintf(`Dear %s,

We are pleased to confirm the details of your loan application.

Loan Details:
- Name: %s
- Age: %d
- Loan Amount: %s
- EMI: %s
- Interest Rate: %s%% per annum

Your loan has been successfully processed.

If you have any questions, feel free to reply to this email.

Warm regards,
Loanflow Team
`, req.Name, req.Name, req.Age,
		req.LoanAmount.StringFixed(2), req.EMI.StringFixed(2), req.InterestRate.String())

	if err := h.Mailer.Send(req.Email, "Loan Confirmation - Loanflow", body); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			Error(c, http.StatusServiceUnavailable, "smtp not configured", nil)
			return
		}
		Error(c, http.StatusBadGateway, "failed to send email", nil)
		return
	}
	Ok(c, gin.H{"sent": true, "to": req.Email}, nil)
}
