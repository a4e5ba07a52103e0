package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"loanflow/internal/agent"
	"loanflow/internal/models"
	"loanflow/internal/pdf"
	memoryrepository "loanflow/internal/repository/memory"
	"loanflow/internal/service"
)

type noModel struct{}

func (noModel) Configured() bool { return false }

func (noModel) Complete(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("not configured")
}

func newTestRouter(t *testing.T) (*gin.Engine, *memoryrepository.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memoryrepository.New()
	if err := repo.UpsertCustomer(context.Background(), &models.Customer{
		CustomerID:       "CUST001",
		Name:             "Asha Verma",
		Phone:            "9999999999",
		Address:          "12 MG Road",
		CreditScore:      750,
		PreApprovedLimit: decimal.NewFromInt(500000),
		IncomeMonthly:    decimal.NewFromInt(60000),
		ExistingEMI:      decimal.NewFromInt(5000),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	registry := &service.RegistryService{Repo: repo, Logger: zap.NewNop()}
	chat := &service.ChatService{
		Repo:        repo,
		Pipeline:    &agent.Pipeline{Registry: registry, Logger: zap.NewNop()},
		Model:       noModel{},
		Logger:      zap.NewNop(),
		UploadsRoot: t.TempDir(),
		WritePDF:    func(string, pdf.SanctionLetter) error { return nil },
	}
	sessions := &service.SessionService{Repo: repo, Logger: zap.NewNop()}

	r := gin.New()
	(&SessionHandler{Sessions: sessions, Chat: chat}).Register(r)
	(&CustomerHandler{Registry: registry}).Register(r)
	return r, repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStartAndMessageFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/sessions/start", map[string]any{
		"customer_id":           "CUST001",
		"name":                  "Asha Verma",
		"income_monthly":        60000,
		"existing_emi":          5000,
		"desired_amount":        100000,
		"desired_tenure_months": 24,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d body = %s", w.Code, w.Body.String())
	}

	var startResp struct {
		Data struct {
			Session struct {
				ID string `json:"ID"`
			} `json:"session"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &startResp); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if startResp.Data.Session.ID == "" {
		t.Fatalf("missing session id in %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/sessions/"+startResp.Data.Session.ID+"/message", map[string]any{
		"text": "I need a loan of 100000",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("message status = %d body = %s", w.Code, w.Body.String())
	}

	var msgResp struct {
		Data struct {
			Reply struct {
				IsFinalOffer bool `json:"is_final_offer"`
				FinalOffer   struct {
					MonthlyEMI string `json:"monthly_emi"`
				} `json:"final_offer"`
			} `json:"reply"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &msgResp); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if !msgResp.Data.Reply.IsFinalOffer {
		t.Fatalf("expected final offer, body = %s", w.Body.String())
	}
	if msgResp.Data.Reply.FinalOffer.MonthlyEMI != "5291.67" {
		t.Fatalf("EMI = %s", msgResp.Data.Reply.FinalOffer.MonthlyEMI)
	}
}

func TestMessageUnknownSession(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/sessions/0b2f1c3a-0000-0000-0000-000000000000/message", map[string]any{"text": "hi"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestMessageInvalidSessionID(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/sessions/not-a-uuid/message", map[string]any{"text": "hi"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCustomerEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/customers/CUST001/credit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("credit status = %d", w.Code)
	}
	var creditResp struct {
		Data struct {
			CreditScore int `json:"credit_score"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &creditResp); err != nil {
		t.Fatalf("decode credit: %v", err)
	}
	if creditResp.Data.CreditScore != 750 {
		t.Fatalf("credit score = %d", creditResp.Data.CreditScore)
	}

	w = doJSON(t, r, http.MethodGet, "/api/customers/MISSING", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing customer status = %d", w.Code)
	}
}
