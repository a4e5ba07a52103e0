package service

import (
	"context"
	"encoding/json"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"loanflow/internal/models"
	"loanflow/internal/repository"
)

// RegistryService answers customer lookups for the pipeline and owns
// the seed-file import. It satisfies agent.CustomerRegistry.
type RegistryService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (s *RegistryService) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	return s.Repo.GetCustomer(ctx, customerID)
}

func (s *RegistryService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.Repo.ListCustomers(ctx)
}

// CreditProfile is the slice of the registry record exposed on the
// credit endpoint.
type CreditProfile struct {
	CustomerID       string          `json:"customer_id"`
	CreditScore      int             `json:"credit_score"`
	PreApprovedLimit decimal.Decimal `json:"pre_approved_limit"`
}

func (s *RegistryService) Credit(ctx context.Context, customerID string) (*CreditProfile, error) {
	cust, err := s.Repo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return nil, ErrNotFound
	}
	return &CreditProfile{
		CustomerID:       cust.CustomerID,
		CreditScore:      cust.CreditScore,
		PreApprovedLimit: cust.PreApprovedLimit,
	}, nil
}

// LatestOffer returns the newest offer across the customer's sessions.
func (s *RegistryService) LatestOffer(ctx context.Context, customerID string) (*models.Offer, error) {
	offers, err := s.Repo.ListOffersByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, ErrNotFound
	}
	latest := offers[0]
	for _, o := range offers[1:] {
		if o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	return &latest, nil
}

type seedCustomer struct {
	CustomerID       string  `json:"customer_id"`
	Name             string  `json:"name"`
	City             string  `json:"city"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	Address          string  `json:"address"`
	CreditScore      int     `json:"credit_score"`
	PreApprovedLimit float64 `json:"pre_approved_limit"`
	IncomeMonthly    float64 `json:"income_monthly"`
	ExistingEMI      float64 `json:"existing_emi"`
}

// SeedFromFile imports registry customers from a JSON array. The seed
// only runs against an empty table so operator edits survive restarts.
func (s *RegistryService) SeedFromFile(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	n, err := s.Repo.CountCustomers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if s.Logger != nil {
				s.Logger.Warn("registry seed file missing", zap.String("path", path))
			}
			return nil
		}
		return err
	}

	var seeds []seedCustomer
	if err := json.Unmarshal(data, &seeds); err != nil {
		return err
	}

	for _, sc := range seeds {
		cust := models.Customer{
			CustomerID:       sc.CustomerID,
			Name:             sc.Name,
			City:             sc.City,
			Email:            sc.Email,
			Phone:            sc.Phone,
			Address:          sc.Address,
			CreditScore:      sc.CreditScore,
			PreApprovedLimit: decimal.NewFromFloat(sc.PreApprovedLimit),
			IncomeMonthly:    decimal.NewFromFloat(sc.IncomeMonthly),
			ExistingEMI:      decimal.NewFromFloat(sc.ExistingEMI),
		}
		if err := s.Repo.UpsertCustomer(ctx, &cust); err != nil {
			return err
		}
	}

	if s.Logger != nil {
		s.Logger.Info("registry seeded", zap.Int("customers", len(seeds)), zap.String("path", path))
	}
	return nil
}
