package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"loanflow/internal/models"
	"loanflow/internal/repository"
)

// DashboardCache is the read-through cache contract, satisfied by
// cache.RedisStore. A nil cache disables caching.
type DashboardCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const defaultDashboardTTL = time.Minute

type DashboardService struct {
	Repo     repository.Repository
	Cache    DashboardCache
	CacheTTL time.Duration
}

type CuratedOffer struct {
	LoanType     string  `json:"loan_type"`
	Amount       int     `json:"amount"`
	Interest     float64 `json:"interest"`
	TenureMonths int     `json:"tenure_months"`
}

type Dashboard struct {
	Greeting        string                   `json:"greeting"`
	CreditScore     *int                     `json:"credit_score,omitempty"`
	Profile         *models.ApplicantProfile `json:"profile,omitempty"`
	SanctionedLoans []models.Offer           `json:"sanctioned_loans"`
	CuratedOffers   []CuratedOffer           `json:"curated_offers"`
}

var curatedOffers = []CuratedOffer{
	{LoanType: "Car Loan", Amount: 300000, Interest: 12.5, TenureMonths: 36},
	{LoanType: "Personal Loan", Amount: 150000, Interest: 14.5, TenureMonths: 18},
	{LoanType: "Education Loan", Amount: 500000, Interest: 9.5, TenureMonths: 60},
}

func (s *DashboardService) ForUser(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	key := dashboardKey(userID)
	if s.Cache != nil {
		if b, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
			var cached Dashboard
			if json.Unmarshal(b, &cached) == nil {
				return &cached, nil
			}
		}
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	out := &Dashboard{
		Greeting:        "Hi " + user.Name,
		SanctionedLoans: []models.Offer{},
		CuratedOffers:   curatedOffers,
	}

	if user.CustomerID != "" {
		cust, err := s.Repo.GetCustomer(ctx, user.CustomerID)
		if err != nil {
			return nil, err
		}
		if cust != nil {
			score := cust.CreditScore
			out.CreditScore = &score
		}

		profile, err := s.Repo.GetLatestProfileByCustomer(ctx, user.CustomerID)
		if err != nil {
			return nil, err
		}
		out.Profile = profile

		offers, err := s.Repo.ListOffersByCustomer(ctx, user.CustomerID)
		if err != nil {
			return nil, err
		}
		for _, o := range offers {
			if o.Status == models.OfferApproved {
				out.SanctionedLoans = append(out.SanctionedLoans, o)
			}
		}
	}

	if s.Cache != nil {
		if b, err := json.Marshal(out); err == nil {
			ttl := s.CacheTTL
			if ttl <= 0 {
				ttl = defaultDashboardTTL
			}
			// a cache write failure only costs the next read a db trip
			_ = s.Cache.Set(ctx, key, b, ttl)
		}
	}
	return out, nil
}

// SaveProfile updates the contact phone on the account and drops the
// cached dashboard so the next read reflects it.
func (s *DashboardService) SaveProfile(ctx context.Context, userID uuid.UUID, phone string) (*models.User, error) {
	if phone == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	user.Phone = phone
	if err := s.Repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	if s.Cache != nil {
		_ = s.Cache.Delete(ctx, dashboardKey(userID))
	}
	return user, nil
}

// Loans lists every offer, approved or rejected, recorded for the
// customer linked to the account.
func (s *DashboardService) Loans(ctx context.Context, userID uuid.UUID) ([]models.Offer, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if user.CustomerID == "" {
		return []models.Offer{}, nil
	}
	offers, err := s.Repo.ListOffersByCustomer(ctx, user.CustomerID)
	if err != nil {
		return nil, err
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	return offers, nil
}

func dashboardKey(userID uuid.UUID) string {
	return "dashboard:" + userID.String()
}
