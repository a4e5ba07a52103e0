package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"loanflow/internal/models"
	"loanflow/internal/repository"
)

type SessionService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

type StartSessionInput struct {
	CustomerID          string
	Name                string
	Email               string
	Age                 int
	EmploymentType      string
	LoanType            string
	IncomeMonthly       decimal.Decimal
	ExistingEMI         decimal.Decimal
	DesiredAmount       decimal.Decimal
	DesiredTenureMonths int
	Mood                string
}

// Start opens a conversation: one session row plus the applicant
// profile that every later turn reads.
func (s *SessionService) Start(ctx context.Context, in StartSessionInput) (*models.LoanSession, *models.ApplicantProfile, error) {
	if in.Name == "" || in.DesiredTenureMonths <= 0 || !in.DesiredAmount.IsPositive() {
		return nil, nil, ErrInvalidInput
	}

	sess := models.LoanSession{
		ID:     uuid.New(),
		Status: models.SessionInProgress,
	}
	if in.CustomerID != "" {
		cid := in.CustomerID
		sess.CustomerID = &cid
	}
	if err := s.Repo.CreateSession(ctx, &sess); err != nil {
		return nil, nil, err
	}

	profile := models.ApplicantProfile{
		SessionID:           sess.ID,
		CustomerID:          in.CustomerID,
		Name:                in.Name,
		Email:               in.Email,
		Age:                 in.Age,
		EmploymentType:      in.EmploymentType,
		LoanType:            in.LoanType,
		IncomeMonthly:       in.IncomeMonthly,
		ExistingEMI:         in.ExistingEMI,
		DesiredAmount:       in.DesiredAmount,
		DesiredTenureMonths: in.DesiredTenureMonths,
		Mood:                in.Mood,
	}
	if err := s.Repo.CreateProfile(ctx, &profile); err != nil {
		return nil, nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("session started",
			zap.String("session_id", sess.ID.String()),
			zap.String("customer_id", in.CustomerID))
	}
	return &sess, &profile, nil
}

// Get returns the session with its latest offer, if any.
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*models.LoanSession, *models.Offer, error) {
	sess, err := s.Repo.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		return nil, nil, ErrNotFound
	}
	offer, err := s.Repo.GetLatestOfferBySession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sess, offer, nil
}

func (s *SessionService) Messages(ctx context.Context, id uuid.UUID) ([]models.Message, error) {
	sess, err := s.Repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	return s.Repo.ListMessages(ctx, id)
}
