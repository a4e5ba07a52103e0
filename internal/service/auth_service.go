package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"loanflow/internal/auth"
	"loanflow/internal/models"
	"loanflow/internal/repository"
)

type AuthService struct {
	Repo   repository.Repository
	JWT    auth.JWT
	Logger *zap.Logger
}

type SignupInput struct {
	Name       string
	Email      string
	Phone      string
	Password   string
	CustomerID string
}

type TokenResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, *TokenResult, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, nil, ErrInvalidInput
	}

	existing, err := s.Repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrConflict
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	user := models.User{
		CustomerID:   in.CustomerID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return nil, nil, err
	}

	if in.CustomerID != "" {
		if err := s.registerCustomer(ctx, in); err != nil {
			return nil, nil, err
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user signed up", zap.String("user_id", user.ID.String()))
	}
	return &user, token, nil
}

// registerCustomer makes sure the registry knows the customer id claimed
// at signup. A record seeded earlier wins; a new id gets the entry-level
// score and a zero pre-approved limit, so underwriting treats the
// applicant as a known customer rather than rejecting with not-found.
func (s *AuthService) registerCustomer(ctx context.Context, in SignupInput) error {
	existing, err := s.Repo.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	cust := models.Customer{
		CustomerID:  in.CustomerID,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		CreditScore: 600,
	}
	if err := s.Repo.UpsertCustomer(ctx, &cust); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("registry record created at signup", zap.String("customer_id", in.CustomerID))
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenResult, error) {
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrNotFound
	}
	token, err := s.issueToken(*user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *AuthService) issueToken(user models.User) (*TokenResult, error) {
	token, expiresAt, err := s.JWT.Sign(auth.Claims{
		UserID:     user.ID.String(),
		CustomerID: user.CustomerID,
		Email:      user.Email,
	})
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}
