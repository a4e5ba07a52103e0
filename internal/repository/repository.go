package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"loanflow/internal/models"
)

// Repository is the store contract the services and the pipeline depend on.
// Lookups return (nil, nil) when the row does not exist; errors mean the
// store itself failed.
type Repository interface {
	// Users (auth accounts).
	CreateUser(ctx context.Context, item *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, item *models.User) error

	// Customer registry. The pipeline reads through GetCustomer only.
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpsertCustomer(ctx context.Context, item *models.Customer) error
	CountCustomers(ctx context.Context) (int64, error)

	// Sessions.
	CreateSession(ctx context.Context, item *models.LoanSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.LoanSession, error)
	UpdateSession(ctx context.Context, item *models.LoanSession) error
	ListSessions(ctx context.Context) ([]models.LoanSession, error)
	ExpireAwaitingSalarySessions(ctx context.Context, before time.Time) (int64, error)

	// Applicant profiles.
	CreateProfile(ctx context.Context, item *models.ApplicantProfile) error
	GetProfileBySession(ctx context.Context, sessionID uuid.UUID) (*models.ApplicantProfile, error)
	GetLatestProfileByCustomer(ctx context.Context, customerID string) (*models.ApplicantProfile, error)
	UpdateProfile(ctx context.Context, item *models.ApplicantProfile) error

	// Conversation messages.
	InsertMessage(ctx context.Context, item *models.Message) error
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error)

	// Offers.
	InsertOffer(ctx context.Context, item *models.Offer) error
	GetLatestOfferBySession(ctx context.Context, sessionID uuid.UUID) (*models.Offer, error)
	ListOffersByCustomer(ctx context.Context, customerID string) ([]models.Offer, error)

	// Agent audit logs.
	InsertAgentLog(ctx context.Context, item *models.AgentLog) error
	ListAgentLogs(ctx context.Context, sessionID uuid.UUID) ([]models.AgentLog, error)
	DeleteAgentLogsBefore(ctx context.Context, before time.Time) (int64, error)
}
