package gormrepository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"loanflow/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- users -------------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, item *models.User) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateUser(ctx context.Context, item *models.User) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- customer registry -------------------------------------------------------

func (s *Store) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Customer
	err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Customer
	if err := s.db.WithContext(ctx).Order("customer_id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertCustomer(ctx context.Context, item *models.Customer) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}},
		UpdateAll: true,
	}).Create(item).Error
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Customer{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// --- sessions ----------------------------------------------------------------

func (s *Store) CreateSession(ctx context.Context, item *models.LoanSession) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.LoanSession, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.LoanSession
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateSession(ctx context.Context, item *models.LoanSession) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) ListSessions(ctx context.Context) ([]models.LoanSession, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.LoanSession
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ExpireAwaitingSalarySessions(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&models.LoanSession{}).
		Where("status = ?", models.SessionAwaitingSalary).
		Where("updated_at < ?", before).
		Update("status", models.SessionRejected)
	return res.RowsAffected, res.Error
}

// --- applicant profiles ------------------------------------------------------

func (s *Store) CreateProfile(ctx context.Context, item *models.ApplicantProfile) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetProfileBySession(ctx context.Context, sessionID uuid.UUID) (*models.ApplicantProfile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ApplicantProfile
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetLatestProfileByCustomer(ctx context.Context, customerID string) (*models.ApplicantProfile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ApplicantProfile
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateProfile(ctx context.Context, item *models.ApplicantProfile) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

// --- messages ----------------------------------------------------------------

func (s *Store) InsertMessage(ctx context.Context, item *models.Message) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Message
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- offers ------------------------------------------------------------------

func (s *Store) InsertOffer(ctx context.Context, item *models.Offer) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetLatestOfferBySession(ctx context.Context, sessionID uuid.UUID) (*models.Offer, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Offer
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListOffersByCustomer(ctx context.Context, customerID string) ([]models.Offer, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Offer
	err := s.db.WithContext(ctx).
		Joins("JOIN loan_sessions ON loan_sessions.id = offers.session_id").
		Where("loan_sessions.customer_id = ?", customerID).
		Order("offers.created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- agent logs --------------------------------------------------------------

func (s *Store) InsertAgentLog(ctx context.Context, item *models.AgentLog) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListAgentLogs(ctx context.Context, sessionID uuid.UUID) ([]models.AgentLog, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.AgentLog
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteAgentLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.AgentLog{})
	return res.RowsAffected, res.Error
}
