package memoryrepository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"loanflow/internal/models"
)

// Store is an in-memory Repository used by tests and local runs without a
// database. Not safe to share across processes; fine for single-binary use.
type Store struct {
	mu sync.RWMutex

	users     map[uuid.UUID]models.User
	customers map[string]models.Customer
	sessions  map[uuid.UUID]models.LoanSession
	profiles  map[uuid.UUID]models.ApplicantProfile
	messages  []models.Message
	offers    []models.Offer
	agentLogs []models.AgentLog
}

func New() *Store {
	return &Store{
		users:     map[uuid.UUID]models.User{},
		customers: map[string]models.Customer{},
		sessions:  map[uuid.UUID]models.LoanSession{},
		profiles:  map[uuid.UUID]models.ApplicantProfile{},
	}
}

func (s *Store) CreateUser(_ context.Context, item *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.users[item.ID] = *item
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateUser(_ context.Context, item *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[item.ID] = *item
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		out := u
		return &out, nil
	}
	return nil, nil
}

func (s *Store) GetCustomer(_ context.Context, customerID string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.customers[customerID]; ok {
		out := c
		return &out, nil
	}
	return nil, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) UpsertCustomer(_ context.Context, item *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[item.CustomerID] = *item
	return nil
}

func (s *Store) CountCustomers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.customers)), nil
}

func (s *Store) CreateSession(_ context.Context, item *models.LoanSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	s.sessions[item.ID] = *item
	return nil
}

func (s *Store) GetSession(_ context.Context, id uuid.UUID) (*models.LoanSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[id]; ok {
		out := sess
		return &out, nil
	}
	return nil, nil
}

func (s *Store) UpdateSession(_ context.Context, item *models.LoanSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.UpdatedAt = time.Now().UTC()
	s.sessions[item.ID] = *item
	return nil
}

func (s *Store) ListSessions(_ context.Context) ([]models.LoanSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LoanSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out, nil
}

func (s *Store) ExpireAwaitingSalarySessions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sess := range s.sessions {
		if sess.Status == models.SessionAwaitingSalary && sess.UpdatedAt.Before(before) {
			sess.Status = models.SessionRejected
			s.sessions[id] = sess
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateProfile(_ context.Context, item *models.ApplicantProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.profiles[item.ID] = *item
	return nil
}

func (s *Store) GetProfileBySession(_ context.Context, sessionID uuid.UUID) (*models.ApplicantProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.SessionID == sessionID {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) GetLatestProfileByCustomer(_ context.Context, customerID string) (*models.ApplicantProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.ApplicantProfile
	for _, p := range s.profiles {
		if p.CustomerID != customerID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			cp := p
			latest = &cp
		}
	}
	return latest, nil
}

func (s *Store) UpdateProfile(_ context.Context, item *models.ApplicantProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[item.ID] = *item
	return nil
}

func (s *Store) InsertMessage(_ context.Context, item *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.messages = append(s.messages, *item)
	return nil
}

func (s *Store) ListMessages(_ context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Message
	for _, m := range s.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) InsertOffer(_ context.Context, item *models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.offers = append(s.offers, *item)
	return nil
}

func (s *Store) GetLatestOfferBySession(_ context.Context, sessionID uuid.UUID) (*models.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Offer
	for i := range s.offers {
		o := s.offers[i]
		if o.SessionID != sessionID {
			continue
		}
		if latest == nil || !o.CreatedAt.Before(latest.CreatedAt) {
			cp := o
			latest = &cp
		}
	}
	return latest, nil
}

func (s *Store) ListOffersByCustomer(_ context.Context, customerID string) ([]models.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Offer
	for _, o := range s.offers {
		sess, ok := s.sessions[o.SessionID]
		if !ok || sess.CustomerID == nil || *sess.CustomerID != customerID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Store) InsertAgentLog(_ context.Context, item *models.AgentLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.agentLogs = append(s.agentLogs, *item)
	return nil
}

func (s *Store) ListAgentLogs(_ context.Context, sessionID uuid.UUID) ([]models.AgentLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AgentLog
	for _, l := range s.agentLogs {
		if l.SessionID == sessionID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) DeleteAgentLogsBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.agentLogs[:0]
	var n int64
	for _, l := range s.agentLogs {
		if l.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, l)
	}
	s.agentLogs = kept
	return n, nil
}
