package mocks

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/adapters/persistence/repositories"
)

// MockSessionRepository implements repositories.SessionRepository for testing
type MockSessionRepository struct {
	CreateFunc            func(ctx context.Context, session *models.Session) error
	GetByKeyFunc          func(ctx context.Context, key string) (*models.Session, error)
	UpdateFunc            func(ctx context.Context, session *models.Session) error
	RevokeByKeyFunc       func(ctx context.Context, key string) error
	RevokeAllByUserIDFunc func(ctx context.Context, userID uint) error
	DeleteExpiredFunc     func(ctx context.Context) error
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) GetByKey(ctx context.Context, key string) (*models.Session, error) {
	if m.GetByKeyFunc != nil {
		return m.GetByKeyFunc(ctx, key)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockSessionRepository) Update(ctx context.Context, session *models.Session) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) RevokeByKey(ctx context.Context, key string) error {
	if m.RevokeByKeyFunc != nil {
		return m.RevokeByKeyFunc(ctx, key)
	}
	return nil
}

func (m *MockSessionRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	if m.RevokeAllByUserIDFunc != nil {
		return m.RevokeAllByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) error {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return nil
}

// Compile-time interface compliance verification
var _ repositories.SessionRepository = (*MockSessionRepository)(nil)

// InMemorySessionRepository is a stateful fake for flows that write a session
// and read it back, such as login followed by hydrate or a role switch.
type InMemorySessionRepository struct {
	mu       sync.Mutex
	nextID   uint
	sessions map[string]*models.Session
}

// NewInMemorySessionRepository creates an empty in-memory session store
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{sessions: make(map[string]*models.Session)}
}

func (r *InMemorySessionRepository) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	session.ID = r.nextID
	clone := *session
	r.sessions[session.Key] = &clone
	return nil
}

func (r *InMemorySessionRepository) GetByKey(ctx context.Context, key string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok || s.RevokedAt != nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *InMemorySessionRepository) Update(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.Key] = &clone
	return nil
}

func (r *InMemorySessionRepository) RevokeByKey(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok && s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (r *InMemorySessionRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, s := range r.sessions {
		if s.UserID != nil && *s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r *InMemorySessionRepository) DeleteExpired(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for key, s := range r.sessions {
		if s.ExpiresAt.Before(now) {
			delete(r.sessions, key)
		}
	}
	return nil
}

// Compile-time interface compliance verification
var _ repositories.SessionRepository = (*InMemorySessionRepository)(nil)
