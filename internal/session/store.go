package session

import (
	"context"
	"sync"

	"github.com/diagnosis/luxstay/internal/domain"
)

// Store persists the session across restarts. Save and Clear write all
// three values together; Load returns an empty session when nothing is
// stored.
type Store interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Clear(ctx context.Context) error
}

type MemoryStore struct {
	mu   sync.Mutex
	sess domain.Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(context.Context) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sess
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = *s
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = domain.Session{}
	return nil
}
