// Package session holds the signed-in user's credentials and supplies the
// bearer token to every authenticated remote call.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/diagnosis/luxstay/pkg/auth"
	"github.com/diagnosis/luxstay/pkg/logger"
	"github.com/google/uuid"
)

// Holder is the process-wide session. It is never partially updated: the
// store is written first and the in-memory copy replaced only on success.
// Writers are serialized by writeMu so store and memory change in the same
// order; readers only wait for the swap, never for store I/O.
type Holder struct {
	store Store

	writeMu sync.Mutex
	mu      sync.RWMutex
	current domain.Session
}

func NewHolder(store Store) *Holder {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Holder{store: store}
}

// AccessToken implements apiclient.TokenSource.
func (h *Holder) AccessToken() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current.AccessToken == "" {
		return "", domain.ErrAuth
	}
	return h.current.AccessToken, nil
}

// Viewer returns the signed-in user's id. When the cached profile is
// missing it falls back to the user_id claim of the access token.
func (h *Holder) Viewer() (uuid.UUID, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.current.AccessToken == "" {
		return uuid.Nil, domain.ErrAuth
	}
	if h.current.User != nil && h.current.User.ID != uuid.Nil {
		return h.current.User.ID, nil
	}
	claims, err := auth.Inspect(h.current.AccessToken)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: unreadable access token", domain.ErrAuth)
	}
	id, err := claims.Subject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	return id, nil
}

// Current returns a copy of the session.
func (h *Holder) Current() domain.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := h.current
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Restore reads the stored session at startup. A stored session without an
// access token is cleared entirely.
func (h *Holder) Restore(ctx context.Context) (domain.Session, error) {
	stored, err := h.store.Load(ctx)
	if err != nil {
		return domain.Session{}, err
	}

	if stored.AccessToken == "" {
		if err := h.Clear(ctx); err != nil {
			return domain.Session{}, err
		}
		return domain.Session{}, nil
	}

	if claims, err := auth.Inspect(stored.AccessToken); err == nil && claims.Expired(time.Now()) {
		logger.WarnContext(ctx, "Restored access token has expired; refresh required")
	}

	h.writeMu.Lock()
	h.swap(*stored)
	h.writeMu.Unlock()
	return h.Current(), nil
}

func (h *Holder) set(ctx context.Context, s domain.Session) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if err := h.store.Save(ctx, &s); err != nil {
		return err
	}
	h.swap(s)
	return nil
}

// Clear removes all three values from memory and the store. Memory is
// cleared first so no call goes out with a token that is being removed.
func (h *Holder) Clear(ctx context.Context) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	h.swap(domain.Session{})
	return h.store.Clear(ctx)
}

func (h *Holder) swap(s domain.Session) {
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
}
