package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/diagnosis/luxstay/pkg/events"
	"github.com/diagnosis/luxstay/pkg/logger"
	"github.com/google/uuid"
)

type API interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
	RefreshToken(ctx context.Context, refresh string) (*domain.TokenPair, error)
	Profile(ctx context.Context, token string) (*domain.User, error)
}

// Service runs the login paths and writes their result into the Holder.
type Service struct {
	api       API
	holder    *Holder
	publisher events.Publisher

	mu        sync.Mutex
	listeners []func()
}

func NewService(api API, holder *Holder, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{api: api, holder: holder, publisher: publisher}
}

func (s *Service) Holder() *Holder { return s.holder }

// OnChange registers fn to run whenever the signed-in user changes: a new
// session starts, or the current one ends or is failed closed. A token
// refresh for the same user does not count.
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) changed() {
	s.mu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return domain.Session{}, domain.NewValidationError("email", "email is required")
	}
	if req.Password == "" {
		return domain.Session{}, domain.NewValidationError("password", "password is required")
	}

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return domain.Session{}, fmt.Errorf("login failed: %w", err)
	}
	return s.start(ctx, resp, "login")
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return domain.Session{}, domain.NewValidationError("email", "email is required")
	}
	if req.Password == "" {
		return domain.Session{}, domain.NewValidationError("password", "password is required")
	}
	if req.Password != req.PasswordConfirm {
		return domain.Session{}, domain.NewValidationError("password_confirm", "passwords do not match")
	}

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return domain.Session{}, fmt.Errorf("registration failed: %w", err)
	}
	return s.start(ctx, resp, "register")
}

func (s *Service) start(ctx context.Context, resp *domain.AuthResponse, method string) (domain.Session, error) {
	if resp.Tokens.Access == "" {
		return domain.Session{}, fmt.Errorf("%w: service returned no access token", domain.ErrAuth)
	}
	user := resp.User
	sess := domain.Session{
		AccessToken:  resp.Tokens.Access,
		RefreshToken: resp.Tokens.Refresh,
		User:         &user,
	}
	if err := s.holder.set(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	s.changed()
	s.announce(ctx, events.SessionStarted, user.ID, method)
	return s.holder.Current(), nil
}

// CompleteOAuth finishes the redirect login. Both credentials must be
// present and the profile must load with them, otherwise the session is
// cleared and an auth error returned.
func (s *Service) CompleteOAuth(ctx context.Context, access, refresh string) (domain.Session, error) {
	if access == "" || refresh == "" {
		s.failClosed(ctx)
		return domain.Session{}, fmt.Errorf("%w: oauth callback is missing credentials", domain.ErrAuth)
	}

	user, err := s.api.Profile(ctx, access)
	if err != nil {
		s.failClosed(ctx)
		return domain.Session{}, fmt.Errorf("%w: oauth profile lookup failed: %v", domain.ErrAuth, err)
	}

	sess := domain.Session{AccessToken: access, RefreshToken: refresh, User: user}
	if err := s.holder.set(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	s.changed()
	s.announce(ctx, events.SessionStarted, user.ID, "oauth")
	return s.holder.Current(), nil
}

// Refresh exchanges the refresh token for a new access token. A refresh
// rejected by the service ends the session.
func (s *Service) Refresh(ctx context.Context) (domain.Session, error) {
	current := s.holder.Current()
	if current.RefreshToken == "" {
		return domain.Session{}, fmt.Errorf("%w: no refresh token", domain.ErrAuth)
	}

	pair, err := s.api.RefreshToken(ctx, current.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) || errors.Is(err, domain.ErrRejected) {
			s.failClosed(ctx)
			return domain.Session{}, fmt.Errorf("%w: refresh rejected: %v", domain.ErrAuth, err)
		}
		return domain.Session{}, fmt.Errorf("refresh failed: %w", err)
	}

	current.AccessToken = pair.Access
	if pair.Refresh != "" {
		current.RefreshToken = pair.Refresh
	}
	if err := s.holder.set(ctx, current); err != nil {
		return domain.Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	return s.holder.Current(), nil
}

// Restore loads the stored session and announces it when one was found.
func (s *Service) Restore(ctx context.Context) (domain.Session, error) {
	sess, err := s.holder.Restore(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to restore session: %w", err)
	}
	if sess.AccessToken != "" {
		id, _ := s.holder.Viewer()
		s.announce(ctx, events.SessionStarted, id, "restore")
	}
	return sess, nil
}

func (s *Service) Logout(ctx context.Context) error {
	id, _ := s.holder.Viewer()
	err := s.holder.Clear(ctx)
	s.changed()
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.announce(ctx, events.SessionEnded, id, "logout")
	return nil
}

func (s *Service) failClosed(ctx context.Context) {
	if err := s.holder.Clear(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to clear session", "error", err)
	}
	s.changed()
}

func (s *Service) announce(ctx context.Context, subject string, userID uuid.UUID, method string) {
	evt := events.SessionEvent{Method: method, At: time.Now()}
	if userID != uuid.Nil {
		evt.UserID = &userID
	}
	if err := s.publisher.Publish(ctx, subject, evt); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
