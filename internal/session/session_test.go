package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/diagnosis/luxstay/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ---------- Mocks ----------

type mockAPI struct {
	user       domain.User
	tokens     domain.TokenPair
	loginErr   error
	profileErr error
	refreshErr error
	refreshed  domain.TokenPair
	profileTok string
}

func (m *mockAPI) Login(context.Context, domain.LoginRequest) (*domain.AuthResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &domain.AuthResponse{User: m.user, Tokens: m.tokens}, nil
}

func (m *mockAPI) Register(context.Context, domain.RegisterRequest) (*domain.AuthResponse, error) {
	return &domain.AuthResponse{User: m.user, Tokens: m.tokens}, nil
}

func (m *mockAPI) RefreshToken(context.Context, string) (*domain.TokenPair, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return &m.refreshed, nil
}

func (m *mockAPI) Profile(_ context.Context, token string) (*domain.User, error) {
	m.profileTok = token
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	u := m.user
	return &u, nil
}

type failingStore struct {
	session.MemoryStore
}

func (f *failingStore) Save(context.Context, *domain.Session) error {
	return errors.New("disk full")
}

// blockingStore holds Save until release is closed.
type blockingStore struct {
	session.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Save(ctx context.Context, s *domain.Session) error {
	b.entered <- struct{}{}
	<-b.release
	return b.Store.Save(ctx, s)
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID.String(),
		"token_type": "access",
	}).SignedString([]byte("not-known-to-the-client"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func newService(api *mockAPI, store session.Store) (*session.Service, *session.Holder) {
	h := session.NewHolder(store)
	return session.NewService(api, h, nil), h
}

// ---------- Tests ----------

func TestLogin_StoresAllThreeValues(t *testing.T) {
	api := &mockAPI{
		user:   domain.User{ID: uuid.New(), Email: "guest@example.com"},
		tokens: domain.TokenPair{Access: "acc", Refresh: "ref"},
	}
	store := session.NewMemoryStore()
	svc, h := newService(api, store)

	s, err := svc.Login(context.Background(), domain.LoginRequest{Email: "guest@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Authenticated() || s.User.ID != api.user.ID {
		t.Fatalf("unexpected session %+v", s)
	}
	if tok, err := h.AccessToken(); err != nil || tok != "acc" {
		t.Errorf("holder token = %q, %v", tok, err)
	}
	stored, _ := store.Load(context.Background())
	if stored.AccessToken != "acc" || stored.RefreshToken != "ref" || stored.User == nil {
		t.Errorf("store not written: %+v", stored)
	}
}

func TestLogin_ValidationAndRejection(t *testing.T) {
	api := &mockAPI{loginErr: domain.ErrAuth}
	svc, h := newService(api, nil)

	if _, err := svc.Login(context.Background(), domain.LoginRequest{Email: " ", Password: "pw"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.c", Password: "bad"}); !errors.Is(err, domain.ErrAuth) {
		t.Errorf("expected auth error, got %v", err)
	}
	if _, err := h.AccessToken(); !errors.Is(err, domain.ErrAuth) {
		t.Error("failed login must not leave a token behind")
	}
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc, _ := newService(&mockAPI{}, nil)
	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: "a@b.c", Password: "secret123", PasswordConfirm: "secret124",
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "password_confirm" {
		t.Fatalf("expected password_confirm validation error, got %v", err)
	}
}

func TestCompleteOAuth_FailsClosedOnMissingCredential(t *testing.T) {
	api := &mockAPI{
		user:   domain.User{ID: uuid.New()},
		tokens: domain.TokenPair{Access: "old", Refresh: "old-ref"},
	}
	svc, h := newService(api, nil)
	if _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct{ access, refresh string }{{"", "r"}, {"a", ""}, {"", ""}} {
		_, err := svc.CompleteOAuth(context.Background(), tc.access, tc.refresh)
		if !errors.Is(err, domain.ErrAuth) {
			t.Errorf("%+v: expected auth error, got %v", tc, err)
		}
		if s := h.Current(); s.AccessToken != "" || s.RefreshToken != "" || s.User != nil {
			t.Errorf("%+v: session not cleared: %+v", tc, s)
		}
	}
	if api.profileTok != "" {
		t.Error("profile must not be fetched without both credentials")
	}
}

func TestCompleteOAuth_ProfileFailureClears(t *testing.T) {
	api := &mockAPI{profileErr: domain.ErrAuth}
	svc, h := newService(api, nil)

	if _, err := svc.CompleteOAuth(context.Background(), "acc", "ref"); !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if h.Current().AccessToken != "" {
		t.Error("session should stay empty")
	}
}

func TestCompleteOAuth_Success(t *testing.T) {
	api := &mockAPI{user: domain.User{ID: uuid.New(), Email: "oauth@example.com"}}
	svc, _ := newService(api, nil)

	s, err := svc.CompleteOAuth(context.Background(), "acc", "ref")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.profileTok != "acc" {
		t.Errorf("profile should use the callback token, got %q", api.profileTok)
	}
	if s.User == nil || s.User.Email != "oauth@example.com" || s.RefreshToken != "ref" {
		t.Errorf("unexpected session %+v", s)
	}
}

func TestLogout_ClearsEverything(t *testing.T) {
	api := &mockAPI{user: domain.User{ID: uuid.New()}, tokens: domain.TokenPair{Access: "a", Refresh: "r"}}
	store := session.NewMemoryStore()
	svc, h := newService(api, store)
	if _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.Viewer(); !errors.Is(err, domain.ErrAuth) {
		t.Errorf("viewer should be gone, got %v", err)
	}
	stored, _ := store.Load(context.Background())
	if stored.AccessToken != "" || stored.RefreshToken != "" || stored.User != nil {
		t.Errorf("store not cleared: %+v", stored)
	}
}

func TestRestore_MissingAccessTokenClearsAll(t *testing.T) {
	store := session.NewMemoryStore()
	_ = store.Save(context.Background(), &domain.Session{RefreshToken: "r", User: &domain.User{ID: uuid.New()}})
	_, h := newService(&mockAPI{}, store)

	s, err := h.Restore(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Authenticated() || s.RefreshToken != "" {
		t.Errorf("expected empty session, got %+v", s)
	}
	stored, _ := store.Load(context.Background())
	if stored.RefreshToken != "" || stored.User != nil {
		t.Errorf("store should be cleared, got %+v", stored)
	}
}

func TestRestore_ViewerFromTokenClaim(t *testing.T) {
	id := uuid.New()
	store := session.NewMemoryStore()
	_ = store.Save(context.Background(), &domain.Session{AccessToken: tokenFor(t, id), RefreshToken: "r"})
	svc, h := newService(&mockAPI{}, store)

	if _, err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := h.Viewer()
	if err != nil || got != id {
		t.Errorf("expected viewer %s from token, got %s %v", id, got, err)
	}
}

func TestRefresh(t *testing.T) {
	api := &mockAPI{
		user:      domain.User{ID: uuid.New()},
		tokens:    domain.TokenPair{Access: "a1", Refresh: "r1"},
		refreshed: domain.TokenPair{Access: "a2"},
	}
	svc, h := newService(api, nil)
	if _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatal(err)
	}

	s, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.AccessToken != "a2" || s.RefreshToken != "r1" || s.User == nil {
		t.Errorf("unexpected refreshed session %+v", s)
	}

	api.refreshErr = domain.ErrAuth
	if _, err := svc.Refresh(context.Background()); !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if h.Current().AccessToken != "" {
		t.Error("rejected refresh should end the session")
	}
}

func TestStoreFailure_LeavesSessionUntouched(t *testing.T) {
	api := &mockAPI{user: domain.User{ID: uuid.New()}, tokens: domain.TokenPair{Access: "a", Refresh: "r"}}
	svc, h := newService(api, &failingStore{})

	if _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.c", Password: "pw"}); err == nil {
		t.Fatal("expected error when the store cannot be written")
	}
	if h.Current().AccessToken != "" {
		t.Error("in-memory session must not change when persisting fails")
	}
}

func TestOnChange_FiresWhenTheUserChanges(t *testing.T) {
	api := &mockAPI{
		user:      domain.User{ID: uuid.New()},
		tokens:    domain.TokenPair{Access: "a1", Refresh: "r1"},
		refreshed: domain.TokenPair{Access: "a2"},
	}
	svc, _ := newService(api, nil)
	changes := 0
	svc.OnChange(func() { changes++ })

	ctx := context.Background()
	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatal(err)
	}
	if changes != 1 {
		t.Fatalf("login: expected 1 change, got %d", changes)
	}

	if _, err := svc.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if changes != 1 {
		t.Errorf("a successful refresh keeps the same user, got %d changes", changes)
	}

	api.refreshErr = domain.ErrAuth
	_, _ = svc.Refresh(ctx)
	if changes != 2 {
		t.Errorf("rejected refresh: expected 2 changes, got %d", changes)
	}

	_, _ = svc.CompleteOAuth(ctx, "only-access", "")
	if changes != 3 {
		t.Errorf("failed oauth: expected 3 changes, got %d", changes)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if changes != 4 {
		t.Errorf("logout: expected 4 changes, got %d", changes)
	}
}

func TestHolder_ReadersDoNotWaitForStore(t *testing.T) {
	api := &mockAPI{user: domain.User{ID: uuid.New()}, tokens: domain.TokenPair{Access: "a", Refresh: "r"}}
	store := &blockingStore{
		Store:   session.NewMemoryStore(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc, h := newService(api, store)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.c", Password: "pw"})
		done <- err
	}()
	<-store.entered

	read := make(chan error, 1)
	go func() {
		_, err := h.AccessToken()
		read <- err
	}()
	select {
	case err := <-read:
		if !errors.Is(err, domain.ErrAuth) {
			t.Errorf("session must not change before the store write completes, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("token read blocked on the store write")
	}

	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if tok, err := h.AccessToken(); err != nil || tok != "a" {
		t.Errorf("expected token a after the write, got %q %v", tok, err)
	}
}
