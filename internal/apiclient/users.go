package apiclient

import (
	"context"
	"net/http"

	"github.com/diagnosis/luxstay/internal/domain"
)

func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.sendJSON(ctx, call{
		op:     "users.login",
		method: http.MethodPost,
		path:   "/api/users/login/",
		body:   req,
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.sendJSON(ctx, call{
		op:     "users.register",
		method: http.MethodPost,
		path:   "/api/users/register/",
		body:   req,
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken exchanges a refresh token for a new access token. Rotated
// refresh tokens are returned when the service issues them.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*domain.TokenPair, error) {
	var out domain.TokenPair
	err := c.sendJSON(ctx, call{
		op:     "users.token_refresh",
		method: http.MethodPost,
		path:   "/api/users/token/refresh/",
		body:   map[string]string{"refresh": refresh},
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the current user. A non-empty token is used instead of
// the TokenSource; the OAuth path needs this before the session is stored.
func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	err := c.sendJSON(ctx, call{
		op:     "users.profile",
		method: http.MethodGet,
		path:   "/api/users/profile/",
		token:  token,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
