package handlers

import (
	"net/http"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/diagnosis/luxstay/internal/http/response"
	"github.com/diagnosis/luxstay/internal/session"
	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	Sessions *session.Service
}

func NewSessionHandler(sessions *session.Service) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

// Routes mounts the session endpoints. The login and register posts are
// grouped so a limiter can wrap them.
func (h *SessionHandler) Routes(limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Post("/login", h.login)
		r.Post("/register", h.register)
	})
	r.Get("/oauth/callback", h.oauthCallback)
	r.Post("/refresh", h.refresh)
	r.Get("/", h.current)
	r.Delete("/", h.logout)
	return r
}

// sessionView never exposes the tokens themselves.
type sessionView struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

func viewOf(s domain.Session) sessionView {
	return sessionView{Authenticated: s.Authenticated(), User: s.User}
}

func (h *SessionHandler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := decode(r, &in); err != nil {
		response.FromError(w, r, err)
		return
	}
	s, err := h.Sessions.Login(r.Context(), domain.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, viewOf(s))
}

func (h *SessionHandler) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email           string `json:"email" validate:"required,email"`
		Password        string `json:"password" validate:"required,min=8"`
		PasswordConfirm string `json:"password_confirm" validate:"required"`
		FirstName       string `json:"first_name" validate:"required"`
		LastName        string `json:"last_name" validate:"required"`
		PhoneNumber     string `json:"phone_number"`
		Role            string `json:"role" validate:"omitempty,oneof=guest host"`
	}
	if err := decode(r, &in); err != nil {
		response.FromError(w, r, err)
		return
	}
	s, err := h.Sessions.Register(r.Context(), domain.RegisterRequest{
		Email:           in.Email,
		Password:        in.Password,
		PasswordConfirm: in.PasswordConfirm,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		PhoneNumber:     in.PhoneNumber,
		Role:            in.Role,
	})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusCreated, viewOf(s))
}

func (h *SessionHandler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s, err := h.Sessions.CompleteOAuth(r.Context(), q.Get("access"), q.Get("refresh"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, viewOf(s))
}

func (h *SessionHandler) refresh(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Refresh(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, viewOf(s))
}

func (h *SessionHandler) current(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, r, http.StatusOK, viewOf(h.Sessions.Holder().Current()))
}

func (h *SessionHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(r.Context()); err != nil {
		response.FromError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
