package middleware

import (
	"context"
	"net/http"

	"github.com/diagnosis/luxstay/internal/http/response"
	"github.com/diagnosis/luxstay/pkg/logger"
	"github.com/google/uuid"
)

// Viewer identifies the signed-in user of the local session.
type Viewer interface {
	Viewer() (uuid.UUID, error)
}

// RequireSession rejects requests while nobody is signed in and tags the
// request context with the viewer's id for logging.
func RequireSession(v Viewer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Viewer()
			if err != nil {
				response.Unauthorized(w, r, "sign in required")
				return
			}
			ctx := context.WithValue(r.Context(), logger.UserIDKey, id.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
