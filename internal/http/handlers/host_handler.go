package handlers

import (
	"net/http"

	"github.com/diagnosis/luxstay/internal/booking"
	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/diagnosis/luxstay/internal/http/response"
	"github.com/go-chi/chi/v5"
)

// HostHandler serves the host's view of bookings on their properties.
type HostHandler struct {
	Bookings booking.Manager
}

func NewHostHandler(bookings booking.Manager) *HostHandler {
	return &HostHandler{Bookings: bookings}
}

func (h *HostHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard", h.dashboard)
	r.Patch("/bookings/{id}", h.updateStatus)
	return r
}

func (h *HostHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Bookings.HostDashboard(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, d)
}

func (h *HostHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	var in struct {
		Status string `json:"status" validate:"required,oneof=confirmed canceled"`
	}
	if err := decode(r, &in); err != nil {
		response.FromError(w, r, err)
		return
	}

	b, err := h.Bookings.UpdateStatus(r.Context(), id, domain.BookingStatus(in.Status))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, b)
}
