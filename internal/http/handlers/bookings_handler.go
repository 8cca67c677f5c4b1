package handlers

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/diagnosis/luxstay/internal/booking"
	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/diagnosis/luxstay/internal/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type BookingHandler struct {
	Bookings booking.Manager
}

func NewBookingHandler(bookings booking.Manager) *BookingHandler {
	return &BookingHandler{Bookings: bookings}
}

func (h *BookingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/quote", h.quote)
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/cancel", h.cancel)
	r.Post("/{id}/pay", h.pay)
	return r
}

type bookingInput struct {
	PropertyID uuid.UUID  `json:"property_id" validate:"required"`
	StartDate  civil.Date `json:"start_date"`
	EndDate    civil.Date `json:"end_date"`
	Guests     int        `json:"guests"`
}

func (in bookingInput) request() domain.CreateBookingRequest {
	return domain.CreateBookingRequest{
		PropertyID: in.PropertyID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Guests:     in.Guests,
	}
}

func (h *BookingHandler) quote(w http.ResponseWriter, r *http.Request) {
	var in bookingInput
	if err := decode(r, &in); err != nil {
		response.FromError(w, r, err)
		return
	}
	q, err := h.Bookings.Quote(r.Context(), in.request())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, q)
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	var in bookingInput
	if err := decode(r, &in); err != nil {
		response.FromError(w, r, err)
		return
	}
	b, err := h.Bookings.Create(r.Context(), in.request())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusCreated, b)
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	bs, err := h.Bookings.List(r.Context(), opts)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, bs)
}

func (h *BookingHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	b, err := h.Bookings.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, b)
}

func (h *BookingHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	var in struct {
		Confirm bool `json:"confirm"`
	}
	if err := decode(r, &in); err != nil {
		response.FromError(w, r, err)
		return
	}

	b, err := h.Bookings.Cancel(r.Context(), id, booking.Answered(in.Confirm))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, b)
}

func (h *BookingHandler) pay(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	var in struct {
		Method string `json:"payment_method" validate:"omitempty,oneof=credit_card paypal stripe"`
	}
	if err := decode(r, &in); err != nil {
		response.FromError(w, r, err)
		return
	}
	method, _ := domain.ParsePaymentMethod(in.Method)

	b, err := h.Bookings.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	result, err := h.Bookings.Pay(r.Context(), b, method)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, result)
}
