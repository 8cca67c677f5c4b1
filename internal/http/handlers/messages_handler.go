package handlers

import (
	"net/http"

	"github.com/diagnosis/luxstay/internal/http/response"
	"github.com/diagnosis/luxstay/internal/messaging"
	"github.com/go-chi/chi/v5"
)

type MessageHandler struct {
	Inbox *messaging.Inbox
}

func NewMessageHandler(inbox *messaging.Inbox) *MessageHandler {
	return &MessageHandler{Inbox: inbox}
}

func (h *MessageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.view)
	r.Get("/conversations", h.conversations)
	r.Post("/conversations/{userId}/select", h.selectConversation)
	r.Post("/send", h.send)
	return r
}

func (h *MessageHandler) view(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, r, http.StatusOK, h.Inbox.Snapshot())
}

func (h *MessageHandler) conversations(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Inbox.Load(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, cs)
}

func (h *MessageHandler) selectConversation(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userId")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	thread, err := h.Inbox.Select(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, thread)
}

func (h *MessageHandler) send(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Body string `json:"message_body"`
	}
	if err := decode(r, &in); err != nil {
		response.FromError(w, r, err)
		return
	}
	thread, err := h.Inbox.Send(r.Context(), in.Body)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusCreated, thread)
}
