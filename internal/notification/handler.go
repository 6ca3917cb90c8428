package notification

import (
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     service,
	}
}

// ListNotifications handles GET /notifications?recipient=
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	recipient, ok := h.recipient(w, r)
	if !ok {
		return
	}

	notifications, err := h.Service.ListByRecipient(r.Context(), recipient)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, notifications)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	recipient, ok := h.recipient(w, r)
	if !ok {
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), recipient)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UnreadCountResponse{Count: count})
}

func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var dto SendNotificationDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	created, err := h.Service.Send(r.Context(), dto)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.Service.MarkAsRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) recipient(w http.ResponseWriter, r *http.Request) (string, bool) {
	recipient := r.URL.Query().Get("recipient")
	if recipient == "" {
		h.WriteError(w, r, internal.NewValidationFieldError("recipient", "recipient is required", internal.ErrCodeValidationFailed))
		return "", false
	}
	return recipient, true
}
