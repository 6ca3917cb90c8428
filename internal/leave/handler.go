package leave

import (
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/go-chi/chi"
)

const roleSupervisor = "supervisor"

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

func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.List(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, requests)
}

func (h *Handler) ListPendingLeaveRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListPending(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, requests)
}

func (h *Handler) ListEmployeeLeaveRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListByEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, requests)
}

func (h *Handler) GetLeaveRequest(w http.ResponseWriter, r *http.Request) {
	request, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var dto CreateLeaveRequestDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	if !callerMayActFor(r, dto.EmployeeID) {
		h.WriteError(w, r, internal.NewForbiddenError("cannot submit leave for another employee", internal.ErrCodeInsufficientRole))
		return
	}

	request, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, request)
}

func (h *Handler) UpdateLeaveRequestStatus(w http.ResponseWriter, r *http.Request) {
	var dto UpdateStatusDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	request, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) AddEmployeeSignature(w http.ResponseWriter, r *http.Request) {
	var dto SignatureDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	id := chi.URLParam(r, "id")
	current, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	if !callerMayActFor(r, current.EmployeeID) {
		h.WriteError(w, r, internal.NewForbiddenError("cannot sign another employee's leave request", internal.ErrCodeInsufficientRole))
		return
	}

	request, err := h.Service.AddEmployeeSignature(r.Context(), id, dto)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, request)
}

// callerMayActFor allows supervisors and the employee themself. Without an authenticated
// caller (auth middleware not mounted) every request is allowed.
func callerMayActFor(r *http.Request, employeeID string) bool {
	callerID := internal.UserIDFromContext(r.Context())
	if callerID == "" {
		return true
	}
	return callerID == employeeID || internal.RoleFromContext(r.Context()) == roleSupervisor
}
