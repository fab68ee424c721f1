package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trip-planner-api/internal/application/invitation"
	"github.com/trip-planner-api/internal/domain"
	"github.com/trip-planner-api/internal/pkg/validate"
	"github.com/trip-planner-api/internal/transport/http/middleware"
)

// InvitationHandler handles trip invitation endpoints.
type InvitationHandler struct {
	svc invitation.Service
}

func NewInvitationHandler(svc invitation.Service) *InvitationHandler {
	return &InvitationHandler{svc: svc}
}

func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := h.svc.Create(r.Context(), chi.URLParam(r, "tripID"), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *InvitationHandler) ListByTrip(w http.ResponseWriter, r *http.Request) {
	invs, err := h.svc.ListByTrip(r.Context(), chi.URLParam(r, "tripID"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: invs})
}

func (h *InvitationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	invs, err := h.svc.ListPendingForUser(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: invs})
}

func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Accept(r.Context(), chi.URLParam(r, "invitationID"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *InvitationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Decline(r.Context(), chi.URLParam(r, "invitationID"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "invitation declined"})
}
