package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trip-planner-api/internal/application/member"
	"github.com/trip-planner-api/internal/domain"
	"github.com/trip-planner-api/internal/pkg/validate"
	"github.com/trip-planner-api/internal/transport/http/middleware"
)

// MemberHandler handles trip membership endpoints.
type MemberHandler struct {
	svc member.Service
}

func NewMemberHandler(svc member.Service) *MemberHandler { return &MemberHandler{svc: svc} }

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListByTrip(r.Context(), chi.URLParam(r, "tripID"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: members})
}

func (h *MemberHandler) UpdateRSVP(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateRSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.svc.UpdateRSVP(r.Context(), chi.URLParam(r, "tripID"), middleware.UserIDFromContext(r.Context()), req.Status)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MemberHandler) Leave(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Leave(r.Context(), chi.URLParam(r, "tripID"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "left trip"})
}

func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Remove(r.Context(), chi.URLParam(r, "tripID"), chi.URLParam(r, "userID"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "member removed"})
}
