package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trip-planner-api/internal/application/accommodation"
	"github.com/trip-planner-api/internal/domain"
	"github.com/trip-planner-api/internal/pkg/validate"
	"github.com/trip-planner-api/internal/transport/http/middleware"
)

// AccommodationHandler handles trip accommodation endpoints.
type AccommodationHandler struct {
	svc accommodation.Service
}

func NewAccommodationHandler(svc accommodation.Service) *AccommodationHandler {
	return &AccommodationHandler{svc: svc}
}

func (h *AccommodationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccommodationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.svc.Create(r.Context(), chi.URLParam(r, "tripID"), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AccommodationHandler) List(w http.ResponseWriter, r *http.Request) {
	accommodations, err := h.svc.ListByTrip(r.Context(), chi.URLParam(r, "tripID"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: accommodations})
}

func (h *AccommodationHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), chi.URLParam(r, "tripID"), chi.URLParam(r, "accommodationID"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AccommodationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateAccommodationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.svc.Update(r.Context(), chi.URLParam(r, "tripID"), chi.URLParam(r, "accommodationID"), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AccommodationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "tripID"), chi.URLParam(r, "accommodationID"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "accommodation deleted"})
}

func (h *AccommodationHandler) Restore(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Restore(r.Context(), chi.URLParam(r, "tripID"), chi.URLParam(r, "accommodationID"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
