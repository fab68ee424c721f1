package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/trip-planner-api/internal/application/notification"
	"github.com/trip-planner-api/internal/domain"
	"github.com/trip-planner-api/internal/transport/http/middleware"
)

// NotificationHandler handles the notification inbox and preference endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	unreadOnly := q.Get("unread") == "true"
	ns, next, err := h.svc.ListForUser(r.Context(),
		middleware.UserIDFromContext(r.Context()),
		int32(limit), q.Get("cursor"), unreadOnly, q.Get("trip_id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: ns, NextCursor: next})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.UnreadCount(r.Context(),
		middleware.UserIDFromContext(r.Context()), r.URL.Query().Get("trip_id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.svc.MarkRead(r.Context(),
		middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "notificationID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "marked read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.MarkAllRead(r.Context(),
		middleware.UserIDFromContext(r.Context()), r.URL.Query().Get("trip_id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": count})
}

func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPreferences(r.Context(),
		middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "tripID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.svc.UpdatePreferences(r.Context(),
		middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "tripID"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
