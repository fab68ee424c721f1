package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/trip-planner-api/internal/domain"
	"github.com/trip-planner-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldEventType   = "event_type"
	fieldLocation    = "location"
	fieldStartTime   = "start_time"
	fieldEndTime     = "end_time"
	fieldAllDay      = "all_day"
)

type Service interface {
	Create(ctx context.Context, tripID, userID string, req domain.CreateEventRequest) (*domain.Event, error)
	Get(ctx context.Context, tripID, eventID, userID string) (*domain.Event, error)
	ListByTrip(ctx context.Context, tripID, userID string) ([]domain.Event, error)
	Update(ctx context.Context, tripID, eventID, userID string, req domain.UpdateEventRequest) (*domain.Event, error)
	Delete(ctx context.Context, tripID, eventID, userID string) error
}

type eventStore interface {
	Put(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, eventID string) (*domain.Event, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.Event, error)
	Update(ctx context.Context, eventID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, eventID, deletedBy string) error
}

type tripStore interface {
	Get(ctx context.Context, tripID string) (*domain.Trip, error)
}

type permissionChecker interface {
	RequireMember(ctx context.Context, tripID, userID string) (*domain.Member, error)
	CanAddEvent(ctx context.Context, trip *domain.Trip, userID string) error
	CanModifyEvent(ctx context.Context, trip *domain.Trip, event *domain.Event, userID string) error
}

type notifier interface {
	NotifyTripMembers(ctx context.Context, batch *domain.NotificationBatch) error
}

type service struct {
	events        eventStore
	trips         tripStore
	perms         permissionChecker
	notifications notifier
}

type ServiceDeps struct {
	EventRepo     eventStore
	TripRepo      tripStore
	Permissions   permissionChecker
	Notifications notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		events:        deps.EventRepo,
		trips:         deps.TripRepo,
		perms:         deps.Permissions,
		notifications: deps.Notifications,
	}
}

func (s *service) Create(ctx context.Context, tripID, userID string, req domain.CreateEventRequest) (*domain.Event, error) {
	t, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CanAddEvent(ctx, t, userID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	e := &domain.Event{
		EventID:     id.New(),
		TripID:      tripID,
		CreatedBy:   userID,
		Name:        req.Name,
		Description: req.Description,
		EventType:   req.EventType,
		Location:    req.Location,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime,
		AllDay:      req.AllDay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Put(ctx, e); err != nil {
		return nil, err
	}
	s.notify(ctx, t, userID, e.Name+" was added to the itinerary")
	return e, nil
}

func (s *service) Get(ctx context.Context, tripID, eventID, userID string) (*domain.Event, error) {
	if _, err := s.perms.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.getForTrip(ctx, tripID, eventID)
}

func (s *service) ListByTrip(ctx context.Context, tripID, userID string) ([]domain.Event, error) {
	if _, err := s.perms.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.events.ListByTrip(ctx, tripID)
}

func (s *service) Update(ctx context.Context, tripID, eventID, userID string, req domain.UpdateEventRequest) (*domain.Event, error) {
	t, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	e, err := s.getForTrip(ctx, tripID, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CanModifyEvent(ctx, t, e, userID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.EventType != nil {
		updates[fieldEventType] = *req.EventType
	}
	if req.Location != nil {
		updates[fieldLocation] = *req.Location
	}
	if req.StartTime != nil {
		// Matches the table's numeric start_time attribute.
		updates[fieldStartTime] = req.StartTime.UTC().Unix()
	}
	if req.EndTime != nil {
		updates[fieldEndTime] = req.EndTime.UTC().Format(time.RFC3339)
	}
	if req.AllDay != nil {
		updates[fieldAllDay] = *req.AllDay
	}
	if len(updates) > 0 {
		if err := s.events.Update(ctx, eventID, updates); err != nil {
			return nil, err
		}
	}
	updated, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		s.notify(ctx, t, userID, updated.Name+" was updated")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, tripID, eventID, userID string) error {
	t, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return err
	}
	e, err := s.getForTrip(ctx, tripID, eventID)
	if err != nil {
		return err
	}
	if err := s.perms.CanModifyEvent(ctx, t, e, userID); err != nil {
		return err
	}
	if err := s.events.SoftDelete(ctx, eventID, userID); err != nil {
		return err
	}
	s.notify(ctx, t, userID, e.Name+" was removed from the itinerary")
	return nil
}

func (s *service) getForTrip(ctx context.Context, tripID, eventID string) (*domain.Event, error) {
	e, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.TripID != tripID {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (s *service) notify(ctx context.Context, t *domain.Trip, actorID, body string) {
	err := s.notifications.NotifyTripMembers(ctx, &domain.NotificationBatch{
		TripID:        t.TripID,
		Type:          domain.NotificationTripUpdate,
		Title:         t.Name,
		Body:          body,
		Data:          map[string]interface{}{"tripId": t.TripID},
		ExcludeUserID: actorID,
	})
	if err != nil {
		slog.Warn("event fan-out failed", "trip_id", t.TripID, "err", err)
	}
}
