package trip

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/trip-planner-api/internal/domain"
	"github.com/trip-planner-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName              = "name"
	fieldDestination       = "destination"
	fieldStartDate         = "start_date"
	fieldEndDate           = "end_date"
	fieldPreferredTimezone = "preferred_timezone"
	fieldDescription       = "description"
	fieldCoverPhotoURL     = "cover_photo_url"
	fieldAllowMemberEvents = "allow_members_to_add_events"
)

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateTripRequest) (*domain.Trip, error)
	Get(ctx context.Context, tripID, userID string) (*domain.Trip, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Trip, error)
	Update(ctx context.Context, tripID, userID string, req domain.UpdateTripRequest) (*domain.Trip, error)
	Cancel(ctx context.Context, tripID, userID string) error
	UploadCoverPhoto(ctx context.Context, tripID, userID, filename string, r io.Reader) (string, error)
}

type tripStore interface {
	Put(ctx context.Context, t *domain.Trip) error
	Get(ctx context.Context, tripID string) (*domain.Trip, error)
	Update(ctx context.Context, tripID string, updates map[string]interface{}) error
	Cancel(ctx context.Context, tripID string) error
}

type memberStore interface {
	Put(ctx context.Context, m *domain.Member) error
	ListByUser(ctx context.Context, userID string) ([]domain.Member, error)
}

type permissionChecker interface {
	RequireMember(ctx context.Context, tripID, userID string) (*domain.Member, error)
	RequireOrganizer(ctx context.Context, tripID, userID string) error
}

type notifier interface {
	NotifyTripMembers(ctx context.Context, batch *domain.NotificationBatch) error
	CreateDefaultPreferences(ctx context.Context, userID, tripID string) error
}

type photoStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type contentTypeFunc func(filename string) string

type service struct {
	trips         tripStore
	members       memberStore
	perms         permissionChecker
	notifications notifier
	photos        photoStore
	contentType   contentTypeFunc
}

type ServiceDeps struct {
	TripRepo        tripStore
	MemberRepo      memberStore
	Permissions     permissionChecker
	Notifications   notifier
	PhotoStore      photoStore
	ContentTypeFunc contentTypeFunc
}

func NewService(deps ServiceDeps) Service {
	return &service{
		trips:         deps.TripRepo,
		members:       deps.MemberRepo,
		perms:         deps.Permissions,
		notifications: deps.Notifications,
		photos:        deps.PhotoStore,
		contentType:   deps.ContentTypeFunc,
	}
}

// Create inserts the trip and enrolls the creator as a going organizer with
// default notification preferences.
func (s *service) Create(ctx context.Context, userID string, req domain.CreateTripRequest) (*domain.Trip, error) {
	if req.StartDate != "" && req.EndDate != "" && req.EndDate < req.StartDate {
		return nil, fmt.Errorf("end_date before start_date: %w", domain.ErrBadRequest)
	}
	if _, err := time.LoadLocation(req.PreferredTimezone); err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", req.PreferredTimezone, domain.ErrBadRequest)
	}
	allowMemberEvents := true
	if req.AllowMembersToAddEvents != nil {
		allowMemberEvents = *req.AllowMembersToAddEvents
	}
	now := time.Now().UTC()
	t := &domain.Trip{
		TripID:                  id.New(),
		Name:                    req.Name,
		Destination:             req.Destination,
		StartDate:               req.StartDate,
		EndDate:                 req.EndDate,
		PreferredTimezone:       req.PreferredTimezone,
		Description:             req.Description,
		CreatedBy:               userID,
		AllowMembersToAddEvents: allowMemberEvents,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := s.trips.Put(ctx, t); err != nil {
		return nil, err
	}
	creator := &domain.Member{
		MemberID:    id.New(),
		TripID:      t.TripID,
		UserID:      userID,
		Status:      domain.RSVPGoing,
		IsOrganizer: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.members.Put(ctx, creator); err != nil {
		return nil, err
	}
	if err := s.notifications.CreateDefaultPreferences(ctx, userID, t.TripID); err != nil {
		// Preference seeding is best-effort; the absent row reads as all-true
		// defaults anyway.
		slog.Warn("default preference seed failed", "trip_id", t.TripID, "user_id", userID, "err", err)
	}
	return t, nil
}

func (s *service) Get(ctx context.Context, tripID, userID string) (*domain.Trip, error) {
	if _, err := s.perms.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.trips.Get(ctx, tripID)
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]domain.Trip, error) {
	memberships, err := s.members.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	trips := make([]domain.Trip, 0, len(memberships))
	for i := range memberships {
		t, err := s.trips.Get(ctx, memberships[i].TripID)
		if err != nil {
			continue
		}
		if t.Cancelled {
			continue
		}
		trips = append(trips, *t)
	}
	return trips, nil
}

// Update applies the organizer's changes and notifies going members.
func (s *service) Update(ctx context.Context, tripID, userID string, req domain.UpdateTripRequest) (*domain.Trip, error) {
	if err := s.perms.RequireOrganizer(ctx, tripID, userID); err != nil {
		return nil, err
	}
	_, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Destination != nil {
		updates[fieldDestination] = *req.Destination
	}
	if req.StartDate != nil {
		updates[fieldStartDate] = *req.StartDate
	}
	if req.EndDate != nil {
		updates[fieldEndDate] = *req.EndDate
	}
	if req.PreferredTimezone != nil {
		if _, err := time.LoadLocation(*req.PreferredTimezone); err != nil {
			return nil, fmt.Errorf("unknown timezone %q: %w", *req.PreferredTimezone, domain.ErrBadRequest)
		}
		updates[fieldPreferredTimezone] = *req.PreferredTimezone
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.AllowMembersToAddEvents != nil {
		updates[fieldAllowMemberEvents] = *req.AllowMembersToAddEvents
	}
	if len(updates) > 0 {
		if err := s.trips.Update(ctx, tripID, updates); err != nil {
			return nil, err
		}
	}
	updated, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		s.notifyUpdate(ctx, updated, userID, "Trip details were updated")
	}
	return updated, nil
}

// Cancel marks the trip cancelled and tells going members.
func (s *service) Cancel(ctx context.Context, tripID, userID string) error {
	if err := s.perms.RequireOrganizer(ctx, tripID, userID); err != nil {
		return err
	}
	t, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return err
	}
	if err := s.trips.Cancel(ctx, tripID); err != nil {
		return err
	}
	s.notifyUpdate(ctx, t, userID, "The trip was cancelled")
	return nil
}

func (s *service) UploadCoverPhoto(ctx context.Context, tripID, userID, filename string, r io.Reader) (string, error) {
	if err := s.perms.RequireOrganizer(ctx, tripID, userID); err != nil {
		return "", err
	}
	if s.photos == nil {
		return "", fmt.Errorf("photo storage not configured: %w", domain.ErrBadRequest)
	}
	key := fmt.Sprintf("trips/%s/cover/%s", tripID, filename)
	url, err := s.photos.Upload(ctx, key, r, s.contentType(filename))
	if err != nil {
		return "", err
	}
	if err := s.trips.Update(ctx, tripID, map[string]interface{}{fieldCoverPhotoURL: url}); err != nil {
		return "", err
	}
	return url, nil
}

func (s *service) notifyUpdate(ctx context.Context, t *domain.Trip, actorID, body string) {
	err := s.notifications.NotifyTripMembers(ctx, &domain.NotificationBatch{
		TripID:        t.TripID,
		Type:          domain.NotificationTripUpdate,
		Title:         t.Name,
		Body:          body,
		Data:          map[string]interface{}{"tripId": t.TripID},
		ExcludeUserID: actorID,
	})
	if err != nil {
		// Fan-out problems must not fail the write that triggered them.
		slog.Warn("trip update fan-out failed", "trip_id", t.TripID, "err", err)
	}
}
