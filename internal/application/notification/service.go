package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trip-planner-api/internal/domain"
	"github.com/trip-planner-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, in domain.CreateNotificationInput) (*domain.Notification, error)
	NotifyTripMembers(ctx context.Context, batch *domain.NotificationBatch) error
	Deliver(ctx context.Context, batch *domain.NotificationBatch) error
	ListForUser(ctx context.Context, userID string, limit int32, cursor string, unreadOnly bool, tripID string) ([]domain.Notification, string, error)
	UnreadCount(ctx context.Context, userID, tripID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID, tripID string) (int, error)
	GetPreferences(ctx context.Context, userID, tripID string) (*domain.NotificationPreferences, error)
	UpdatePreferences(ctx context.Context, userID, tripID string, req domain.UpdatePreferencesRequest) (*domain.NotificationPreferences, error)
	CreateDefaultPreferences(ctx context.Context, userID, tripID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int32, cursor string, unreadOnly bool, tripID string) ([]domain.Notification, string, error)
	UnreadCount(ctx context.Context, userID, tripID string) (int, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, userID, tripID string) (int, error)
}

type memberStore interface {
	ListGoing(ctx context.Context, tripID string) ([]domain.Member, error)
}

type preferenceStore interface {
	Get(ctx context.Context, userID, tripID string) (*domain.NotificationPreferences, error)
	Put(ctx context.Context, p *domain.NotificationPreferences) error
	PutIfAbsent(ctx context.Context, p *domain.NotificationPreferences) error
}

// BatchSender hands a whole fan-out off to an asynchronous channel.
// Optional: when nil, NotifyTripMembers delivers inline.
type BatchSender interface {
	PublishBatch(ctx context.Context, batch *domain.NotificationBatch) error
}

type service struct {
	repo    notificationStore
	members memberStore
	prefs   preferenceStore
	batch   BatchSender
}

type ServiceDeps struct {
	NotificationRepo notificationStore
	MemberRepo       memberStore
	PreferenceRepo   preferenceStore
	BatchSender      BatchSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:    deps.NotificationRepo,
		members: deps.MemberRepo,
		prefs:   deps.PreferenceRepo,
		batch:   deps.BatchSender,
	}
}

// Create persists a single notification. Storage errors surface to the caller.
func (s *service) Create(ctx context.Context, in domain.CreateNotificationInput) (*domain.Notification, error) {
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         in.UserID,
		TripID:         in.TripID,
		Type:           in.Type,
		Title:          in.Title,
		Body:           in.Body,
		Data:           in.Data,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// NotifyTripMembers fans a notification out to every "going" member of the
// trip except the excluded actor. With a batch sender configured the fan-out
// is handed off as one message; otherwise it runs inline. A publish failure
// falls back to inline delivery so the fan-out is never lost.
func (s *service) NotifyTripMembers(ctx context.Context, batch *domain.NotificationBatch) error {
	if s.batch != nil {
		err := s.batch.PublishBatch(ctx, batch)
		if err == nil {
			return nil
		}
		slog.Warn("batch publish failed, delivering inline", "trip_id", batch.TripID, "err", err)
	}
	return s.Deliver(ctx, batch)
}

// Deliver performs the per-member creation loop for a batch. A failure for
// one member is logged and does not block the rest.
func (s *service) Deliver(ctx context.Context, batch *domain.NotificationBatch) error {
	members, err := s.members.ListGoing(ctx, batch.TripID)
	if err != nil {
		return fmt.Errorf("list going members for trip %s: %w", batch.TripID, err)
	}
	for i := range members {
		m := &members[i]
		if m.UserID == batch.ExcludeUserID {
			continue
		}
		allowed, err := s.allows(ctx, m.UserID, batch.TripID, batch.Type)
		if err != nil {
			slog.Error("preference lookup failed, skipping member",
				"trip_id", batch.TripID, "user_id", m.UserID, "err", err)
			continue
		}
		if !allowed {
			continue
		}
		_, err = s.Create(ctx, domain.CreateNotificationInput{
			UserID: m.UserID,
			TripID: batch.TripID,
			Type:   batch.Type,
			Title:  batch.Title,
			Body:   batch.Body,
			Data:   batch.Data,
		})
		if err != nil {
			slog.Error("notification create failed, skipping member",
				"trip_id", batch.TripID, "user_id", m.UserID, "err", err)
		}
	}
	return nil
}

func (s *service) allows(ctx context.Context, userID, tripID, notificationType string) (bool, error) {
	p, err := s.prefs.Get(ctx, userID, tripID)
	if errors.Is(err, domain.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return p.PreferenceAllows(notificationType), nil
}

func (s *service) ListForUser(ctx context.Context, userID string, limit int32, cursor string, unreadOnly bool, tripID string) ([]domain.Notification, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, limit, cursor, unreadOnly, tripID)
}

func (s *service) UnreadCount(ctx context.Context, userID, tripID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID, tripID)
}

// MarkRead marks one notification read; only the recipient may do so.
func (s *service) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrForbidden)
	}
	if n.ReadAt != nil {
		return nil
	}
	return s.repo.MarkRead(ctx, notificationID)
}

func (s *service) MarkAllRead(ctx context.Context, userID, tripID string) (int, error) {
	return s.repo.MarkAllRead(ctx, userID, tripID)
}

// GetPreferences returns the stored row or the all-true defaults when absent.
func (s *service) GetPreferences(ctx context.Context, userID, tripID string) (*domain.NotificationPreferences, error) {
	p, err := s.prefs.Get(ctx, userID, tripID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultNotificationPreferences(userID, tripID), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) UpdatePreferences(ctx context.Context, userID, tripID string, req domain.UpdatePreferencesRequest) (*domain.NotificationPreferences, error) {
	p := &domain.NotificationPreferences{
		UserID:         userID,
		TripID:         tripID,
		EventReminders: req.EventReminders,
		DailyItinerary: req.DailyItinerary,
		TripMessages:   req.TripMessages,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.prefs.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateDefaultPreferences lazily inserts the all-true row when a member's
// RSVP first transitions to "going". Idempotent: an existing row wins.
func (s *service) CreateDefaultPreferences(ctx context.Context, userID, tripID string) error {
	p := domain.DefaultNotificationPreferences(userID, tripID)
	p.UpdatedAt = time.Now().UTC()
	return s.prefs.PutIfAbsent(ctx, p)
}
